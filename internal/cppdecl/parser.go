// Package cppdecl turns C++ header source into the declaration graph the
// extractors consume. It walks a tree-sitter parse of the file, collecting
// top-level namespaces with their classes, enums, and members, and attaches
// the raw doxygen comment text found adjacent to each declaration. Nothing
// here interprets the comments; that is the extraction layer's job.
package cppdecl

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/projectd/projectd/internal/debug"
	"github.com/projectd/projectd/internal/decl"
)

// Parser wraps a tree-sitter parser configured for C++. A Parser is not safe
// for concurrent use; create one per goroutine.
type Parser struct {
	parser *tree_sitter.Parser
}

// NewParser creates a C++ declaration parser.
func NewParser() (*Parser, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to load C++ grammar: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseFile parses one header and returns its declaration graph. Only
// declarations inside top-level namespaces are collected; file-scope classes
// without a namespace have no place in the documentation model.
func (p *Parser) ParseFile(path string, content []byte) (*decl.File, error) {
	// Tree-sitter mutates input buffers via CGO; parse a private copy.
	buffer := make([]byte, len(content))
	copy(buffer, content)

	tree := p.parser.Parse(buffer, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	defer tree.Close()

	w := &walker{content: buffer}
	file := &decl.File{Path: path}

	root := tree.RootNode()
	items := namedChildren(root)
	for i := 0; i < len(items); i++ {
		node := items[i]
		if node.Kind() == "comment" {
			w.addComment(node)
			continue
		}
		comment := w.takeComment(node)
		if node.Kind() == "namespace_definition" {
			ns := w.parseNamespace(node, comment)
			if ns != nil {
				file.Namespaces = append(file.Namespaces, *ns)
			}
			continue
		}
		debug.LogParse("skipping file-scope %s in %s\n", node.Kind(), path)
	}

	return file, nil
}

// walker carries per-file parse state: the source bytes and the run of
// comment nodes waiting to be attached to the next declaration.
type walker struct {
	content []byte
	pending []*tree_sitter.Node
}

func (w *walker) text(node *tree_sitter.Node) string {
	return string(w.content[node.StartByte():node.EndByte()])
}

func namedChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	count := node.NamedChildCount()
	children := make([]*tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// addComment extends the pending comment run, or starts a fresh one when a
// blank line separates this comment from the previous.
func (w *walker) addComment(node *tree_sitter.Node) {
	if len(w.pending) > 0 {
		last := w.pending[len(w.pending)-1]
		if last.EndPosition().Row+1 < node.StartPosition().Row {
			w.pending = w.pending[:0]
		}
	}
	w.pending = append(w.pending, node)
}

// takeComment hands the pending run to a declaration when the run ends on the
// line directly above it (or on the declaration's own line). A blank line in
// between orphans the comments.
func (w *walker) takeComment(node *tree_sitter.Node) string {
	defer func() { w.pending = w.pending[:0] }()

	if len(w.pending) == 0 {
		return ""
	}
	last := w.pending[len(w.pending)-1]
	if last.EndPosition().Row+1 < node.StartPosition().Row {
		return ""
	}

	lines := make([]string, 0, len(w.pending))
	for _, c := range w.pending {
		lines = append(lines, w.text(c))
	}
	return strings.Join(lines, "\n")
}

// trailingComment recognizes a doxygen member comment glued to the end of a
// declaration's line, the "///< description" form.
func (w *walker) trailingComment(node, next *tree_sitter.Node) (string, bool) {
	if next == nil || next.Kind() != "comment" {
		return "", false
	}
	if next.StartPosition().Row != node.EndPosition().Row {
		return "", false
	}
	text := w.text(next)
	for _, marker := range []string{"///<", "//!<", "/**<", "/*!<"} {
		if strings.HasPrefix(text, marker) {
			return text, true
		}
	}
	return "", false
}

func (w *walker) parseNamespace(node *tree_sitter.Node, comment string) *decl.Namespace {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return nil
	}

	ns := &decl.Namespace{Name: w.text(nameNode), Comment: comment}

	items := namedChildren(body)
	for i := 0; i < len(items); i++ {
		item := items[i]
		if item.Kind() == "comment" {
			w.addComment(item)
			continue
		}
		itemComment := w.takeComment(item)

		switch item.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier":
			if class := w.parseClass(item, ns.Name, itemComment); class != nil {
				ns.Classes = append(ns.Classes, *class)
			}
		case "enum_specifier":
			if enum := w.parseEnum(item, itemComment, decl.AccessPublic); enum != nil {
				ns.Enums = append(ns.Enums, *enum)
			}
		case "declaration":
			// A type definition with a declarator, "class A {} a;".
			typeNode := item.ChildByFieldName("type")
			if typeNode == nil {
				continue
			}
			switch typeNode.Kind() {
			case "class_specifier", "struct_specifier", "union_specifier":
				if class := w.parseClass(typeNode, ns.Name, itemComment); class != nil {
					ns.Classes = append(ns.Classes, *class)
				}
			case "enum_specifier":
				if enum := w.parseEnum(typeNode, itemComment, decl.AccessPublic); enum != nil {
					ns.Enums = append(ns.Enums, *enum)
				}
			}
		}
	}

	return ns
}

// classKey maps a specifier node kind to its declaration keyword.
func classKey(kind string) string {
	switch kind {
	case "struct_specifier":
		return "struct"
	case "union_specifier":
		return "union"
	default:
		return "class"
	}
}

// defaultAccess is the access level members have before any access specifier.
func defaultAccess(key string) decl.Access {
	if key == "class" {
		return decl.AccessPrivate
	}
	return decl.AccessPublic
}

func (w *walker) parseClass(node *tree_sitter.Node, nsName, comment string) *decl.Class {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		// Forward declarations and anonymous types are not documented.
		return nil
	}

	key := classKey(node.Kind())
	class := &decl.Class{
		Name:     w.text(nameNode),
		FullName: nsName + "::" + w.text(nameNode),
		Comment:  comment,
		Key:      key,
		Bases:    w.parseBases(node),
	}

	access := defaultAccess(key)
	items := namedChildren(body)
	for i := 0; i < len(items); i++ {
		item := items[i]
		switch item.Kind() {
		case "comment":
			w.addComment(item)
			continue
		case "access_specifier":
			access = decl.Access(strings.TrimSpace(strings.TrimSuffix(w.text(item), ":")))
			w.pending = w.pending[:0]
			continue
		}

		itemComment := w.takeComment(item)
		var next *tree_sitter.Node
		if i+1 < len(items) {
			next = items[i+1]
		}
		if trailing, ok := w.trailingComment(item, next); ok {
			if itemComment == "" {
				itemComment = trailing
			}
			i++
		}

		w.parseMember(item, class, access, itemComment)
	}

	return class
}

// parseBases collects base-class simple names in declaration order.
func (w *walker) parseBases(class *tree_sitter.Node) []string {
	var bases []string
	for _, child := range namedChildren(class) {
		if child.Kind() != "base_class_clause" {
			continue
		}
		for _, base := range namedChildren(child) {
			switch base.Kind() {
			case "type_identifier":
				bases = append(bases, w.text(base))
			case "qualified_identifier":
				name := w.text(base)
				if idx := strings.LastIndex(name, "::"); idx >= 0 {
					name = name[idx+2:]
				}
				bases = append(bases, name)
			case "template_type":
				if name := base.ChildByFieldName("name"); name != nil {
					bases = append(bases, w.text(name))
				}
			}
		}
	}
	return bases
}

// parseMember dispatches one item of a class body: a nested enum, a method
// (definition or declaration), or a data member.
func (w *walker) parseMember(item *tree_sitter.Node, class *decl.Class, access decl.Access, comment string) {
	switch item.Kind() {
	case "enum_specifier":
		if enum := w.parseEnum(item, comment, access); enum != nil {
			class.Enums = append(class.Enums, *enum)
		}
		return
	case "function_definition", "field_declaration", "declaration":
	default:
		return
	}

	if typeNode := item.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "enum_specifier" {
		if enum := w.parseEnum(typeNode, comment, access); enum != nil {
			class.Enums = append(class.Enums, *enum)
		}
		return
	}

	if funcDecl := findFunctionDeclarator(item.ChildByFieldName("declarator")); funcDecl != nil {
		if method := w.parseMethod(item, funcDecl, class.Name, access, comment); method != nil {
			class.Methods = append(class.Methods, *method)
		}
		return
	}

	if item.Kind() == "field_declaration" {
		if field := w.parseField(item, access, comment); field != nil {
			class.Fields = append(class.Fields, *field)
		}
	}
}

// findFunctionDeclarator descends through pointer and reference wrappers to a
// function_declarator, or returns nil when the declarator is not a function.
func findFunctionDeclarator(node *tree_sitter.Node) *tree_sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			return node
		case "pointer_declarator", "reference_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

// declaratorName descends to the declared identifier inside a declarator.
func (w *walker) declaratorName(node *tree_sitter.Node) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "type_identifier",
			"destructor_name", "operator_name", "qualified_identifier":
			return w.text(node)
		case "function_declarator", "pointer_declarator",
			"reference_declarator", "array_declarator", "parenthesized_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return ""
		}
	}
	return ""
}

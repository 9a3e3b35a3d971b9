package cppdecl

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/projectd/projectd/internal/decl"
)

// declaratorNameNode descends to the node holding the declared name.
func declaratorNameNode(node *tree_sitter.Node) *tree_sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "type_identifier",
			"destructor_name", "operator_name", "qualified_identifier":
			return node
		case "function_declarator", "pointer_declarator",
			"reference_declarator", "array_declarator", "parenthesized_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

// typeMarkers collects the pointer and reference markers wrapped around a
// declarator, outermost first.
func (w *walker) typeMarkers(node *tree_sitter.Node) string {
	var markers strings.Builder
	for node != nil {
		switch node.Kind() {
		case "pointer_declarator":
			markers.WriteByte('*')
		case "reference_declarator":
			if strings.HasPrefix(w.text(node), "&&") {
				markers.WriteString("&&")
			} else {
				markers.WriteByte('&')
			}
		default:
			return markers.String()
		}
		node = node.ChildByFieldName("declarator")
	}
	return markers.String()
}

// formattedType renders a declaration's type: the type node text plus any
// pointer or reference markers from the declarator.
func (w *walker) formattedType(item *tree_sitter.Node) string {
	typeNode := item.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	base := w.text(typeNode)
	if qualifier := item.Child(0); qualifier != nil && qualifier.Kind() == "type_qualifier" {
		base = w.text(qualifier) + " " + base
	}
	return base + w.typeMarkers(item.ChildByFieldName("declarator"))
}

func (w *walker) parseMethod(item, funcDecl *tree_sitter.Node, className string, access decl.Access, comment string) *decl.Method {
	nameNode := declaratorNameNode(funcDecl.ChildByFieldName("declarator"))
	if nameNode == nil {
		return nil
	}
	name := w.text(nameNode)

	method := &decl.Method{
		Name:        name,
		Comment:     comment,
		Access:      access,
		ReturnType:  w.formattedType(item),
		Constructor: name == className,
		Destructor:  strings.HasPrefix(name, "~"),
	}

	// Specifiers before the declarator: storage class, virtual, explicit.
	prefix := string(w.content[item.StartByte():funcDecl.StartByte()])
	for _, token := range strings.Fields(prefix) {
		switch token {
		case "static":
			method.Static = true
		case "inline":
			method.Inline = true
		case "virtual":
			method.Virtual = true
		case "explicit":
			method.Explicit = true
		}
	}

	// Everything after the parameter list: cv-qualifiers, virt-specifiers,
	// and the = 0 / = default / = delete forms. The body, if any, is cut off.
	suffix := ""
	if params := funcDecl.ChildByFieldName("parameters"); params != nil {
		suffix = string(w.content[params.EndByte():item.EndByte()])
	}
	if brace := strings.IndexByte(suffix, '{'); brace >= 0 {
		suffix = suffix[:brace]
	}
	for _, token := range strings.Fields(suffix) {
		switch token {
		case "const":
			method.Const = true
		case "volatile":
			method.Volatile = true
		case "override":
			method.Override = true
		case "final":
			method.Final = true
		}
	}
	switch compact := strings.NewReplacer(" ", "", "\t", "", "\n", "", ";", "").Replace(suffix); {
	case strings.HasSuffix(compact, "=0"):
		method.PureVirtual = true
		method.Virtual = true
	case strings.HasSuffix(compact, "=default"):
		method.Default = true
	case strings.HasSuffix(compact, "=delete"):
		method.Deleted = true
	}

	method.Parameters = w.parseParameters(funcDecl.ChildByFieldName("parameters"))
	return method
}

// parseParameters renders each declared parameter as a name and a formatted
// type string. Unnamed parameters keep an empty name; they can never be
// matched by a param tag but still belong to the signature.
func (w *walker) parseParameters(params *tree_sitter.Node) []decl.Parameter {
	if params == nil {
		return nil
	}
	var out []decl.Parameter
	for _, param := range namedChildren(params) {
		switch param.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}

		name := ""
		paramType := w.text(param)
		if nameNode := declaratorNameNode(param.ChildByFieldName("declarator")); nameNode != nil {
			name = w.text(nameNode)
			// Remove the name from the parameter text to leave the type.
			start := nameNode.StartByte() - param.StartByte()
			end := nameNode.EndByte() - param.StartByte()
			paramType = paramType[:start] + paramType[end:]
		}
		if defaultValue := param.ChildByFieldName("default_value"); defaultValue != nil {
			cut := defaultValue.StartByte() - param.StartByte()
			if int(cut) <= len(paramType) {
				paramType = paramType[:cut]
			}
			paramType = strings.TrimRight(strings.TrimSpace(paramType), "=")
		}
		out = append(out, decl.Parameter{Name: name, Type: strings.TrimSpace(paramType)})
	}
	return out
}

func (w *walker) parseField(item *tree_sitter.Node, access decl.Access, comment string) *decl.Field {
	nameNode := declaratorNameNode(item.ChildByFieldName("declarator"))
	if nameNode == nil {
		return nil
	}
	return &decl.Field{
		Name:    w.text(nameNode),
		Comment: comment,
		Access:  access,
		Type:    w.formattedType(item),
	}
}

func (w *walker) parseEnum(node *tree_sitter.Node, comment string, access decl.Access) *decl.Enum {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return nil
	}

	enum := &decl.Enum{Name: w.text(nameNode), Comment: comment, Access: access}

	items := namedChildren(body)
	for i := 0; i < len(items); i++ {
		item := items[i]
		if item.Kind() == "comment" {
			w.addComment(item)
			continue
		}
		if item.Kind() != "enumerator" {
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

		value := decl.Enumerator{Comment: itemComment}
		if name := item.ChildByFieldName("name"); name != nil {
			value.Name = w.text(name)
		}
		if v := item.ChildByFieldName("value"); v != nil {
			value.Value = w.text(v)
		}
		enum.Values = append(enum.Values, value)
	}

	return enum
}

// Package extract builds typed documentation entities from declaration facts
// and the command sequence parsed out of their comments. Each extractor
// returns nil when the comment turns out not to describe the declaration it is
// attached to; the caller skips the declaration in that case.
package extract

import (
	"regexp"
	"strings"

	"github.com/projectd/projectd/internal/comment"
	"github.com/projectd/projectd/internal/decl"
	"github.com/projectd/projectd/internal/docmodel"
)

// firstDoc returns the block of the first command carrying one of the given
// names. Repeated tags are not merged; later ones are ignored.
func firstDoc(commands []*docmodel.CommandDoc, names ...string) *docmodel.DocBlock {
	for _, cmd := range commands {
		for _, name := range names {
			if cmd.Name == name {
				return cmd.Doc
			}
		}
	}
	return nil
}

// fromComment parses a raw comment and fills the fields common to every
// entity kind. The caller sets Name and applies kind-specific commands from
// the returned sequence.
func fromComment(raw string) (docmodel.EntityDoc, []*docmodel.CommandDoc) {
	commands := comment.Parse(raw)
	return docmodel.EntityDoc{
		Brief:      firstDoc(commands, "brief"),
		Desc:       firstDoc(commands, ""),
		Deprecated: firstDoc(commands, "deprecated"),
		Todo:       firstDoc(commands, "todo"),
	}, commands
}

// applyNameGuard enforces the name-consistency rule for @namespace, @class and
// @enum tags. When the tag is present its first content token must equal the
// declaration's own name; a mismatch (or a tag with no content at all) means
// the comment documents some other entity, and the whole extraction is
// abandoned. Whatever follows the name on that first line, plus the tag's
// remaining elements, is prepended to the description.
func applyNameGuard(entity *docmodel.EntityDoc, commands []*docmodel.CommandDoc, tag, name string) bool {
	for _, cmd := range commands {
		if cmd.Name != tag {
			continue
		}
		if cmd.Doc.Empty() {
			return false
		}

		first, remainder, _ := strings.Cut(cmd.Doc.Elements[0].Text, " ")
		if first != name {
			return false
		}

		var extra []docmodel.DocElement
		if remainder != "" {
			extra = append(extra, docmodel.DocElement{Text: remainder, Kind: docmodel.ElementText})
		}
		extra = append(extra, cmd.Doc.Elements[1:]...)
		if len(extra) > 0 {
			merged := &docmodel.DocBlock{Elements: extra}
			if entity.Desc != nil {
				merged.Elements = append(merged.Elements, entity.Desc.Elements...)
			}
			entity.Desc = merged
		}
		return true
	}
	return true
}

var paramTagPattern = regexp.MustCompile(`^param(?:\[(in|out|inout)\])?$`)

// parseParam associates one param command with a declared parameter. The first
// content line splits on its first space into a candidate name and the start
// of the description; commands with no content, an unsplittable first line, or
// a name matching no declared parameter are dropped.
func parseParam(cmd *docmodel.CommandDoc, params []decl.Parameter) *docmodel.Param {
	if cmd.Doc.Empty() {
		return nil
	}

	match := paramTagPattern.FindStringSubmatch(cmd.Name)
	if match == nil {
		return nil
	}

	direction := docmodel.DirectionIn
	switch match[1] {
	case "out":
		direction = docmodel.DirectionOut
	case "inout":
		direction = docmodel.DirectionInOut
	}

	name, desc, found := strings.Cut(cmd.Doc.Elements[0].Text, " ")
	if !found {
		return nil
	}

	for _, param := range params {
		if param.Name != name {
			continue
		}
		block := &docmodel.DocBlock{
			Elements: append(
				[]docmodel.DocElement{{Text: desc, Kind: docmodel.ElementText}},
				cmd.Doc.Elements[1:]...,
			),
		}
		return &docmodel.Param{Name: name, Desc: block, Type: param.Type, Direction: direction}
	}
	return nil
}

// Method extracts the documentation of one declared method.
func Method(m decl.Method) *docmodel.MethodDoc {
	entity, commands := fromComment(m.Comment)
	entity.Name = m.Name

	doc := &docmodel.MethodDoc{
		EntityDoc:  entity,
		Returns:    firstDoc(commands, "return", "returns"),
		ReturnType: m.ReturnType,

		Static:      m.Static,
		Inline:      m.Inline,
		Const:       m.Const,
		Volatile:    m.Volatile,
		Constructor: m.Constructor,
		Explicit:    m.Explicit,
		Default:     m.Default,
		Deleted:     m.Deleted,
		Destructor:  m.Destructor,
		PureVirtual: m.PureVirtual,
		Virtual:     m.Virtual,
		Final:       m.Final,
		Override:    m.Override,
	}

	for _, cmd := range commands {
		if !strings.HasPrefix(cmd.Name, "param") {
			continue
		}
		if param := parseParam(cmd, m.Parameters); param != nil {
			doc.Params = append(doc.Params, param)
		}
	}
	return doc
}

// Attribute extracts the documentation of one declared field. Undocumented
// fields still yield an entity with nil doc blocks.
func Attribute(f decl.Field) *docmodel.AttributeDoc {
	entity, _ := fromComment(f.Comment)
	entity.Name = f.Name
	if entity.Name == "" {
		entity.Name = "Unknown"
	}
	return &docmodel.AttributeDoc{EntityDoc: entity, Type: f.Type}
}

// Enumerator extracts the documentation of one declared enum value.
func Enumerator(e decl.Enumerator) *docmodel.EnumeratorDoc {
	entity, _ := fromComment(e.Comment)
	entity.Name = e.Name
	return &docmodel.EnumeratorDoc{EntityDoc: entity, Value: e.Value}
}

// Enum extracts the documentation of one declared enum, or nil when an @enum
// tag names a different enum.
func Enum(e decl.Enum) *docmodel.EnumDoc {
	entity, commands := fromComment(e.Comment)
	entity.Name = e.Name

	if !applyNameGuard(&entity, commands, "enum", e.Name) {
		return nil
	}

	doc := &docmodel.EnumDoc{EntityDoc: entity}
	for _, val := range e.Values {
		doc.Values = append(doc.Values, Enumerator(val))
	}
	return doc
}

// Class extracts the documentation of one declared class, or nil when a
// @class tag names a different class. Only public members appear: methods
// additionally need a comment, fields appear commented or not, and enums
// whose own extraction failed are skipped. Member back-references are wired
// to the new class.
func Class(c decl.Class, namespace *docmodel.NamespaceDoc) *docmodel.ClassDoc {
	entity, commands := fromComment(c.Comment)
	entity.Name = c.Name

	if !applyNameGuard(&entity, commands, "class", c.Name) {
		return nil
	}

	doc := &docmodel.ClassDoc{
		EntityDoc:   entity,
		ClassKey:    c.Key,
		FullName:    c.FullName,
		PublicEnums: make(map[string]*docmodel.EnumDoc),
		BaseClasses: c.Bases,
		Namespace:   namespace,
	}

	for _, m := range c.Methods {
		if m.Comment == "" || m.Access != decl.AccessPublic {
			continue
		}
		method := Method(m)
		method.Class = doc
		doc.PublicMethods = append(doc.PublicMethods, method)
	}

	for _, f := range c.Fields {
		if f.Access != decl.AccessPublic {
			continue
		}
		attr := Attribute(f)
		attr.Class = doc
		doc.PublicAttributes = append(doc.PublicAttributes, attr)
	}

	for _, e := range c.Enums {
		if e.Access != decl.AccessPublic {
			continue
		}
		if enum := Enum(e); enum != nil {
			doc.PublicEnums[enum.Name] = enum
		}
	}

	return doc
}

// Namespace extracts the documentation of one declared namespace, or nil when
// a @namespace tag names a different namespace. The symbol maps start empty;
// the parse context fills them as the namespace's members are discovered.
func Namespace(n decl.Namespace) *docmodel.NamespaceDoc {
	entity, commands := fromComment(n.Comment)
	entity.Name = n.Name

	if !applyNameGuard(&entity, commands, "namespace", n.Name) {
		return nil
	}

	doc := docmodel.NewNamespaceDoc(n.Name)
	doc.EntityDoc = entity
	return doc
}

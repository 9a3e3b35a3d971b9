package docmodel

// ElementKind distinguishes the three kinds of content a comment block can carry.
type ElementKind uint8

const (
	ElementText ElementKind = iota
	ElementCode
	ElementVerbatim
)

func (k ElementKind) String() string {
	switch k {
	case ElementText:
		return "text"
	case ElementCode:
		return "code"
	case ElementVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// DocElement is one logical unit of comment content: a paragraph, a code
// sample, or a verbatim sample. Elements are never mutated after creation;
// post-processing builds replacement elements instead.
type DocElement struct {
	Text string
	Kind ElementKind
}

// DocBlock is an ordered sequence of elements belonging to one command.
// A nil *DocBlock means the tag was never present; a non-nil block with no
// elements means the tag was seen but carried no content. The two are distinct
// and both representable.
type DocBlock struct {
	Elements []DocElement
}

// Empty reports whether the block holds no elements. A nil block is empty.
func (b *DocBlock) Empty() bool {
	return b == nil || len(b.Elements) == 0
}

// Append adds an element to the block.
func (b *DocBlock) Append(text string, kind ElementKind) {
	b.Elements = append(b.Elements, DocElement{Text: text, Kind: kind})
}

// CommandDoc is one named segment of a comment: the content introduced by a
// single tag. The empty name marks the anonymous description block. One
// comment yields an ordered sequence of commands, and several commands may
// share the same name (repeated @param tags, for example).
type CommandDoc struct {
	Name string
	Doc  *DocBlock
}

// NewCommandDoc creates a command with an empty, non-nil block.
func NewCommandDoc(name string) *CommandDoc {
	return &CommandDoc{Name: name, Doc: &DocBlock{}}
}

// Direction is the documented data flow of a method parameter.
type Direction string

const (
	DirectionIn    Direction = "in"
	DirectionOut   Direction = "out"
	DirectionInOut Direction = "in,out"
)

// Param is a documented method parameter, built only when a param tag's first
// token matched a declared parameter name.
type Param struct {
	Name      string
	Desc      *DocBlock
	Type      string
	Direction Direction
}

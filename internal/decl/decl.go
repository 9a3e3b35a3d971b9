// Package decl defines the declaration graph consumed by the extractors: the
// pre-parsed structural facts of one source file, with raw doxygen comment
// text attached where a declaration carried one. Producing this graph is the
// structural parser's job (see internal/cppdecl); this package is only the
// contract between the two sides. Nothing here is validated; malformed
// declarations are the producer's problem.
package decl

// Access is the declared access level of a class member.
type Access string

const (
	AccessPublic    Access = "public"
	AccessProtected Access = "protected"
	AccessPrivate   Access = "private"
)

// Parameter is one declared method parameter: its name and formatted type.
type Parameter struct {
	Name string
	Type string
}

// Method is a declared member function. The boolean facts are passed through
// to the documentation model verbatim.
type Method struct {
	Name       string
	Comment    string
	Access     Access
	Parameters []Parameter
	ReturnType string

	Static      bool
	Inline      bool
	Const       bool
	Volatile    bool
	Constructor bool
	Explicit    bool
	Default     bool
	Deleted     bool
	Destructor  bool
	PureVirtual bool
	Virtual     bool
	Final       bool
	Override    bool
}

// Field is a declared data member.
type Field struct {
	Name    string
	Comment string
	Access  Access
	Type    string
}

// Enumerator is one declared enum value. Value is the literal initializer
// text, empty when none was written.
type Enumerator struct {
	Name    string
	Comment string
	Value   string
}

// Enum is a declared enumeration.
type Enum struct {
	Name    string
	Comment string
	Access  Access
	Values  []Enumerator
}

// Class is a declared class, struct, or union.
type Class struct {
	Name     string
	FullName string
	Comment  string
	Key      string // "class", "struct", or "union"
	Bases    []string
	Methods  []Method
	Fields   []Field
	Enums    []Enum
}

// Namespace is a top-level declared namespace and its members.
type Namespace struct {
	Name    string
	Comment string
	Classes []Class
	Enums   []Enum
}

// File is the declaration graph of one parsed source file.
type File struct {
	Path       string
	Namespaces []Namespace
}

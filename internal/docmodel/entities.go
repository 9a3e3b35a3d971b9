package docmodel

// EntityDoc holds the documentation fields shared by every entity kind.
// A nil block means the corresponding tag never appeared in the comment.
type EntityDoc struct {
	Name       string
	Desc       *DocBlock
	Brief      *DocBlock
	Deprecated *DocBlock
	Todo       *DocBlock
}

// MethodDoc documents one public method of a class. The boolean facts are
// copied verbatim from the declaration graph and never reinterpreted here.
type MethodDoc struct {
	EntityDoc

	Params     []*Param
	Returns    *DocBlock
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

	// Class is a non-owning back-reference to the enclosing class, set by the
	// extractor after construction. Used only for scoped lookup.
	Class *ClassDoc
}

// AttributeDoc documents one public attribute of a class. Attributes appear
// even when undocumented; their doc fields are simply nil.
type AttributeDoc struct {
	EntityDoc

	Type string

	// Class is a non-owning back-reference to the enclosing class.
	Class *ClassDoc
}

// EnumeratorDoc documents one value of an enum. Value is the declared literal,
// empty when the enumerator has no explicit value.
type EnumeratorDoc struct {
	EntityDoc

	Value string
}

// EnumDoc documents an enum and its enumerators in declaration order.
type EnumDoc struct {
	EntityDoc

	Values []*EnumeratorDoc
}

// ClassDoc documents a class, struct, or union.
type ClassDoc struct {
	EntityDoc

	ClassKey         string
	FullName         string
	PublicMethods    []*MethodDoc
	PublicAttributes []*AttributeDoc
	PublicEnums      map[string]*EnumDoc
	BaseClasses      []string

	// Namespace is a non-owning back-reference to the owning namespace. The
	// class must be reachable as Namespace.Classes[Name] of exactly this
	// namespace.
	Namespace *NamespaceDoc

	// ancestry memoizes InheritanceTree.
	ancestry []*ClassDoc
}

// NamespaceDoc documents a namespace. Its maps accumulate entries as files
// are parsed: a namespace reopened across files contributes to one instance.
type NamespaceDoc struct {
	EntityDoc

	Classes map[string]*ClassDoc
	Enums   map[string]*EnumDoc
}

// NewNamespaceDoc creates a namespace doc with empty symbol maps.
func NewNamespaceDoc(name string) *NamespaceDoc {
	return &NamespaceDoc{
		EntityDoc: EntityDoc{Name: name},
		Classes:   make(map[string]*ClassDoc),
		Enums:     make(map[string]*EnumDoc),
	}
}

// FileDoc records the entities declared in one source file. The maps hold the
// same instances as the global tables; they are views, not copies.
type FileDoc struct {
	EntityDoc

	Namespaces map[string]*NamespaceDoc
	Classes    map[string]*ClassDoc
	Enums      map[string]*EnumDoc
}

// NewFileDoc creates a file doc for the given base name with empty maps and a
// present-but-empty description.
func NewFileDoc(name string) *FileDoc {
	return &FileDoc{
		EntityDoc:  EntityDoc{Name: name, Desc: &DocBlock{}},
		Namespaces: make(map[string]*NamespaceDoc),
		Classes:    make(map[string]*ClassDoc),
		Enums:      make(map[string]*EnumDoc),
	}
}

// ParsedData is the full entity graph produced by one parse run: the global
// tables keyed by simple name, plus per-file views. Duplicate simple names
// across files coalesce: last writer wins for classes and enums, while
// namespaces merge into the first instance seen.
type ParsedData struct {
	Namespaces map[string]*NamespaceDoc
	Classes    map[string]*ClassDoc
	Enums      map[string]*EnumDoc
	Files      map[string]*FileDoc
}

// NewParsedData creates an empty entity graph.
func NewParsedData() *ParsedData {
	return &ParsedData{
		Namespaces: make(map[string]*NamespaceDoc),
		Classes:    make(map[string]*ClassDoc),
		Enums:      make(map[string]*EnumDoc),
		Files:      make(map[string]*FileDoc),
	}
}

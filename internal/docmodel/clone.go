package docmodel

// Clone produces a deep copy of the entity graph sharing no mutable state
// with the original. Aliasing is preserved: a class reachable from its
// namespace, from the global class table, and from a file view maps to one
// clone reachable from all three, and every back-reference points at the
// clone of its original target. Memoized inheritance closures are not copied;
// they recompute lazily against the cloned maps.
func (p *ParsedData) Clone() *ParsedData {
	cl := &cloner{
		namespaces: make(map[*NamespaceDoc]*NamespaceDoc),
		classes:    make(map[*ClassDoc]*ClassDoc),
		enums:      make(map[*EnumDoc]*EnumDoc),
	}

	out := NewParsedData()
	for name, ns := range p.Namespaces {
		out.Namespaces[name] = cl.namespace(ns)
	}
	for name, c := range p.Classes {
		out.Classes[name] = cl.class(c)
	}
	for name, e := range p.Enums {
		out.Enums[name] = cl.enum(e)
	}
	for path, f := range p.Files {
		out.Files[path] = cl.file(f)
	}
	return out
}

type cloner struct {
	namespaces map[*NamespaceDoc]*NamespaceDoc
	classes    map[*ClassDoc]*ClassDoc
	enums      map[*EnumDoc]*EnumDoc
}

func cloneBlock(b *DocBlock) *DocBlock {
	if b == nil {
		return nil
	}
	elements := make([]DocElement, len(b.Elements))
	copy(elements, b.Elements)
	return &DocBlock{Elements: elements}
}

func cloneEntity(e EntityDoc) EntityDoc {
	return EntityDoc{
		Name:       e.Name,
		Desc:       cloneBlock(e.Desc),
		Brief:      cloneBlock(e.Brief),
		Deprecated: cloneBlock(e.Deprecated),
		Todo:       cloneBlock(e.Todo),
	}
}

func (cl *cloner) namespace(ns *NamespaceDoc) *NamespaceDoc {
	if ns == nil {
		return nil
	}
	if out, ok := cl.namespaces[ns]; ok {
		return out
	}
	out := &NamespaceDoc{
		EntityDoc: cloneEntity(ns.EntityDoc),
		Classes:   make(map[string]*ClassDoc, len(ns.Classes)),
		Enums:     make(map[string]*EnumDoc, len(ns.Enums)),
	}
	// Memoize before descending: classes refer back to their namespace.
	cl.namespaces[ns] = out
	for name, c := range ns.Classes {
		out.Classes[name] = cl.class(c)
	}
	for name, e := range ns.Enums {
		out.Enums[name] = cl.enum(e)
	}
	return out
}

func (cl *cloner) class(c *ClassDoc) *ClassDoc {
	if c == nil {
		return nil
	}
	if out, ok := cl.classes[c]; ok {
		return out
	}
	out := &ClassDoc{
		EntityDoc:   cloneEntity(c.EntityDoc),
		ClassKey:    c.ClassKey,
		FullName:    c.FullName,
		PublicEnums: make(map[string]*EnumDoc, len(c.PublicEnums)),
		BaseClasses: append([]string(nil), c.BaseClasses...),
	}
	cl.classes[c] = out
	out.Namespace = cl.namespace(c.Namespace)

	out.PublicMethods = make([]*MethodDoc, 0, len(c.PublicMethods))
	for _, m := range c.PublicMethods {
		out.PublicMethods = append(out.PublicMethods, cl.method(m, out))
	}
	out.PublicAttributes = make([]*AttributeDoc, 0, len(c.PublicAttributes))
	for _, a := range c.PublicAttributes {
		out.PublicAttributes = append(out.PublicAttributes, cl.attribute(a, out))
	}
	for name, e := range c.PublicEnums {
		out.PublicEnums[name] = cl.enum(e)
	}
	return out
}

func (cl *cloner) method(m *MethodDoc, owner *ClassDoc) *MethodDoc {
	out := &MethodDoc{
		EntityDoc:   cloneEntity(m.EntityDoc),
		Returns:     cloneBlock(m.Returns),
		ReturnType:  m.ReturnType,
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
		Class:       owner,
	}
	out.Params = make([]*Param, 0, len(m.Params))
	for _, p := range m.Params {
		out.Params = append(out.Params, &Param{
			Name:      p.Name,
			Desc:      cloneBlock(p.Desc),
			Type:      p.Type,
			Direction: p.Direction,
		})
	}
	return out
}

func (cl *cloner) attribute(a *AttributeDoc, owner *ClassDoc) *AttributeDoc {
	return &AttributeDoc{
		EntityDoc: cloneEntity(a.EntityDoc),
		Type:      a.Type,
		Class:     owner,
	}
}

func (cl *cloner) enum(e *EnumDoc) *EnumDoc {
	if e == nil {
		return nil
	}
	if out, ok := cl.enums[e]; ok {
		return out
	}
	out := &EnumDoc{EntityDoc: cloneEntity(e.EntityDoc)}
	cl.enums[e] = out
	out.Values = make([]*EnumeratorDoc, 0, len(e.Values))
	for _, v := range e.Values {
		out.Values = append(out.Values, &EnumeratorDoc{
			EntityDoc: cloneEntity(v.EntityDoc),
			Value:     v.Value,
		})
	}
	return out
}

func (cl *cloner) file(f *FileDoc) *FileDoc {
	if f == nil {
		return nil
	}
	out := &FileDoc{
		EntityDoc:  cloneEntity(f.EntityDoc),
		Namespaces: make(map[string]*NamespaceDoc, len(f.Namespaces)),
		Classes:    make(map[string]*ClassDoc, len(f.Classes)),
		Enums:      make(map[string]*EnumDoc, len(f.Enums)),
	}
	for name, ns := range f.Namespaces {
		out.Namespaces[name] = cl.namespace(ns)
	}
	for name, c := range f.Classes {
		out.Classes[name] = cl.class(c)
	}
	for name, e := range f.Enums {
		out.Enums[name] = cl.enum(e)
	}
	return out
}

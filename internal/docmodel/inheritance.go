package docmodel

// InheritanceTree returns the class followed by the transitive closure of its
// base classes: depth-first through the first declared base, then the second,
// and so on, with every class appearing exactly once even when reachable via
// multiple paths. Base names not found in the owning namespace are external
// and skipped. The result is memoized per class.
//
// Valid declaration input cannot contain base-class cycles, but malformed
// input can; the visiting set breaks such cycles instead of recursing forever.
func (c *ClassDoc) InheritanceTree() []*ClassDoc {
	return c.inheritanceTree(make(map[*ClassDoc]bool))
}

func (c *ClassDoc) inheritanceTree(visiting map[*ClassDoc]bool) []*ClassDoc {
	if c.ancestry != nil {
		return c.ancestry
	}

	visiting[c] = true
	result := []*ClassDoc{c}
	seen := map[*ClassDoc]bool{c: true}

	for _, baseName := range c.BaseClasses {
		if c.Namespace == nil {
			break
		}
		base, ok := c.Namespace.Classes[baseName]
		if !ok || visiting[base] {
			continue
		}
		for _, ancestor := range base.inheritanceTree(visiting) {
			if !seen[ancestor] {
				seen[ancestor] = true
				result = append(result, ancestor)
			}
		}
	}

	delete(visiting, c)
	c.ancestry = result
	return result
}

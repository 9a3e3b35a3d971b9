package extract

import (
	"path/filepath"

	"github.com/projectd/projectd/internal/debug"
	"github.com/projectd/projectd/internal/decl"
	"github.com/projectd/projectd/internal/docmodel"
)

// Context accumulates the entity graph across many files. It is owned by the
// top-level parse orchestrator and is not safe for concurrent use.
type Context struct {
	Data *docmodel.ParsedData
}

// NewContext creates a context with an empty graph.
func NewContext() *Context {
	return &Context{Data: docmodel.NewParsedData()}
}

// AddFile folds one file's declaration graph into the context. A namespace
// already known by name merges into the existing instance; classes and enums
// re-encountered under the same simple name replace the earlier entry in both
// the global tables and the namespace maps. The returned FileDoc views the
// entities this file declared, sharing instances with the global tables.
func (c *Context) AddFile(file *decl.File) *docmodel.FileDoc {
	fileDoc := docmodel.NewFileDoc(filepath.Base(file.Path))

	for _, ns := range file.Namespaces {
		nsDoc := Namespace(ns)
		if nsDoc == nil {
			debug.LogExtract("skipping namespace %q in %s: comment names a different entity\n", ns.Name, file.Path)
			continue
		}

		if existing, ok := c.Data.Namespaces[nsDoc.Name]; ok {
			nsDoc = existing
		} else {
			c.Data.Namespaces[nsDoc.Name] = nsDoc
		}
		fileDoc.Namespaces[nsDoc.Name] = nsDoc

		for _, cls := range ns.Classes {
			classDoc := Class(cls, nsDoc)
			if classDoc == nil {
				debug.LogExtract("skipping class %q in %s: comment names a different entity\n", cls.Name, file.Path)
				continue
			}
			nsDoc.Classes[classDoc.Name] = classDoc
			c.Data.Classes[classDoc.Name] = classDoc
			fileDoc.Classes[classDoc.Name] = classDoc
		}

		for _, enum := range ns.Enums {
			enumDoc := Enum(enum)
			if enumDoc == nil {
				debug.LogExtract("skipping enum %q in %s: comment names a different entity\n", enum.Name, file.Path)
				continue
			}
			nsDoc.Enums[enumDoc.Name] = enumDoc
			c.Data.Enums[enumDoc.Name] = enumDoc
			fileDoc.Enums[enumDoc.Name] = enumDoc
		}
	}

	c.Data.Files[file.Path] = fileDoc
	return fileDoc
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectd/projectd/internal/decl"
)

func TestAddFileBuildsGlobalTablesAndFileView(t *testing.T) {
	ctx := NewContext()

	fileDoc := ctx.AddFile(&decl.File{
		Path: "src/widgets.hpp",
		Namespaces: []decl.Namespace{
			{
				Name:    "ns",
				Comment: "/// Widget namespace",
				Classes: []decl.Class{
					{Name: "Widget", Comment: "/// @brief A widget"},
				},
				Enums: []decl.Enum{
					{Name: "Mode"},
				},
			},
		},
	})

	require.Contains(t, ctx.Data.Namespaces, "ns")
	require.Contains(t, ctx.Data.Classes, "Widget")
	require.Contains(t, ctx.Data.Enums, "Mode")

	ns := ctx.Data.Namespaces["ns"]
	assert.Same(t, ctx.Data.Classes["Widget"], ns.Classes["Widget"])
	assert.Same(t, ctx.Data.Enums["Mode"], ns.Enums["Mode"])
	assert.Same(t, ns, ctx.Data.Classes["Widget"].Namespace)

	// The file view shares instances with the global tables and is named by
	// the file's base name but keyed by its full path.
	assert.Same(t, fileDoc, ctx.Data.Files["src/widgets.hpp"])
	assert.Equal(t, "widgets.hpp", fileDoc.Name)
	assert.Same(t, ns, fileDoc.Namespaces["ns"])
	assert.Same(t, ctx.Data.Classes["Widget"], fileDoc.Classes["Widget"])
	assert.Same(t, ctx.Data.Enums["Mode"], fileDoc.Enums["Mode"])
}

func TestAddFileMergesReopenedNamespace(t *testing.T) {
	ctx := NewContext()

	ctx.AddFile(&decl.File{
		Path: "a.hpp",
		Namespaces: []decl.Namespace{
			{
				Name:    "ns",
				Comment: "/// first opening",
				Classes: []decl.Class{{Name: "A"}},
			},
		},
	})
	first := ctx.Data.Namespaces["ns"]

	ctx.AddFile(&decl.File{
		Path: "b.hpp",
		Namespaces: []decl.Namespace{
			{
				Name:    "ns",
				Comment: "/// second opening",
				Classes: []decl.Class{{Name: "B"}},
			},
		},
	})

	// The reopened namespace accumulates into the first instance; the second
	// file's namespace comment does not replace it.
	assert.Same(t, first, ctx.Data.Namespaces["ns"])
	assert.Equal(t, "first opening", first.Desc.Elements[0].Text)
	assert.Contains(t, first.Classes, "A")
	assert.Contains(t, first.Classes, "B")

	// Both file views reference the shared namespace instance.
	assert.Same(t, first, ctx.Data.Files["a.hpp"].Namespaces["ns"])
	assert.Same(t, first, ctx.Data.Files["b.hpp"].Namespaces["ns"])
}

func TestAddFileDuplicateClassLastWins(t *testing.T) {
	ctx := NewContext()

	ctx.AddFile(&decl.File{
		Path: "a.hpp",
		Namespaces: []decl.Namespace{
			{Name: "ns", Classes: []decl.Class{{Name: "Widget", Comment: "/// first"}}},
		},
	})
	first := ctx.Data.Classes["Widget"]

	ctx.AddFile(&decl.File{
		Path: "b.hpp",
		Namespaces: []decl.Namespace{
			{Name: "ns", Classes: []decl.Class{{Name: "Widget", Comment: "/// second"}}},
		},
	})
	second := ctx.Data.Classes["Widget"]

	assert.NotSame(t, first, second)
	assert.Equal(t, "second", second.Desc.Elements[0].Text)
	assert.Same(t, second, ctx.Data.Namespaces["ns"].Classes["Widget"])

	// The earlier file's view still holds the instance it declared.
	assert.Same(t, first, ctx.Data.Files["a.hpp"].Classes["Widget"])
	assert.Same(t, second, ctx.Data.Files["b.hpp"].Classes["Widget"])
}

func TestAddFileSkipsGuardRejectedEntities(t *testing.T) {
	ctx := NewContext()

	ctx.AddFile(&decl.File{
		Path: "a.hpp",
		Namespaces: []decl.Namespace{
			{
				Name:    "ns",
				Classes: []decl.Class{{Name: "Widget", Comment: "/// @class Gadget"}},
				Enums:   []decl.Enum{{Name: "Mode", Comment: "/// @enum Other"}},
			},
			{
				Name:    "rejected",
				Comment: "/// @namespace different",
			},
		},
	})

	assert.Contains(t, ctx.Data.Namespaces, "ns")
	assert.NotContains(t, ctx.Data.Namespaces, "rejected")
	assert.Empty(t, ctx.Data.Classes)
	assert.Empty(t, ctx.Data.Enums)
}

package render

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/projectd/projectd/internal/config"
	"github.com/projectd/projectd/internal/docmodel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func textBlock(text string) *docmodel.DocBlock {
	return &docmodel.DocBlock{Elements: []docmodel.DocElement{{Text: text, Kind: docmodel.ElementText}}}
}

func testGraph() *docmodel.ParsedData {
	data := docmodel.NewParsedData()

	ns := docmodel.NewNamespaceDoc("ns")
	data.Namespaces["ns"] = ns

	run := &docmodel.MethodDoc{EntityDoc: docmodel.EntityDoc{
		Name:  "run",
		Brief: textBlock("Runs the widget loop."),
	}}
	other := &docmodel.ClassDoc{
		EntityDoc: docmodel.EntityDoc{
			Name: "Other",
			Desc: textBlock("Calls into Missing::thing() internally."),
		},
		ClassKey:      "class",
		FullName:      "ns::Other",
		PublicMethods: []*docmodel.MethodDoc{run},
		PublicEnums:   map[string]*docmodel.EnumDoc{},
		Namespace:     ns,
	}
	run.Class = other

	foo := &docmodel.ClassDoc{
		EntityDoc: docmodel.EntityDoc{
			Name: "Foo",
			Desc: &docmodel.DocBlock{Elements: []docmodel.DocElement{
				{Text: "See Other::run() for details.", Kind: docmodel.ElementText},
				{Text: "Foo f;", Kind: docmodel.ElementCode},
			}},
		},
		ClassKey:    "class",
		FullName:    "ns::Foo",
		PublicEnums: map[string]*docmodel.EnumDoc{},
		Namespace:   ns,
	}

	ns.Classes["Foo"] = foo
	ns.Classes["Other"] = other
	data.Classes["Foo"] = foo
	data.Classes["Other"] = other

	color := &docmodel.EnumDoc{
		EntityDoc: docmodel.EntityDoc{Name: "Color"},
		Values:    []*docmodel.EnumeratorDoc{{EntityDoc: docmodel.EntityDoc{Name: "Red"}}},
	}
	ns.Enums["Color"] = color
	data.Enums["Color"] = color

	file := docmodel.NewFileDoc("foo.hpp")
	file.Namespaces["ns"] = ns
	file.Classes["Foo"] = foo
	data.Files["include/foo.hpp"] = file

	return data
}

func writeTemplates(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(dir, 0755))

	files := map[string]string{
		"code.tmpl":  "<pre>{{.Value}}</pre>",
		"link.tmpl":  "[{{.Matched}}]({{.Namespace}}/{{.Class}})",
		"class.tmpl": "# {{.Class.Name}}\n{{plain .Class.Desc}}\n",
		"file.tmpl":  "FILE {{.File.Name}}\n",
		"enums.tmpl": "{{range .Enums}}{{.Name}}\n{{end}}",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Project: config.Project{Name: "test", Root: root},
		Templates: config.Templates{
			Dir:           "templates",
			CodeBlock:     "code.tmpl",
			ReferenceLink: "link.tmpl",
		},
		Outputs: []config.Output{
			{Name: "classes", Kind: config.OutputClasses, Template: "class.tmpl", Pattern: "{class_name}.md", Dir: "out/classes"},
			{Name: "files", Kind: config.OutputFiles, Template: "file.tmpl", Pattern: "{file_name}.md", Dir: "out/files"},
			{Name: "enums", Kind: config.OutputEnums, Template: "enums.tmpl", Pattern: "enums.md", Dir: "out/enums"},
		},
		SearchIndex: true,
	}
}

func readOutput(t *testing.T, root string, parts ...string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(append([]string{root}, parts...)...))
	require.NoError(t, err)
	return string(content)
}

func TestRenderWritesAllOutputs(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root)

	r, err := New(testConfig(root))
	require.NoError(t, err)

	summary, err := r.Render(context.Background(), testGraph())
	require.NoError(t, err)

	// Two class pages, one file page, one enum page, one search index.
	assert.Equal(t, 5, summary.FilesWritten)

	fooPage := readOutput(t, root, "out", "classes", "Foo.md")
	assert.Equal(t, "# Foo\nSee [Other::run()](ns/Other) for details.\n\n<pre>Foo f;</pre>\n", fooPage)

	otherPage := readOutput(t, root, "out", "classes", "Other.md")
	assert.Equal(t, "# Other\nCalls into Missing::thing() internally.\n", otherPage)

	assert.Equal(t, "FILE foo.hpp\n", readOutput(t, root, "out", "files", "foo.hpp.md"))
	assert.Equal(t, "Color\n", readOutput(t, root, "out", "enums", "enums.md"))
}

func TestRenderReportsUnresolvedPerOutput(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root)

	r, err := New(testConfig(root))
	require.NoError(t, err)

	summary, err := r.Render(context.Background(), testGraph())
	require.NoError(t, err)

	unresolved := summary.Unresolved["classes"]
	require.Len(t, unresolved, 1)
	assert.Equal(t, "Missing::thing()", unresolved[0].Token)
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root)

	data := testGraph()
	pristine := data.Clone()

	r, err := New(testConfig(root))
	require.NoError(t, err)
	_, err = r.Render(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, pristine, data)
}

func TestRenderCleansOutputDirectories(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root)

	stale := filepath.Join(root, "out", "classes", "stale.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	r, err := New(testConfig(root))
	require.NoError(t, err)
	_, err = r.Render(context.Background(), testGraph())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderWritesSearchIndex(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root)

	r, err := New(testConfig(root))
	require.NoError(t, err)
	_, err = r.Render(context.Background(), testGraph())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, IndexFileName))
	require.NoError(t, err)

	var idx Index
	require.NoError(t, json.Unmarshal(content, &idx))
	assert.NotEmpty(t, idx.Entries)
}

func TestNewMissingTemplate(t *testing.T) {
	root := t.TempDir()
	// No template files written.
	_, err := New(testConfig(root))
	assert.Error(t, err)
}

func findEntry(t *testing.T, idx *Index, ref string) IndexEntry {
	t.Helper()
	for _, entry := range idx.Entries {
		if entry.Ref == ref {
			return entry
		}
	}
	t.Fatalf("no index entry for %s", ref)
	return IndexEntry{}
}

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex(testGraph())

	ns := findEntry(t, idx, "ns")
	assert.Equal(t, "namespace", ns.Kind)

	class := findEntry(t, idx, "ns::Foo")
	assert.Equal(t, "class", class.Kind)
	assert.Equal(t, "Foo", class.Name)
	assert.Contains(t, class.Terms, "foo")
	// Code samples never contribute terms.
	assert.NotContains(t, class.Terms, "f;")

	method := findEntry(t, idx, "ns::Other::run")
	assert.Equal(t, "method", method.Kind)
	assert.Equal(t, "Runs the widget loop.", method.Brief)
	assert.Contains(t, method.Terms, "widget")
	assert.Contains(t, method.Terms, "loop")

	enum := findEntry(t, idx, "ns::Color")
	assert.Equal(t, "enum", enum.Kind)
	findEntry(t, idx, "ns::Color::Red")
}

func TestRegexReplaceFunc(t *testing.T) {
	tmpl, err := template.New("x").Funcs(funcMap()).Parse(`{{regexReplace . "o+" "0"}}`)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, tmpl.Execute(&buf, "foo"))
	assert.Equal(t, "f0", buf.String())
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", plainText(nil))

	block := &docmodel.DocBlock{Elements: []docmodel.DocElement{
		{Text: "one", Kind: docmodel.ElementText},
		{Text: "two", Kind: docmodel.ElementCode},
	}}
	assert.Equal(t, "one\n\ntwo", plainText(block))
}

// Package render executes the configured outputs over the parsed entity
// graph. Each output gets its own post-processing pass and its own output
// directory, which is emptied and rewritten on every run.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/projectd/projectd/internal/config"
	"github.com/projectd/projectd/internal/debug"
	"github.com/projectd/projectd/internal/docmodel"
	"github.com/projectd/projectd/internal/postprocess"
	"github.com/projectd/projectd/internal/xref"
)

// Renderer executes the rendering passes described by a configuration.
type Renderer struct {
	cfg  *config.Config
	tmpl *template.Template
}

// Summary reports what one render run produced.
type Summary struct {
	FilesWritten int
	// Unresolved holds each output's unresolved-reference report, keyed by
	// output name.
	Unresolved map[string][]xref.Unresolved
}

// New loads every template the configuration references and returns a
// renderer bound to it.
func New(cfg *config.Config) (*Renderer, error) {
	dir := cfg.Templates.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.Project.Root, dir)
	}

	names := make(map[string]bool)
	if cfg.Templates.CodeBlock != "" {
		names[cfg.Templates.CodeBlock] = true
	}
	if cfg.Templates.ReferenceLink != "" {
		names[cfg.Templates.ReferenceLink] = true
	}
	for _, out := range cfg.Outputs {
		names[out.Template] = true
	}

	files := make([]string, 0, len(names))
	for name := range names {
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	tmpl := template.New("projectd").Funcs(funcMap())
	if len(files) > 0 {
		parsed, err := tmpl.ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("failed to load templates from %s: %w", dir, err)
		}
		tmpl = parsed
	}
	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"regexReplace": func(s, find, replace string) (string, error) {
			re, err := regexp.Compile(find)
			if err != nil {
				return "", fmt.Errorf("regexReplace: %w", err)
			}
			return re.ReplaceAllString(s, replace), nil
		},
		"plain": plainText,
	}
}

// plainText flattens a block to plain text, joining elements with blank
// lines. A nil block renders as the empty string.
func plainText(block *docmodel.DocBlock) string {
	if block == nil {
		return ""
	}
	parts := make([]string, 0, len(block.Elements))
	for _, element := range block.Elements {
		parts = append(parts, element.Text)
	}
	return strings.Join(parts, "\n\n")
}

// callbacks builds the code and reference renderers shared by every pass.
// Template failures fall back to the unrendered text so one bad sample does
// not abort a build.
func (r *Renderer) callbacks() postprocess.Callbacks {
	return postprocess.Callbacks{
		RenderCode: func(text string) string {
			if r.cfg.Templates.CodeBlock == "" {
				return text
			}
			var buf strings.Builder
			data := struct{ Value string }{text}
			if err := r.tmpl.ExecuteTemplate(&buf, r.cfg.Templates.CodeBlock, data); err != nil {
				debug.LogRender("code template failed: %v\n", err)
				return text
			}
			return buf.String()
		},
		RenderLink: func(matched, namespace, class, member string) string {
			if r.cfg.Templates.ReferenceLink == "" {
				return matched
			}
			var buf strings.Builder
			data := struct {
				Matched   string
				Namespace string
				Class     string
				Member    string
			}{matched, namespace, class, member}
			if err := r.tmpl.ExecuteTemplate(&buf, r.cfg.Templates.ReferenceLink, data); err != nil {
				debug.LogRender("reference template failed: %v\n", err)
				return matched
			}
			// Links are spliced back into running text, so a trailing
			// template newline would break the sentence.
			return strings.TrimSpace(buf.String())
		},
	}
}

// Render post-processes the graph once per output and writes every output
// tree, plus the search index when configured. The input graph is never
// mutated.
func (r *Renderer) Render(ctx context.Context, data *docmodel.ParsedData) (*Summary, error) {
	cb := r.callbacks()
	passes := make([]postprocess.Pass, 0, len(r.cfg.Outputs))
	for _, out := range r.cfg.Outputs {
		passes = append(passes, postprocess.Pass{Name: out.Name, Callbacks: cb})
	}

	results, err := postprocess.RunAll(ctx, data, passes)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Unresolved: make(map[string][]xref.Unresolved)}
	for _, out := range r.cfg.Outputs {
		result := results[out.Name]
		summary.Unresolved[out.Name] = result.Unresolved

		dir := r.outputDir(out)
		if err := cleanDir(dir); err != nil {
			return nil, fmt.Errorf("output %s: %w", out.Name, err)
		}

		n, err := r.writeOutput(out, dir, result.Data)
		if err != nil {
			return nil, err
		}
		summary.FilesWritten += n
	}

	if r.cfg.SearchIndex {
		path := filepath.Join(r.cfg.Project.Root, IndexFileName)
		if err := WriteIndex(path, BuildIndex(data)); err != nil {
			return nil, err
		}
		summary.FilesWritten++
	}
	return summary, nil
}

func (r *Renderer) outputDir(out config.Output) string {
	if filepath.IsAbs(out.Dir) {
		return out.Dir
	}
	return filepath.Join(r.cfg.Project.Root, out.Dir)
}

func (r *Renderer) writeOutput(out config.Output, dir string, data *docmodel.ParsedData) (int, error) {
	switch out.Kind {
	case config.OutputClasses:
		return r.writeClasses(out, dir, data)
	case config.OutputFiles:
		return r.writeFileViews(out, dir, data)
	case config.OutputEnums:
		return r.writeEnums(out, dir, data)
	}
	return 0, fmt.Errorf("output %s: unknown kind %q", out.Name, out.Kind)
}

func (r *Renderer) writeClasses(out config.Output, dir string, data *docmodel.ParsedData) (int, error) {
	written := 0
	for _, ns := range sortedValues(data.Namespaces) {
		for _, class := range sortedValues(ns.Classes) {
			name := strings.ReplaceAll(out.Pattern, "{class_name}", class.Name)
			payload := struct{ Class *docmodel.ClassDoc }{class}
			if err := r.writeFile(out, dir, name, payload); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func (r *Renderer) writeFileViews(out config.Output, dir string, data *docmodel.ParsedData) (int, error) {
	written := 0
	for _, file := range sortedValues(data.Files) {
		name := strings.ReplaceAll(out.Pattern, "{file_name}", file.Name)
		payload := struct{ File *docmodel.FileDoc }{file}
		if err := r.writeFile(out, dir, name, payload); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (r *Renderer) writeEnums(out config.Output, dir string, data *docmodel.ParsedData) (int, error) {
	payload := struct{ Enums []*docmodel.EnumDoc }{sortedValues(data.Enums)}
	if err := r.writeFile(out, dir, out.Pattern, payload); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *Renderer) writeFile(out config.Output, dir, name string, data any) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output %s: %w", out.Name, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output %s: %w", out.Name, err)
	}
	if err := r.tmpl.ExecuteTemplate(f, out.Template, data); err != nil {
		f.Close()
		return fmt.Errorf("output %s: template %s: %w", out.Name, out.Template, err)
	}
	debug.LogRender("wrote %s\n", path)
	return f.Close()
}

// cleanDir empties the directory, creating it when missing. Previous builds
// may have written files for entities that no longer exist, so leftovers are
// never trusted.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// sortedValues returns the map's values ordered by key, so generated output
// is reproducible run to run.
func sortedValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Package config loads the documentation build configuration from a
// .projectd.kdl file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".projectd.kdl"

// OutputKind selects the entity subset an output renders.
type OutputKind string

const (
	OutputClasses OutputKind = "class"
	OutputFiles   OutputKind = "file"
	OutputEnums   OutputKind = "enums"
)

// Config is the full build configuration.
type Config struct {
	Project     Project
	Input       Input
	Templates   Templates
	Outputs     []Output
	Watch       Watch
	SearchIndex bool
}

// Project identifies the documented project.
type Project struct {
	Name string
	Root string
}

// Input selects the source files to document.
type Input struct {
	// Dirs are the scanned directories, relative to the project root.
	Dirs []string
	// Include and Exclude are doublestar globs matched against paths
	// relative to each scanned directory.
	Include []string
	Exclude []string
	// Defines are preprocessor symbols assumed defined while parsing.
	Defines []string
}

// Templates locates the template files shared by all outputs.
type Templates struct {
	// Dir is the template directory, relative to the project root.
	Dir string
	// CodeBlock is the template rendering one code or verbatim sample.
	CodeBlock string
	// ReferenceLink is the template rendering one resolved cross-reference.
	ReferenceLink string
}

// Output is one rendering configuration: a named pass over an entity subset.
type Output struct {
	Name     string
	Kind     OutputKind
	Template string
	// Pattern names generated files; {class_name} and {file_name}
	// placeholders expand per entity.
	Pattern string
	// Dir is the output directory, relative to the project root. It is
	// cleaned and rewritten on every build.
	Dir string
}

// Watch configures incremental rebuild mode.
type Watch struct {
	Enabled    bool
	DebounceMs int
}

// ValidationError reports a configuration the build cannot run with.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Default returns the configuration used when no file is present: scan the
// root for headers and render nothing until outputs are configured.
func Default(root string) *Config {
	return &Config{
		Project:   Project{Root: root},
		Input:     Input{Dirs: []string{"."}},
		Templates: Templates{Dir: "templates"},
		Watch:     Watch{DebounceMs: 200},
	}
}

// Load reads the configuration from projectRoot, falling back to defaults
// when no file exists.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(projectRoot), nil
	}
	return loadFrom(path, projectRoot)
}

// LoadFile reads the configuration from an explicit file path. Unlike Load,
// a missing file is an error. A relative project root in the file resolves
// against the file's directory.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path, filepath.Dir(path))
}

func loadFrom(path, projectRoot string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the configuration a build cannot guess.
func (c *Config) Validate() error {
	if len(c.Input.Dirs) == 0 {
		return &ValidationError{Field: "input.dirs", Reason: "at least one source directory is required"}
	}

	names := make(map[string]bool, len(c.Outputs))
	for _, out := range c.Outputs {
		if out.Name == "" {
			return &ValidationError{Field: "output", Reason: "outputs need a name"}
		}
		if names[out.Name] {
			return &ValidationError{Field: "output " + out.Name, Reason: "duplicate output name"}
		}
		names[out.Name] = true

		switch out.Kind {
		case OutputClasses, OutputFiles, OutputEnums:
		default:
			return &ValidationError{
				Field:  "output " + out.Name,
				Reason: fmt.Sprintf("unknown kind %q (want class, file, or enums)", out.Kind),
			}
		}
		if out.Template == "" {
			return &ValidationError{Field: "output " + out.Name, Reason: "template is required"}
		}
		if out.Dir == "" {
			return &ValidationError{Field: "output " + out.Name, Reason: "dir is required"}
		}
	}
	return nil
}

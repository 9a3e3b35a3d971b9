package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Parse builds a configuration from KDL text. Unknown nodes are ignored so
// configs stay forward compatible.
func Parse(content string) (*Config, error) {
	cfg := Default("")
	cfg.Project.Root = ""
	cfg.Input.Dirs = nil

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "name":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Name = s
					}
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Root = s
					}
				}
			}
		case "input":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dirs":
					cfg.Input.Dirs = collectStringArgs(cn)
				case "include":
					cfg.Input.Include = collectStringArgs(cn)
				case "exclude":
					cfg.Input.Exclude = collectStringArgs(cn)
				case "defines":
					cfg.Input.Defines = collectStringArgs(cn)
				}
			}
		case "templates":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Templates.Dir = s
					}
				case "code_block":
					if s, ok := firstStringArg(cn); ok {
						cfg.Templates.CodeBlock = s
					}
				case "reference_link":
					if s, ok := firstStringArg(cn); ok {
						cfg.Templates.ReferenceLink = s
					}
				}
			}
		case "output":
			out := Output{}
			if s, ok := firstStringArg(n); ok {
				out.Name = s
			}
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "kind":
					if s, ok := firstStringArg(cn); ok {
						out.Kind = OutputKind(s)
					}
				case "template":
					if s, ok := firstStringArg(cn); ok {
						out.Template = s
					}
				case "pattern":
					if s, ok := firstStringArg(cn); ok {
						out.Pattern = s
					}
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						out.Dir = s
					}
				}
			}
			cfg.Outputs = append(cfg.Outputs, out)
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "search_index":
			if b, ok := firstBoolArg(n); ok {
				cfg.SearchIndex = b
			}
		}
	}

	if len(cfg.Input.Dirs) == 0 {
		cfg.Input.Dirs = []string{"."}
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs gathers strings from inline arguments, or from child
// nodes when the block form is used:
//
//	include "**/*.hpp" "**/*.h"
//	include { "**/*.hpp"; "**/*.h" }
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

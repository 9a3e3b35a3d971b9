package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/projectd/projectd/internal/config"
	"github.com/projectd/projectd/internal/cppdecl"
	"github.com/projectd/projectd/internal/debug"
	"github.com/projectd/projectd/internal/extract"
	"github.com/projectd/projectd/internal/render"
	"github.com/projectd/projectd/internal/scan"
	"github.com/projectd/projectd/internal/version"
	"github.com/projectd/projectd/pkg/pathutil"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	var cfg *config.Config
	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err == nil && c.IsSet("root") {
			cfg.Project.Root = absRoot
		}
	} else {
		cfg, err = config.Load(absRoot)
	}
	if err != nil {
		return nil, err
	}

	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Input.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Input.Exclude = exclude
	}
	if c.Bool("watch") {
		cfg.Watch.Enabled = true
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "projectd",
		Usage:                  "Generate documentation from doxygen comments in C++ headers",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (defaults to " + config.FileName + " in the root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (holds " + config.FileName + ")",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Rebuild when source files change",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug output to a log file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		os.Setenv("DEBUG", "1")
		logPath, err := debug.InitDebugLogFile()
		if err != nil {
			return err
		}
		defer debug.CloseDebugLog()
		fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Enabled {
		return watch(ctx, cfg)
	}
	return build(ctx, cfg)
}

// build runs one full pipeline pass: scan, parse, extract, render.
func build(ctx context.Context, cfg *config.Config) error {
	parser, err := cppdecl.NewParser()
	if err != nil {
		return err
	}
	defer parser.Close()

	scanner := scan.NewScanner(cfg.Input.Include, cfg.Input.Exclude)
	ectx := extract.NewContext()

	for _, dir := range cfg.Input.Dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Project.Root, dir)
		}
		files, err := scanner.Scan(dir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", dir, err)
		}

		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			file, err := parser.ParseFile(path, applyDefines(content, cfg.Input.Defines))
			if err != nil {
				return err
			}
			ectx.AddFile(file)
		}
	}

	r, err := render.New(cfg)
	if err != nil {
		return err
	}
	summary, err := r.Render(ctx, ectx.Data)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d files\n", summary.FilesWritten)
	reportUnresolved(summary)
	return nil
}

// reportUnresolved warns about references no scope could resolve. Every
// output resolves against the same graph, so one output's report covers all.
func reportUnresolved(summary *render.Summary) {
	for _, unresolved := range summary.Unresolved {
		for _, u := range unresolved {
			fmt.Fprintf(os.Stderr, "warning: unresolved reference %s (%d uses)", u.Token, u.Count)
			if len(u.Suggestions) > 0 {
				fmt.Fprintf(os.Stderr, ", did you mean %s?", strings.Join(u.Suggestions, ", "))
			}
			fmt.Fprintln(os.Stderr)
		}
		return
	}
}

// watch rebuilds the documentation whenever a matching source file changes.
func watch(ctx context.Context, cfg *config.Config) error {
	if err := build(ctx, cfg); err != nil {
		return err
	}

	scanner := scan.NewScanner(cfg.Input.Include, cfg.Input.Exclude)
	rebuild := make(chan string, 64)
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond

	var watchers []*scan.Watcher
	defer func() {
		for _, w := range watchers {
			w.Stop()
		}
	}()

	for _, dir := range cfg.Input.Dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Project.Root, dir)
		}
		w, err := scan.NewWatcher(dir, scanner, debounce)
		if err != nil {
			return err
		}
		w.OnChanged = func(path string) {
			content, err := os.ReadFile(path)
			if err == nil && !scanner.Changed(path, content) {
				// Same content as last build, nothing to regenerate.
				return
			}
			select {
			case rebuild <- path:
			default:
			}
		}
		w.OnRemoved = func(path string) {
			select {
			case rebuild <- path:
			default:
			}
		}
		if err := w.Start(); err != nil {
			return err
		}
		watchers = append(watchers, w)
	}

	fmt.Println("watching for changes, press Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-rebuild:
			fmt.Printf("changed: %s\n", pathutil.ToRelative(path, cfg.Project.Root))
			debug.LogScan("rebuild triggered by %s\n", path)
			if err := build(ctx, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			}
		}
	}
}

// applyDefines rewrites configured preprocessor symbols before parsing.
// Export macros like MYLIB_API otherwise end up inside declaration text.
func applyDefines(content []byte, defines []string) []byte {
	for _, def := range defines {
		name, value, _ := strings.Cut(def, "=")
		if name == "" {
			continue
		}
		content = bytes.ReplaceAll(content, []byte(name), []byte(value))
	}
	return content
}

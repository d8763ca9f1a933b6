package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
	"github.com/cybertec-postgresql/pgsubst/internal/params"
	"github.com/cybertec-postgresql/pgsubst/internal/runner"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
)

// StdinName identifies a template read from standard input
const StdinName = "<stdin>"

// LoadBindings reads the params file named in config, if any, and overlays
// the name=value assignments given on the command line.
func LoadBindings(config *Config, assignments []string) (pgsubst.Bindings, error) {
	var base pgsubst.Bindings
	if config.ParamsFile != "" {
		var err error
		base, err = params.Load(config.ParamsFile)
		if err != nil {
			return nil, err
		}
	}

	set, err := params.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	return params.Merge(base, set), nil
}

// Render renders the templates found under paths and writes the results to
// stdout, or next to each other under config.OutputDir. With no paths the
// template is read from stdin.
func Render(ctx context.Context, config *Config, paths, assignments []string, strict bool, stdin io.Reader, stdout io.Writer) (int, error) {
	startTime := time.Now()

	renders, err := renderAll(ctx, config, paths, assignments, stdin)
	if err != nil {
		return 1, err
	}
	if len(renders) == 0 {
		logger.Info("No templates found (*.sql)")
		return 0, nil
	}

	if config.OutputDir != "" {
		if err := writeRendered(config.OutputDir, renders); err != nil {
			return 1, err
		}
	} else {
		for i, r := range renders {
			if len(renders) > 1 {
				if i > 0 {
					fmt.Fprintln(stdout)
				}
				fmt.Fprintf(stdout, "-- %s\n", r.Template.RelativePath)
			}
			if _, err := io.WriteString(stdout, r.Output); err != nil {
				return 1, fmt.Errorf("failed to write output: %w", err)
			}
		}
	}

	summary := runner.Summarize(renders)
	logger.Debug("Rendered %d file(s) in %v", summary.TotalFiles, time.Since(startTime).Round(time.Millisecond))
	if summary.IncompleteFiles > 0 {
		logger.Info("%d of %d file(s) left placeholders unresolved: %s",
			summary.IncompleteFiles, summary.TotalFiles, strings.Join(summary.Unresolved, ", "))
	}

	return summary.ExitCode(strict), nil
}

func renderAll(ctx context.Context, config *Config, paths, assignments []string, stdin io.Reader) ([]*runner.Render, error) {
	bindings, err := LoadBindings(config, assignments)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d binding(s)", len(bindings))

	renderer := runner.NewRenderer(bindings, config.Parallelism, logger.Default())

	if len(paths) == 0 {
		render, err := renderer.RenderReader(StdinName, stdin)
		if err != nil {
			return nil, err
		}
		return []*runner.Render{render}, nil
	}

	files, err := discovery.Resolve(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to discover templates: %w", err)
	}
	logger.Debug("Found %d template(s)", len(files))

	return renderer.RenderBatch(ctx, files)
}

// writeRendered writes each render below outputDir. Two templates that map
// to the same output file, e.g. a/q.sql and b/q.sql given as explicit
// files, are an error and nothing is written.
func writeRendered(outputDir string, renders []*runner.Render) error {
	paths := make([]string, len(renders))
	sources := make(map[string]string, len(renders))
	for i, r := range renders {
		name := r.Template.RelativePath
		if name == StdinName {
			name = "stdin.sql"
		}
		path := filepath.Join(outputDir, discovery.RenderedName(name))

		if prev, ok := sources[path]; ok {
			return fmt.Errorf("%s and %s would both be written to %s",
				displayPath(prev), displayPath(r.Template.Path), path)
		}
		sources[path] = r.Template.Path
		paths[i] = path
	}

	for i, r := range renders {
		path := paths[i]
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(r.Output), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("Wrote %s", path)
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return StdinName
	}
	return path
}

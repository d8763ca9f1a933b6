package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
	"github.com/cybertec-postgresql/pgsubst/internal/runner"
	"github.com/fsnotify/fsnotify"
)

// Watch renders the templates under paths into config.OutputDir and then
// re-renders each template whenever it is written, until ctx is done.
// Failures after the first pass are logged and do not stop watching.
// ready, if not nil, is closed once the first pass is written and the
// watches are in place.
func Watch(ctx context.Context, config *Config, paths, assignments []string, ready chan<- struct{}) error {
	if config.OutputDir == "" {
		return &ConfigError{Field: "output", Value: "", Message: "watch mode needs an output directory"}
	}
	if len(paths) == 0 {
		return fmt.Errorf("watch mode needs at least one template path")
	}

	bindings, err := LoadBindings(config, assignments)
	if err != nil {
		return err
	}
	renderer := runner.NewRenderer(bindings, config.Parallelism, logger.Default())

	files, err := discovery.Resolve(paths)
	if err != nil {
		return fmt.Errorf("failed to discover templates: %w", err)
	}
	renders, err := renderer.RenderBatch(ctx, files)
	if err != nil {
		return err
	}
	if err := writeRendered(config.OutputDir, renders); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	roots, err := addWatches(watcher, paths)
	if err != nil {
		return err
	}
	logger.Info("Watching %d path(s) for changes", len(paths))
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if _, err := addWatches(watcher, []string{event.Name}); err != nil {
					logger.Warn("%v", err)
				}
				continue
			}
			rel, ok := roots.relative(event.Name)
			if !ok || !discovery.IsSQLFile(rel) || discovery.ClassifyFile(rel) != discovery.FileTypeTemplate {
				continue
			}
			rerender(renderer, config.OutputDir, event.Name, rel)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

func rerender(renderer *runner.Renderer, outputDir, path, rel string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		logger.Error("%v", err)
		return
	}

	render, err := renderer.RenderFile(&discovery.DiscoveredFile{
		Path:         abs,
		RelativePath: rel,
		Type:         discovery.FileTypeTemplate,
	})
	if err != nil {
		logger.Error("%v", err)
		return
	}
	if err := writeRendered(outputDir, []*runner.Render{render}); err != nil {
		logger.Error("%v", err)
		return
	}
	logger.Info("Rendered %s", rel)
}

// watchRoots maps watched locations back to the names discovery gives them:
// paths below a directory root are relative to it, explicit files keep
// their base name.
type watchRoots struct {
	dirs  []string
	files map[string]bool
}

func (w *watchRoots) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if w.files[abs] {
		return filepath.Base(abs), true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, abs)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return rel, true
		}
	}
	return "", false
}

// addWatches watches every directory under the given paths. fsnotify does
// not recurse, so each subdirectory gets its own watch.
func addWatches(watcher *fsnotify.Watcher, paths []string) (*watchRoots, error) {
	roots := &watchRoots{files: make(map[string]bool)}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if !info.IsDir() {
			roots.files[abs] = true
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				return nil, fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}

		roots.dirs = append(roots.dirs, abs)
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	return roots, nil
}

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
	"github.com/cybertec-postgresql/pgsubst/internal/errors"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
	"golang.org/x/sync/errgroup"
)

// Renderer substitutes bindings into template files
type Renderer struct {
	bindings   pgsubst.Bindings
	maxWorkers int
	log        *logger.Logger
	cache      *TemplateCache
}

// NewRenderer creates a renderer using at most maxWorkers concurrent renders
func NewRenderer(bindings pgsubst.Bindings, maxWorkers int, log *logger.Logger) *Renderer {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if log == nil {
		log = logger.Default()
	}
	return &Renderer{
		bindings:   bindings,
		maxWorkers: maxWorkers,
		log:        log,
		cache:      NewTemplateCache(DefaultCacheSize),
	}
}

// RenderFile reads and renders a single template file
func (r *Renderer) RenderFile(file *discovery.DiscoveredFile) (*Render, error) {
	render := &Render{
		Template:  file,
		StartTime: time.Now(),
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, errors.NewTemplateError(file.RelativePath, err)
	}

	tmpl := r.cache.Get(string(content))
	out, err := tmpl.Execute(r.bindings)
	if err != nil {
		return nil, errors.NewTemplateError(file.RelativePath, err)
	}

	render.Output = out
	render.Missing = tmpl.Missing(r.bindings)
	render.EndTime = time.Now()

	if !render.Complete() {
		r.log.Warn("%s: unresolved placeholders: %v", file.RelativePath, render.Missing)
	}
	r.log.Debug("rendered %s in %v", file.RelativePath, render.Duration())

	return render, nil
}

// RenderReader renders a template read from r, e.g. standard input. name
// identifies the template in errors and logs.
func (r *Renderer) RenderReader(name string, in io.Reader) (*Render, error) {
	render := &Render{
		Template:  &discovery.DiscoveredFile{RelativePath: name},
		StartTime: time.Now(),
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.NewTemplateError(name, err)
	}

	var out strings.Builder
	if err := pgsubst.SubstituteReader(bytes.NewReader(content), &out, r.bindings); err != nil {
		return nil, errors.NewTemplateError(name, err)
	}

	render.Output = out.String()
	render.Missing = r.cache.Get(string(content)).Missing(r.bindings)
	render.EndTime = time.Now()

	if !render.Complete() {
		r.log.Warn("%s: unresolved placeholders: %v", name, render.Missing)
	}
	return render, nil
}

// RenderBatch renders files concurrently. Results keep the order of files.
// The first failure cancels the remaining renders and is returned alone.
func (r *Renderer) RenderBatch(ctx context.Context, files []discovery.DiscoveredFile) ([]*Render, error) {
	if len(files) == 0 {
		return nil, nil
	}

	r.log.Debug("rendering %d file(s) with %d worker(s)", len(files), r.maxWorkers)

	renders := make([]*Render, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.maxWorkers)

	for i := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			render, err := r.RenderFile(&files[i])
			if err != nil {
				return err
			}
			renders[i] = render
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("rendering aborted: %w", err)
	}
	return renders, nil
}

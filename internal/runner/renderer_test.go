package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
	pgerrors "github.com/cybertec-postgresql/pgsubst/internal/errors"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
)

type unsupported struct{}

func templates(t *testing.T, contents ...string) []discovery.DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	files := make([]discovery.DiscoveredFile, len(contents))
	for i, c := range contents {
		name := fmt.Sprintf("q%02d.sql", i)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(c), 0644); err != nil {
			t.Fatalf("failed to write template: %v", err)
		}
		files[i] = discovery.DiscoveredFile{Path: path, RelativePath: name}
	}
	return files
}

func TestRenderBatch_PreservesOrder(t *testing.T) {
	var contents []string
	for i := 0; i < 20; i++ {
		contents = append(contents, fmt.Sprintf("select :id + %d -- :id", i))
	}
	files := templates(t, contents...)

	var logs bytes.Buffer
	r := NewRenderer(pgsubst.Bindings{"id": literal.Int(7)}, 4, logger.New(false, &logs))

	renders, err := r.RenderBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("RenderBatch() error = %v", err)
	}

	if len(renders) != len(files) {
		t.Fatalf("RenderBatch() returned %d renders, want %d", len(renders), len(files))
	}
	for i, render := range renders {
		want := fmt.Sprintf("select 7 + %d -- :id", i)
		if render.Output != want {
			t.Errorf("renders[%d].Output = %q, want %q", i, render.Output, want)
		}
		if render.Template.RelativePath != files[i].RelativePath {
			t.Errorf("renders[%d].Template = %q, want %q", i, render.Template.RelativePath, files[i].RelativePath)
		}
		if !render.Complete() {
			t.Errorf("renders[%d] reports missing placeholders %v", i, render.Missing)
		}
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %q", logs.String())
	}
}

func TestRenderBatch_ReportsMissing(t *testing.T) {
	files := templates(t, "select :a, :b", "select :a", "select :c, :b")

	var logs bytes.Buffer
	r := NewRenderer(pgsubst.Bindings{"a": literal.Int(1)}, 2, logger.New(false, &logs))

	renders, err := r.RenderBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("RenderBatch() error = %v", err)
	}

	summary := Summarize(renders)
	if summary.TotalFiles != 3 || summary.CompleteFiles != 1 || summary.IncompleteFiles != 2 {
		t.Errorf("Summarize() = %+v, want 3 total, 1 complete, 2 incomplete", summary)
	}
	if got := strings.Join(summary.Unresolved, ","); got != "b,c" {
		t.Errorf("Summarize().Unresolved = %q, want %q", got, "b,c")
	}
	if summary.ExitCode(false) != 0 {
		t.Errorf("ExitCode(false) = %d, want 0", summary.ExitCode(false))
	}
	if summary.ExitCode(true) != 3 {
		t.Errorf("ExitCode(true) = %d, want 3", summary.ExitCode(true))
	}
	if !strings.Contains(logs.String(), "[WARN]") {
		t.Errorf("expected a warning about unresolved placeholders, got %q", logs.String())
	}
}

func TestRenderBatch_AbortsOnUnsupportedValue(t *testing.T) {
	files := templates(t, "select 1", "select :bad", "select 2")
	r := NewRenderer(pgsubst.Bind(map[string]any{"bad": unsupported{}}), 2, logger.New(false, &bytes.Buffer{}))

	renders, err := r.RenderBatch(context.Background(), files)
	if err == nil {
		t.Fatal("RenderBatch() expected error")
	}
	if renders != nil {
		t.Errorf("RenderBatch() returned partial results: %d", len(renders))
	}
	if !errors.Is(err, literal.ErrUnsupportedValueType) {
		t.Errorf("RenderBatch() error = %v, want ErrUnsupportedValueType", err)
	}

	var tmplErr *pgerrors.TemplateError
	if !errors.As(err, &tmplErr) || tmplErr.File != "q01.sql" {
		t.Errorf("RenderBatch() error = %v, want TemplateError for q01.sql", err)
	}
}

func TestRenderBatch_Cancelled(t *testing.T) {
	files := templates(t, "select 1", "select 2")
	r := NewRenderer(nil, 1, logger.New(false, &bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderBatch(ctx, files); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderBatch() error = %v, want context.Canceled", err)
	}
}

func TestRenderBatch_Empty(t *testing.T) {
	r := NewRenderer(nil, 0, nil)
	renders, err := r.RenderBatch(context.Background(), nil)
	if err != nil || renders != nil {
		t.Errorf("RenderBatch(nil) = %v, %v; want nil, nil", renders, err)
	}
}

func TestRenderFile_Missing(t *testing.T) {
	r := NewRenderer(nil, 1, logger.New(false, &bytes.Buffer{}))
	_, err := r.RenderFile(&discovery.DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.sql"), RelativePath: "nope.sql"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("RenderFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestRenderReader(t *testing.T) {
	var logs bytes.Buffer
	r := NewRenderer(pgsubst.Bindings{"name": literal.String("o'hara")}, 1, logger.New(false, &logs))

	render, err := r.RenderReader("<stdin>", strings.NewReader("select :name, :other"))
	if err != nil {
		t.Fatalf("RenderReader() error = %v", err)
	}
	if want := `select E'o\'hara', :other`; render.Output != want {
		t.Errorf("RenderReader().Output = %q, want %q", render.Output, want)
	}
	if render.Template.RelativePath != "<stdin>" {
		t.Errorf("RenderReader().Template = %q, want <stdin>", render.Template.RelativePath)
	}
	if len(render.Missing) != 1 || render.Missing[0] != "other" {
		t.Errorf("RenderReader().Missing = %v, want [other]", render.Missing)
	}
}

func TestRenderReader_Error(t *testing.T) {
	r := NewRenderer(pgsubst.Bind(map[string]any{"x": unsupported{}}), 1, logger.New(false, &bytes.Buffer{}))

	_, err := r.RenderReader("<stdin>", strings.NewReader("select :x"))
	var tmplErr *pgerrors.TemplateError
	if !errors.As(err, &tmplErr) || tmplErr.File != "<stdin>" {
		t.Errorf("RenderReader() error = %v, want TemplateError for <stdin>", err)
	}
}

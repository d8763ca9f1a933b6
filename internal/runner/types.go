package runner

import (
	"time"

	"github.com/cybertec-postgresql/pgsubst/internal/discovery"
)

// Render represents the rendering of a single template file
type Render struct {
	Template  *discovery.DiscoveredFile
	Output    string   // Rendered SQL
	Missing   []string // Placeholders left unresolved
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long rendering took
func (r *Render) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Complete returns true if every placeholder was bound
func (r *Render) Complete() bool {
	return len(r.Missing) == 0
}

// RenderSummary summarizes a batch of renders
type RenderSummary struct {
	TotalFiles      int
	CompleteFiles   int
	IncompleteFiles int
	Unresolved      []string // Distinct unresolved placeholder names, first-seen order
	TotalDuration   time.Duration
}

// ExitCode returns the exit code for the batch: 0 when every placeholder was
// bound, 3 when some were left in place (strict mode only)
func (s *RenderSummary) ExitCode(strict bool) int {
	if strict && s.IncompleteFiles > 0 {
		return 3
	}
	return 0
}

// Summarize creates a summary of rendering results
func Summarize(renders []*Render) *RenderSummary {
	summary := &RenderSummary{
		TotalFiles: len(renders),
	}

	seen := make(map[string]bool)
	for _, r := range renders {
		summary.TotalDuration += r.Duration()

		if r.Complete() {
			summary.CompleteFiles++
			continue
		}
		summary.IncompleteFiles++
		for _, name := range r.Missing {
			if !seen[name] {
				seen[name] = true
				summary.Unresolved = append(summary.Unresolved, name)
			}
		}
	}

	return summary
}

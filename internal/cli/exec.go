package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cybertec-postgresql/pgsubst/internal/database"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
)

// ExecResult is printed as one JSON object per executed template
type ExecResult struct {
	File    string   `json:"file"`
	Tag     string   `json:"tag"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
}

// ExecOptions controls how rendered templates are executed
type ExecOptions struct {
	Rows     bool // Each template is a single statement whose rows are printed
	Isolated bool // Run in a scratch database that is dropped afterwards
}

// Exec renders templates and runs them against PostgreSQL in order. A
// template with unresolved placeholders is never sent to the server.
func Exec(ctx context.Context, config *Config, paths, assignments []string, opts ExecOptions, stdin io.Reader, stdout io.Writer) (int, error) {
	renders, err := renderAll(ctx, config, paths, assignments, stdin)
	if err != nil {
		return 1, err
	}

	for _, r := range renders {
		if !r.Complete() {
			return 3, fmt.Errorf("%s: unresolved placeholders: %s",
				r.Template.RelativePath, strings.Join(r.Missing, ", "))
		}
	}
	if len(renders) == 0 {
		logger.Info("No templates found (*.sql)")
		return 0, nil
	}

	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return 1, fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	logger.Debug("Connected to PostgreSQL %d", pool.ServerVersion())

	target := pool
	if opts.Isolated {
		target, err = database.CreateTempDatabase(ctx, pool)
		if err != nil {
			return 1, err
		}
		logger.Debug("Using scratch database %s", target.Pool.Config().ConnConfig.Database)
		defer func() {
			if err := database.DestroyTempDatabase(context.WithoutCancel(ctx), pool, target); err != nil {
				logger.Warn("failed to drop scratch database: %v", err)
			}
		}()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	for _, r := range renders {
		name := r.Template.RelativePath
		result, err := execOne(ctx, target, config, name, r.Output, opts.Rows)
		if err != nil {
			return 1, err
		}
		logger.Debug("%s: %s", name, result.Tag)

		if err := enc.Encode(ExecResult{
			File:    name,
			Tag:     result.Tag,
			Columns: result.Columns,
			Rows:    result.Rows,
		}); err != nil {
			return 1, fmt.Errorf("failed to write result: %w", err)
		}
	}

	return 0, nil
}

func execOne(ctx context.Context, pool *database.Pool, config *Config, name, sql string, rows bool) (*database.Result, error) {
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	if rows {
		return pool.Query(ctx, name, sql)
	}
	return pool.Exec(ctx, name, sql)
}

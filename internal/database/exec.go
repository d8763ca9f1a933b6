package database

import (
	"context"
	stderrors "errors"

	"github.com/cybertec-postgresql/pgsubst/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Result holds the outcome of an executed statement
type Result struct {
	Tag     string   // Command tag, e.g. "INSERT 0 1"
	Columns []string // Empty for statements without a result set
	Rows    [][]any
}

// Exec runs rendered SQL that may contain several statements. Rendered SQL
// carries no parameters, so pgx sends it with the simple protocol.
func (p *Pool) Exec(ctx context.Context, name, sql string) (*Result, error) {
	tag, err := p.Pool.Exec(ctx, sql)
	if err != nil {
		return nil, execError(name, err)
	}
	return &Result{Tag: tag.String()}, nil
}

// Query runs a single rendered statement and collects its rows
func (p *Pool) Query(ctx context.Context, name, sql string) (*Result, error) {
	rows, err := p.Pool.Query(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, execError(name, err)
	}
	defer rows.Close()

	result := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, execError(name, err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, execError(name, err)
	}

	result.Tag = rows.CommandTag().String()
	return result, nil
}

func execError(name string, err error) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return errors.NewExecError(name, pgErr, err)
	}
	return errors.NewExecError(name, nil, err)
}

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTempDatabase creates a scratch database and returns a pool connected
// to it. Rendered scripts that create objects run there so the target
// database is left untouched.
func CreateTempDatabase(ctx context.Context, adminPool *Pool) (*Pool, error) {
	dbName := "pgsubst_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	_, err := adminPool.Pool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary database: %w", err)
	}

	// Preserve all original options (sslmode, runtime params, pool size)
	config := adminPool.Pool.Config()
	config.ConnConfig.Database = dbName

	tempPool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		_, _ = adminPool.Pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize())
		return nil, fmt.Errorf("failed to connect to temp database: %w", err)
	}

	return &Pool{
		Pool:          tempPool,
		config:        adminPool.config,
		serverVersion: adminPool.serverVersion,
	}, nil
}

// DestroyTempDatabase closes the temp pool and drops its underlying database.
func DestroyTempDatabase(ctx context.Context, adminPool *Pool, tempPool *Pool) error {
	if tempPool == nil || tempPool.Pool == nil {
		return nil
	}
	dbName := tempPool.Pool.Config().ConnConfig.Database
	tempPool.Close()
	_, err := adminPool.Pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize()))
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jhoicas/bodega-api/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations ejecuta un comando goose (up, down, status, ...) sobre el pool.
// dir vacío usa las migraciones embebidas en el binario.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir, command string, args ...string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()
	return runGoose(ctx, db, dir, command, args...)
}

func runGoose(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/bodega-api/internal/domain"
)

// Querier lo satisfacen *pgxpool.Pool y pgx.Tx; los repositorios no distinguen si corren en transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// foreignKeyTarget traduce una violación de FK al error de dominio del recurso que falta.
func foreignKeyTarget(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeForeignKeyViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "client"):
		return domain.ErrClientNotFound
	case strings.Contains(pgErr.ConstraintName, "warehouse"):
		return domain.ErrWarehouseNotFound
	case strings.Contains(pgErr.ConstraintName, "item"):
		return domain.ErrItemNotFound
	case strings.Contains(pgErr.ConstraintName, "order"):
		return domain.ErrOrderNotFound
	}
	return nil
}

// storageErr envuelve errores del driver como StorageError; los de dominio pasan intactos.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if target := foreignKeyTarget(err); target != nil {
		return target
	}
	return domain.NewStorageError(op, err)
}

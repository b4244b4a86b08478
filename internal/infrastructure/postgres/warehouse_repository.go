package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, name, location, capacity, created_at, updated_at`

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (` + warehouseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, w.ID, w.Name, w.Location, w.Capacity, w.CreatedAt, w.UpdatedAt)
	return storageErr("insert warehouse", err)
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get warehouse", err)
	}
	return &w, nil
}

// Update actualiza nombre, ubicación y capacidad.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $2, location = $3, capacity = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, w.ID, w.Name, w.Location, w.Capacity, w.UpdatedAt)
	if err != nil {
		return storageErr("update warehouse", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrWarehouseNotFound
	}
	return nil
}

// List lista bodegas por nombre con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses ORDER BY name LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list warehouses", err)
	}
	defer rows.Close()
	list := make([]*entity.Warehouse, 0)
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, storageErr("scan warehouse", err)
		}
		list = append(list, &w)
	}
	return list, storageErr("list warehouses", rows.Err())
}

// Delete elimina una bodega. Si aún tiene productos la FK lo impide y se devuelve ErrConflict.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrConflict
	}
	return storageErr("delete warehouse", err)
}

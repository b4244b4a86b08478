package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, sku, name, description, quantity, warehouse_id, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &it.Quantity, &it.WarehouseID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *InventoryItemRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return it, nil
}

// Create inserta el producto con su cantidad inicial.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, it.ID, it.SKU, it.Name, it.Description, it.Quantity, it.WarehouseID, it.CreatedAt, it.UpdatedAt)
	return storageErr("insert inventory item", err)
}

// GetByID obtiene un producto por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *InventoryItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item by sku", `SELECT `+itemColumns+` FROM inventory_items WHERE sku = $1`, sku)
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "lock inventory item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// UpdateQuantity fija la cantidad. El CHECK (quantity >= 0) de la tabla es la última barrera.
func (r *InventoryItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE inventory_items SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return storageErr("update item quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Update modifica datos de catálogo sin tocar quantity.
func (r *InventoryItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET sku = $2, name = $3, description = $4, warehouse_id = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, it.ID, it.SKU, it.Name, it.Description, it.WarehouseID, it.UpdatedAt)
	if err != nil {
		return storageErr("update inventory item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListByWarehouse lista productos de una bodega (todas si warehouseID está vacío).
func (r *InventoryItemRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + ` FROM inventory_items
		WHERE ($1 = '' OR warehouse_id = $1)
		ORDER BY sku LIMIT NULLIF($2, 0) OFFSET $3`
	return r.list(ctx, "list inventory items", query, warehouseID, limit, offset)
}

// ListBelow productos con cantidad por debajo del umbral, los más escasos primero.
func (r *InventoryItemRepo) ListBelow(ctx context.Context, threshold, limit int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + ` FROM inventory_items
		WHERE quantity < $1
		ORDER BY quantity, sku LIMIT NULLIF($2, 0)`
	return r.list(ctx, "list low stock", query, threshold, limit)
}

func (r *InventoryItemRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, it)
	}
	return list, storageErr(op, rows.Err())
}

// Delete elimina el producto. Con movimientos o líneas que lo referencien devuelve ErrConflict.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrConflict
	}
	return storageErr("delete inventory item", err)
}

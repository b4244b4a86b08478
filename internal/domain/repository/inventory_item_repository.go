package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto para productos y su cantidad.
// Las lecturas devuelven (nil, nil) cuando el producto no existe.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// UpdateQuantity solo debe llamarse desde el aplicador de movimientos, con la fila bloqueada.
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	// Update modifica datos de catálogo; nunca la cantidad.
	Update(ctx context.Context, item *entity.InventoryItem) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error)
	ListBelow(ctx context.Context, threshold, limit int) ([]*entity.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

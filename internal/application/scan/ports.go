package scan

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// OrderFinder lecturas de pedidos; (nil, nil) cuando no existe.
type OrderFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByCode(ctx context.Context, code string) (*entity.Order, error)
}

// ItemFinder búsqueda de producto por SKU; (nil, nil) cuando no existe.
type ItemFinder interface {
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
}

// OrderFulfiller lo implementa el motor de pedidos.
type OrderFulfiller interface {
	Fulfill(ctx context.Context, in orders.FulfillInput) (*entity.Order, error)
}

// MovementApplier lo implementa el aplicador de movimientos.
type MovementApplier interface {
	ApplyMovement(ctx context.Context, in inventory.MovementInput) (*entity.Movement, error)
}

var (
	_ OrderFulfiller  = (*orders.Engine)(nil)
	_ MovementApplier = (*inventory.MovementApplier)(nil)
)

package orders

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// LineApplier aplica el movimiento de una línea usando los repositorios de la transacción en curso.
// Lo implementa *inventory.MovementApplier.
type LineApplier interface {
	ApplyInTx(
		ctx context.Context,
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		in inventory.MovementInput,
		now time.Time,
	) (*entity.Movement, error)
}

// CorrelationLister consulta los movimientos de un pedido por su código (conciliación).
type CorrelationLister interface {
	ListByCorrelation(ctx context.Context, token string) ([]*entity.Movement, error)
}

var (
	_ LineApplier       = (*inventory.MovementApplier)(nil)
	_ CorrelationLister = (*inventory.MovementApplier)(nil)
)

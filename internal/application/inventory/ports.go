package inventory

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo; si no, Commit. Es la unidad de atomicidad del libro.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error)
	// ListByCorrelation devuelve los movimientos que llevan el token (código de pedido) en orden cronológico.
	ListByCorrelation(ctx context.Context, token string) ([]*entity.Movement, error)
}

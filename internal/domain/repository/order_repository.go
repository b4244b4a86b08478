package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos. Status vacío = todos.
type OrderFilter struct {
	Status entity.OrderStatus
	Limit  int
	Offset int
}

// OrderRepository define el puerto para la cabecera del pedido y sus líneas.
// Create persiste cabecera y líneas juntas; las lecturas devuelven el pedido con Lines cargadas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByCode(ctx context.Context, code string) (*entity.Order, error)
	// GetForUpdate bloquea la cabecera del pedido durante la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus persiste status, completed_at, completed_by_user_id y cancellation_reason.
	UpdateStatus(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
}

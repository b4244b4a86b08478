package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// ClientRepository puerto de persistencia para Client. GetByID devuelve nil, nil si no existe.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
	Delete(ctx context.Context, id string) error
}

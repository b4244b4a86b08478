package postgres

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL. Solo inserta y lee.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, type, item_id, quantity, date, user_id, COALESCE(client_id, ''), correlation_token`

// Create persiste un movimiento. ClientID vacío se guarda como NULL.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, type, item_id, quantity, date, user_id, client_id, correlation_token)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Type), m.ItemID, m.Quantity, m.Date, m.UserID, m.ClientID, m.CorrelationToken,
	)
	return storageErr("insert movement", err)
}

// ListByItem historial de un producto, más recientes primero.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movements
		WHERE item_id = $1
		ORDER BY date DESC, id LIMIT NULLIF($2, 0) OFFSET $3`
	return r.list(ctx, "list movements by item", query, itemID, limit, offset)
}

// ListByCorrelation movimientos con el token indicado en orden cronológico.
func (r *MovementRepo) ListByCorrelation(ctx context.Context, token string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movements
		WHERE correlation_token = $1
		ORDER BY date, id`
	return r.list(ctx, "list movements by correlation", query, token)
}

func (r *MovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		var m entity.Movement
		var typ string
		if err := rows.Scan(&m.ID, &typ, &m.ItemID, &m.Quantity, &m.Date, &m.UserID, &m.ClientID, &m.CorrelationToken); err != nil {
			return nil, storageErr(op, err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, storageErr(op, rows.Err())
}

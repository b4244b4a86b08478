package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL. Las lecturas cargan las líneas.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, code, direction, status, created_at, completed_at,
	COALESCE(warehouse_id, ''), COALESCE(client_id, ''), created_by_user_id, completed_by_user_id, cancellation_reason`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var direction, status string
	err := row.Scan(&o.ID, &o.Code, &direction, &status, &o.CreatedAt, &o.CompletedAt,
		&o.WarehouseID, &o.ClientID, &o.CreatedByUserID, &o.CompletedByUserID, &o.CancellationReason)
	if err != nil {
		return nil, err
	}
	o.Direction = entity.MovementType(direction)
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción para que sea atómico.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	header := `
		INSERT INTO orders (id, code, direction, status, created_at, warehouse_id, client_id, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`
	_, err := r.q.Exec(ctx, header,
		o.ID, o.Code, string(o.Direction), string(o.Status), o.CreatedAt, o.WarehouseID, o.ClientID, o.CreatedByUserID,
	)
	if err != nil {
		return storageErr("insert order", err)
	}

	itemIDs, quantities, err := lineArrays(o.Lines)
	if err != nil {
		return err
	}
	lines := `
		INSERT INTO order_lines (order_id, item_id, quantity)
		SELECT $1, item_id, quantity FROM unnest($2::text[], $3::int[]) AS t(item_id, quantity)`
	_, err = r.q.Exec(ctx, lines, o.ID, itemIDs, quantities)
	return storageErr("insert order lines", err)
}

// lineArrays prepara las columnas para unnest. Una cantidad fuera del rango INTEGER se
// rechaza aquí en vez de truncarse al convertir.
func lineArrays(lines []entity.OrderLine) ([]string, []int, error) {
	itemIDs := make([]string, len(lines))
	quantities := make([]int, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 || l.Quantity > entity.MaxQuantity {
			return nil, nil, domain.NewValidationError("lines.quantity", "fuera de rango")
		}
		itemIDs[i] = l.ItemID
		quantities[i] = l.Quantity
	}
	return itemIDs, quantities, nil
}

// GetByID obtiene el pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByCode obtiene el pedido por su código.
func (r *OrderRepo) GetByCode(ctx context.Context, code string) (*entity.Order, error) {
	return r.getOne(ctx, "get order by code", `SELECT `+orderColumns+` FROM orders WHERE code = $1`, code)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "lock order", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `SELECT order_id, item_id, quantity FROM order_lines WHERE order_id = $1 ORDER BY item_id`, orderID)
	if err != nil {
		return nil, storageErr("list order lines", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.Quantity); err != nil {
			return nil, storageErr("scan order line", err)
		}
		lines = append(lines, l)
	}
	return lines, storageErr("list order lines", rows.Err())
}

// UpdateStatus persiste el cambio de estado y los datos de cierre.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, completed_at = $3, completed_by_user_id = $4, cancellation_reason = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, o.ID, string(o.Status), o.CompletedAt, o.CompletedByUserID, o.CancellationReason)
	if err != nil {
		return storageErr("update order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// List pedidos más recientes primero, con filtro opcional por estado.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id LIMIT NULLIF($2, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	list := make([]*entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, storageErr("scan order", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr("list orders", err)
	}

	// Las líneas se cargan después de cerrar rows: una conexión de tx no admite consultas anidadas
	for _, o := range list {
		if o.Lines, err = r.lines(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

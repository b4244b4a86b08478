package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas agregadas de solo lectura para el resumen de bodega.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetStockTotals usa COALESCE para devolver cero sin productos.
func (r *AnalyticsRepo) GetStockTotals(ctx context.Context) (int, int, error) {
	const query = `
	SELECT
	    (SELECT COALESCE(SUM(quantity), 0) FROM inventory_items) AS units,
	    (SELECT COUNT(*) FROM movements)                         AS movements`
	var units, movements int
	if err := r.q.QueryRow(ctx, query).Scan(&units, &movements); err != nil {
		return 0, 0, storageErr("analytics stock totals", err)
	}
	return units, movements, nil
}

// GetUnitsByWarehouse LEFT JOIN para incluir bodegas sin productos.
func (r *AnalyticsRepo) GetUnitsByWarehouse(ctx context.Context) ([]repository.WarehouseUnits, error) {
	const query = `
	SELECT w.id, w.name, COALESCE(SUM(i.quantity), 0)::int AS units
	FROM warehouses w
	LEFT JOIN inventory_items i ON i.warehouse_id = w.id
	GROUP BY w.id, w.name
	ORDER BY w.name, w.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageErr("analytics units by warehouse", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[repository.WarehouseUnits])
	if err != nil {
		return nil, storageErr("analytics units by warehouse", err)
	}
	return list, nil
}

func (r *AnalyticsRepo) GetOrdersByStatus(ctx context.Context) (map[entity.OrderStatus]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*)::int FROM orders GROUP BY status`)
	if err != nil {
		return nil, storageErr("analytics orders by status", err)
	}
	defer rows.Close()
	out := make(map[entity.OrderStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageErr("analytics orders by status", err)
		}
		out[entity.OrderStatus(status)] = n
	}
	return out, storageErr("analytics orders by status", rows.Err())
}

// GetTopOutItems desempata por SKU para un orden estable.
func (r *AnalyticsRepo) GetTopOutItems(ctx context.Context, since time.Time, limit int) ([]repository.ItemUnits, error) {
	const query = `
	SELECT i.id, i.sku, i.name, SUM(m.quantity)::int AS units
	FROM movements m
	JOIN inventory_items i ON i.id = m.item_id
	WHERE m.type = 'OUT' AND m.date >= $1
	GROUP BY i.id, i.sku, i.name
	ORDER BY units DESC, i.sku
	LIMIT NULLIF($2, 0)`
	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, storageErr("analytics top out items", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[repository.ItemUnits])
	if err != nil {
		return nil, storageErr("analytics top out items", err)
	}
	return list, nil
}

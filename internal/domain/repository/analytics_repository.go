package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// WarehouseUnits unidades en existencia por bodega.
type WarehouseUnits struct {
	WarehouseID string
	Name        string
	Units       int
}

// ItemUnits unidades movidas de un producto.
type ItemUnits struct {
	ItemID string
	SKU    string
	Name   string
	Units  int
}

// AnalyticsRepository consultas de solo lectura para el resumen de bodega.
type AnalyticsRepository interface {
	// GetStockTotals total de unidades en existencia y cantidad de movimientos registrados.
	GetStockTotals(ctx context.Context) (units, movements int, err error)

	// GetUnitsByWarehouse unidades por bodega, incluidas las bodegas vacías. Ordenado por nombre.
	GetUnitsByWarehouse(ctx context.Context) ([]WarehouseUnits, error)

	// GetOrdersByStatus cantidad de pedidos por estado. Los estados sin pedidos no aparecen.
	GetOrdersByStatus(ctx context.Context) (map[entity.OrderStatus]int, error)

	// GetTopOutItems los `limit` productos con más unidades despachadas (OUT) desde `since`.
	GetTopOutItems(ctx context.Context, since time.Time, limit int) ([]ItemUnits, error)
}

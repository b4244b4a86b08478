package dto

// DashboardSummaryResponse respuesta de GET /api/dashboard/summary.
type DashboardSummaryResponse struct {
	TotalUnits       int                 `json:"total_units"` // unidades en existencia en todas las bodegas
	TotalMovements   int                 `json:"total_movements"`
	TotalWarehouses  int                 `json:"total_warehouses"`
	UnitsByWarehouse []WarehouseUnitsDTO `json:"units_by_warehouse"`
	OrdersByStatus   map[string]int      `json:"orders_by_status"`
	TopOutItems      []ItemUnitsDTO      `json:"top_out_items"` // más despachados del mes en curso
	LowStock         []ItemResponse      `json:"low_stock"`
	RecentOrders     []OrderResponse     `json:"recent_orders"`
	PeriodLabel      string              `json:"period_label"` // ej: "Octubre 2026"
}

// WarehouseUnitsDTO unidades en existencia de una bodega.
type WarehouseUnitsDTO struct {
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
	Units       int    `json:"units"`
}

// ItemUnitsDTO unidades despachadas de un producto.
type ItemUnitsDTO struct {
	ItemID string `json:"item_id"`
	SKU    string `json:"sku"`
	Name   string `json:"name"`
	Units  int    `json:"units"`
}

package entity

import (
	"math"
	"time"
)

// MaxQuantity tope de unidades de un producto, de una línea y de un movimiento.
// Coincide con el rango de la columna INTEGER.
const MaxQuantity = math.MaxInt32

// InventoryItem es un producto ubicado en una única bodega con su cantidad actual.
// Quantity solo cambia a través de movimientos y nunca es negativa.
type InventoryItem struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Quantity    int
	WarehouseID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanRelease indica si hay stock suficiente para una salida de qty unidades.
func (i *InventoryItem) CanRelease(qty int) bool {
	return qty <= i.Quantity
}

// CanReceive indica si una entrada de qty unidades cabe sin superar MaxQuantity.
func (i *InventoryItem) CanReceive(qty int) bool {
	return qty <= MaxQuantity-i.Quantity
}

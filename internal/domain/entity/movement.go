package entity

import "time"

// MovementType dirección de un movimiento u orden.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  MovementType = "IN"  // entrada
	MovementTypeOUT MovementType = "OUT" // salida
)

// Valid indica si el tipo es IN u OUT.
func (t MovementType) Valid() bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// Signed devuelve qty con el signo que aplica sobre la cantidad del producto.
func (t MovementType) Signed(qty int) int {
	if t == MovementTypeOUT {
		return -qty
	}
	return qty
}

// Movement es un cambio de cantidad aplicado a un producto. Solo se inserta, nunca se modifica.
// CorrelationToken enlaza el movimiento con el código del pedido que lo originó.
type Movement struct {
	ID               string
	Type             MovementType
	ItemID           string
	Quantity         int // siempre positiva; Type decide el signo
	Date             time.Time
	UserID           string
	ClientID         string
	CorrelationToken string
}

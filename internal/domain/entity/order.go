package entity

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus estado del pedido.
type OrderStatus string

// Estados del pedido.
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid indica si el estado es uno de los conocidos.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderTransition acción que mueve un pedido de un estado a otro.
type OrderTransition string

// Transiciones del pedido.
const (
	TransitionFulfill   OrderTransition = "fulfill"
	TransitionCancel    OrderTransition = "cancel"
	TransitionReprocess OrderTransition = "reprocess" // privilegiada, vuelve a aplicar todos los movimientos
)

type transitionKey struct {
	from OrderStatus
	via  OrderTransition
}

// orderTransitions tabla completa de transiciones permitidas; cualquier otra se rechaza.
var orderTransitions = map[transitionKey]OrderStatus{
	{OrderStatusPending, TransitionFulfill}:     OrderStatusCompleted,
	{OrderStatusPending, TransitionCancel}:      OrderStatusCancelled,
	{OrderStatusCompleted, TransitionReprocess}: OrderStatusCompleted,
}

// NextStatus devuelve el estado destino de aplicar via desde from, o false si no está en la tabla.
func NextStatus(from OrderStatus, via OrderTransition) (OrderStatus, bool) {
	to, ok := orderTransitions[transitionKey{from, via}]
	return to, ok
}

// ScanTokenPrefix prefijo del contenido QR de un pedido: ORDER|<id>|<código>.
const ScanTokenPrefix = "ORDER|"

// Order cabecera de un pedido de entrada o salida con sus líneas.
type Order struct {
	ID                 string
	Code               string
	Direction          MovementType
	Status             OrderStatus
	CreatedAt          time.Time
	CompletedAt        *time.Time
	WarehouseID        string
	ClientID           string
	CreatedByUserID    string
	CompletedByUserID  string
	CancellationReason string
	Lines              []OrderLine
}

// OrderLine producto y cantidad solicitada dentro de un pedido.
type OrderLine struct {
	OrderID  string
	ItemID   string
	Quantity int
}

// ScanToken contenido que se codifica en el QR del pedido.
func (o *Order) ScanToken() string {
	return fmt.Sprintf("%s%s|%s", ScanTokenPrefix, o.ID, o.Code)
}

// TotalUnits suma las cantidades de todas las líneas.
func (o *Order) TotalUnits() int {
	total := 0
	for _, l := range o.Lines {
		total += l.Quantity
	}
	return total
}

// ParseScanToken separa un token ORDER|<id>|<código>. ok es false si no tiene ese formato.
func ParseScanToken(token string) (orderID, code string, ok bool) {
	if !strings.HasPrefix(token, ScanTokenPrefix) {
		return "", "", false
	}
	parts := strings.Split(token, "|")
	if len(parts) < 2 || parts[1] == "" {
		return "", "", false
	}
	if len(parts) > 2 {
		code = parts[2]
	}
	return parts[1], code, true
}

package dto

import (
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// OrderLineRequest línea de un pedido nuevo.
type OrderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders. Code vacío = se genera.
type CreateOrderRequest struct {
	Code        string             `json:"code,omitempty"`
	Direction   string             `json:"direction"`
	Lines       []OrderLineRequest `json:"lines"`
	WarehouseID string             `json:"warehouse_id,omitempty"`
	ClientID    string             `json:"client_id,omitempty"`
}

// CancelOrderRequest body para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderLineResponse línea en la salida.
type OrderLineResponse struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// OrderResponse salida de un pedido, incluido el contenido de su QR.
type OrderResponse struct {
	ID                 string              `json:"id"`
	Code               string              `json:"code"`
	Direction          string              `json:"direction"`
	Status             string              `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	WarehouseID        string              `json:"warehouse_id,omitempty"`
	ClientID           string              `json:"client_id,omitempty"`
	CreatedByUserID    string              `json:"created_by_user_id"`
	CompletedByUserID  string              `json:"completed_by_user_id,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	ScanToken          string              `json:"scan_token"`
	TotalUnits         int                 `json:"total_units"`
	Lines              []OrderLineResponse `json:"lines"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ReconciliationResponse pedido con los movimientos que llevan su código.
type ReconciliationResponse struct {
	Order        OrderResponse      `json:"order"`
	Movements    []MovementResponse `json:"movements"`
	Applications int                `json:"applications"`
}

// NewOrderResponse convierte la entidad a su forma de salida.
func NewOrderResponse(o *entity.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return OrderResponse{
		ID:                 o.ID,
		Code:               o.Code,
		Direction:          string(o.Direction),
		Status:             string(o.Status),
		CreatedAt:          o.CreatedAt,
		CompletedAt:        o.CompletedAt,
		WarehouseID:        o.WarehouseID,
		ClientID:           o.ClientID,
		CreatedByUserID:    o.CreatedByUserID,
		CompletedByUserID:  o.CompletedByUserID,
		CancellationReason: o.CancellationReason,
		ScanToken:          o.ScanToken(),
		TotalUnits:         o.TotalUnits(),
		Lines:              lines,
	}
}

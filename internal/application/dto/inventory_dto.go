package dto

import (
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ItemID           string `json:"item_id"`
	Type             string `json:"type"`
	Quantity         int    `json:"quantity"`
	ClientID         string `json:"client_id,omitempty"`
	CorrelationToken string `json:"correlation_token,omitempty"`
}

// MovementResponse salida de un movimiento aplicado.
type MovementResponse struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	ItemID           string    `json:"item_id"`
	Quantity         int       `json:"quantity"`
	Date             time.Time `json:"date"`
	UserID           string    `json:"user_id"`
	ClientID         string    `json:"client_id,omitempty"`
	CorrelationToken string    `json:"correlation_token,omitempty"`
}

// MovementListResponse historial de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewMovementResponse convierte la entidad a su forma de salida.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		Type:             string(m.Type),
		ItemID:           m.ItemID,
		Quantity:         m.Quantity,
		Date:             m.Date,
		UserID:           m.UserID,
		ClientID:         m.ClientID,
		CorrelationToken: m.CorrelationToken,
	}
}

// NewMovementList convierte una lista de movimientos.
func NewMovementList(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, NewMovementResponse(m))
	}
	return out
}

package dto

// ScanRequest body para POST /api/scan/resolve y /api/scan/fulfill.
type ScanRequest struct {
	Token string `json:"token"`
}

// ScanMovementRequest body para POST /api/scan/movement.
type ScanMovementRequest struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	ClientID string `json:"client_id,omitempty"`
}

// ScanResolution qué se encontró detrás del token.
type ScanResolution struct {
	Kind             string         `json:"kind"`
	Order            *OrderResponse `json:"order,omitempty"`
	Item             *ItemResponse  `json:"item,omitempty"`
	RequiresOverride bool           `json:"requires_override"`
}

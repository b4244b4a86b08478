package entity

import "time"

// Client destinatario u origen de pedidos y movimientos. Es opcional en ambos.
type Client struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Description string
	Address     string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

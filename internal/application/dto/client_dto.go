package dto

import "time"

// CreateClientRequest entrada para crear un cliente. ID es opcional; si falta se genera.
type CreateClientRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	Address     string `json:"address"`
	PhotoURL    string `json:"photo_url"`
}

// UpdateClientRequest entrada para actualizar un cliente; solo se aplican los campos enviados.
type UpdateClientRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	PhotoURL    *string `json:"photo_url"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

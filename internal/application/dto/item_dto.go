package dto

import (
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// CreateItemRequest entrada para crear un producto. InitialQuantity se registra como movimiento IN.
type CreateItemRequest struct {
	SKU             string `json:"sku" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	WarehouseID     string `json:"warehouse_id" validate:"required"`
	InitialQuantity int    `json:"initial_quantity" validate:"min=0"`
}

// UpdateItemRequest datos de catálogo editables; la cantidad solo cambia con movimientos.
type UpdateItemRequest struct {
	SKU         *string `json:"sku"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	WarehouseID *string `json:"warehouse_id"`
}

// ItemResponse salida de un producto.
type ItemResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	WarehouseID string    `json:"warehouse_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemListResponse lista paginada de productos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LowStockResponse reporte de productos por debajo del umbral.
type LowStockResponse struct {
	Threshold int            `json:"threshold"`
	Items     []ItemResponse `json:"items"`
}

// NewItemResponse convierte la entidad a su forma de salida.
func NewItemResponse(it *entity.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		SKU:         it.SKU,
		Name:        it.Name,
		Description: it.Description,
		Quantity:    it.Quantity,
		WarehouseID: it.WarehouseID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

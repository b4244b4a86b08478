package inventory

import (
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// NextQuantity implementa la regla del libro de inventario (servicio de dominio).
// IN suma, OUT resta; una salida mayor que el stock actual se rechaza y la cantidad nunca queda negativa.
// Una entrada que llevaría el producto por encima de entity.MaxQuantity es un error de validación.
func NextQuantity(item *entity.InventoryItem, movType entity.MovementType, qty int) (int, error) {
	if !movType.Valid() {
		return 0, domain.NewValidationError("type", "debe ser IN u OUT")
	}
	if qty <= 0 {
		return 0, domain.NewValidationError("quantity", "debe ser mayor a 0")
	}
	if movType == entity.MovementTypeOUT && !item.CanRelease(qty) {
		return 0, &domain.InsufficientStockError{ItemID: item.ID, Available: item.Quantity, Required: qty}
	}
	if movType == entity.MovementTypeIN && !item.CanReceive(qty) {
		return 0, domain.NewValidationError("quantity", "excede la capacidad máxima del producto")
	}
	return item.Quantity + movType.Signed(qty), nil
}

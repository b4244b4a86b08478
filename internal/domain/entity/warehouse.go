package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// Capacity es informativa: el núcleo no la valida contra las cantidades.
type Warehouse struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

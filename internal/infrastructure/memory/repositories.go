package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
	_ repository.ClientRepository        = (*ClientRepo)(nil)
	_ repository.InventoryItemRepository = (*ItemRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.OrderRepository         = (*OrderRepo)(nil)
)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	s    *Store
	inTx bool
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	defer r.s.lock(r.inTx)()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.warehouses[w.ID]; !ok {
		return domain.ErrWarehouseNotFound
	}
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		w := w
		list = append(list, &w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// Delete rechaza bodegas con productos asignados (mismo efecto que la FK en PostgreSQL).
func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	for _, it := range r.s.items {
		if it.WarehouseID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.warehouses, id)
	return nil
}

// ClientRepo clientes en memoria.
type ClientRepo struct {
	s *Store
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	defer r.s.lock(false)()
	if _, ok := r.s.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	defer r.s.lock(false)()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	defer r.s.lock(false)()
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	defer r.s.lock(false)()
	list := make([]*entity.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

// Delete rechaza clientes con pedidos o movimientos asociados.
func (r *ClientRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(false)()
	for _, o := range r.s.orders {
		if o.ClientID == id {
			return domain.ErrConflict
		}
	}
	for _, m := range r.s.movements {
		if m.ClientID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.clients, id)
	return nil
}

// clientExists aplica la FK opcional: un ClientID vacío no referencia a nadie.
func (s *Store) clientExists(id string) bool {
	if id == "" {
		return true
	}
	_, ok := s.clients[id]
	return ok
}

// ItemRepo productos en memoria.
type ItemRepo struct {
	s    *Store
	inTx bool
}

func (r *ItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.warehouses[item.WarehouseID]; !ok {
		return domain.ErrWarehouseNotFound
	}
	for _, it := range r.s.items {
		if it.ID == item.ID || it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	defer r.s.lock(r.inTx)()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.InventoryItem, error) {
	defer r.s.lock(r.inTx)()
	for _, it := range r.s.items {
		if it.SKU == sku {
			it := it
			return &it, nil
		}
	}
	return nil, nil
}

// GetForUpdate dentro de Run la fila ya está protegida por el mutex del escritor.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	defer r.s.lock(r.inTx)()
	it, ok := r.s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if quantity < 0 {
		return domain.NewStorageError("update item quantity", domain.ErrInsufficientStock)
	}
	it.Quantity = quantity
	r.s.items[id] = it
	return nil
}

func (r *ItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.items[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if _, ok := r.s.warehouses[item.WarehouseID]; !ok {
		return domain.ErrWarehouseNotFound
	}
	for _, it := range r.s.items {
		if it.ID != item.ID && it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	cur.SKU = item.SKU
	cur.Name = item.Name
	cur.Description = item.Description
	cur.WarehouseID = item.WarehouseID
	cur.UpdatedAt = item.UpdatedAt
	r.s.items[item.ID] = cur
	return nil
}

func (r *ItemRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.InventoryItem, 0)
	for _, it := range r.s.items {
		if warehouseID == "" || it.WarehouseID == warehouseID {
			it := it
			list = append(list, &it)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}

func (r *ItemRepo) ListBelow(_ context.Context, threshold, limit int) ([]*entity.InventoryItem, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.InventoryItem, 0)
	for _, it := range r.s.items {
		if it.Quantity < threshold {
			it := it
			list = append(list, &it)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Quantity != list[j].Quantity {
			return list[i].Quantity < list[j].Quantity
		}
		return list[i].SKU < list[j].SKU
	})
	return page(list, limit, 0), nil
}

// Delete rechaza productos referenciados por movimientos o líneas de pedido.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	for _, m := range r.s.movements {
		if m.ItemID == id {
			return domain.ErrConflict
		}
	}
	for _, o := range r.s.orders {
		for _, l := range o.Lines {
			if l.ItemID == id {
				return domain.ErrConflict
			}
		}
	}
	delete(r.s.items, id)
	return nil
}

// MovementRepo movimientos en memoria (solo inserción).
type MovementRepo struct {
	s    *Store
	inTx bool
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.items[m.ItemID]; !ok {
		return domain.ErrItemNotFound
	}
	if !r.s.clientExists(m.ClientID) {
		return domain.ErrClientNotFound
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Movement, 0)
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if m := r.s.movements[i]; m.ItemID == itemID {
			list = append(list, &m)
		}
	}
	return page(list, limit, offset), nil
}

func (r *MovementRepo) ListByCorrelation(_ context.Context, token string) ([]*entity.Movement, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if m.CorrelationToken == token {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

// OrderRepo pedidos en memoria.
type OrderRepo struct {
	s    *Store
	inTx bool
}

// Create valida código único y referencias igual que las restricciones del esquema SQL.
func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	defer r.s.lock(r.inTx)()
	for _, cur := range r.s.orders {
		if cur.ID == o.ID || cur.Code == o.Code {
			return domain.ErrDuplicate
		}
	}
	if o.WarehouseID != "" {
		if _, ok := r.s.warehouses[o.WarehouseID]; !ok {
			return domain.ErrWarehouseNotFound
		}
	}
	if !r.s.clientExists(o.ClientID) {
		return domain.ErrClientNotFound
	}
	for _, l := range o.Lines {
		if _, ok := r.s.items[l.ItemID]; !ok {
			return domain.ErrItemNotFound
		}
	}
	r.s.orders[o.ID] = copyOrder(*o)
	r.s.orderSeq = append(r.s.orderSeq, o.ID)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o = copyOrder(o)
	return &o, nil
}

func (r *OrderRepo) GetByCode(_ context.Context, code string) (*entity.Order, error) {
	defer r.s.lock(r.inTx)()
	for _, o := range r.s.orders {
		if o.Code == code {
			o = copyOrder(o)
			return &o, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	cur.Status = o.Status
	cur.CompletedAt = o.CompletedAt
	cur.CompletedByUserID = o.CompletedByUserID
	cur.CancellationReason = o.CancellationReason
	r.s.orders[o.ID] = copyOrder(cur)
	return nil
}

// List pedidos más recientes primero.
func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Order, 0)
	for i := len(r.s.orderSeq) - 1; i >= 0; i-- {
		o := copyOrder(r.s.orders[r.s.orderSeq[i]])
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		list = append(list, &o)
	}
	return page(list, f.Limit, f.Offset), nil
}

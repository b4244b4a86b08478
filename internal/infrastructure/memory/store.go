// Package memory implementa los puertos de persistencia en memoria.
// Un único mutex de escritura se mantiene durante toda la transacción (un solo escritor),
// y ante error se restaura la instantánea tomada al inicio.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado completo del libro y de los pedidos.
type Store struct {
	mu         sync.Mutex
	warehouses map[string]entity.Warehouse
	clients    map[string]entity.Client
	items      map[string]entity.InventoryItem
	movements  []entity.Movement
	orders     map[string]entity.Order
	orderSeq   []string // orden de creación de pedidos
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		warehouses: make(map[string]entity.Warehouse),
		clients:    make(map[string]entity.Client),
		items:      make(map[string]entity.InventoryItem),
		orders:     make(map[string]entity.Order),
	}
}

type snapshot struct {
	warehouses map[string]entity.Warehouse
	clients    map[string]entity.Client
	items      map[string]entity.InventoryItem
	movements  int
	orders     map[string]entity.Order
	orderSeq   int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		clients:    make(map[string]entity.Client, len(s.clients)),
		items:      make(map[string]entity.InventoryItem, len(s.items)),
		movements:  len(s.movements),
		orders:     make(map[string]entity.Order, len(s.orders)),
		orderSeq:   len(s.orderSeq),
	}
	for k, v := range s.warehouses {
		snap.warehouses[k] = v
	}
	for k, v := range s.clients {
		snap.clients[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.warehouses = snap.warehouses
	s.clients = snap.clients
	s.items = snap.items
	s.movements = s.movements[:snap.movements]
	s.orders = snap.orders
	s.orderSeq = s.orderSeq[:snap.orderSeq]
}

// Run ejecuta fn con repositorios atados a la transacción. Error de fn, pánico o contexto
// cancelado = rollback. El pánico se vuelve a lanzar tras restaurar.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
	}()
	if err := fn(&MovementRepo{s: s, inTx: true}, &ItemRepo{s: s, inTx: true}, &OrderRepo{s: s, inTx: true}); err != nil {
		s.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snap)
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}

// Warehouses repositorio de bodegas fuera de transacción.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Clients repositorio de clientes.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// Items repositorio de productos fuera de transacción.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// lock toma el mutex solo cuando la llamada no viene de dentro de Run (que ya lo tiene).
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyOrder(o entity.Order) entity.Order {
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		o.CompletedAt = &t
	}
	return o
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

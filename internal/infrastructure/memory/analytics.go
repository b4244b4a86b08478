package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados calculados sobre el estado en memoria.
type AnalyticsRepo struct{ s *Store }

// Analytics repositorio de consultas agregadas.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

func (r *AnalyticsRepo) GetStockTotals(_ context.Context) (int, int, error) {
	defer r.s.lock(false)()
	units := 0
	for _, it := range r.s.items {
		units += it.Quantity
	}
	return units, len(r.s.movements), nil
}

func (r *AnalyticsRepo) GetUnitsByWarehouse(_ context.Context) ([]repository.WarehouseUnits, error) {
	defer r.s.lock(false)()
	byWarehouse := make(map[string]int, len(r.s.warehouses))
	for _, it := range r.s.items {
		byWarehouse[it.WarehouseID] += it.Quantity
	}
	out := make([]repository.WarehouseUnits, 0, len(r.s.warehouses))
	for id, w := range r.s.warehouses {
		out = append(out, repository.WarehouseUnits{WarehouseID: id, Name: w.Name, Units: byWarehouse[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (r *AnalyticsRepo) GetOrdersByStatus(_ context.Context) (map[entity.OrderStatus]int, error) {
	defer r.s.lock(false)()
	out := make(map[entity.OrderStatus]int)
	for _, o := range r.s.orders {
		out[o.Status]++
	}
	return out, nil
}

func (r *AnalyticsRepo) GetTopOutItems(_ context.Context, since time.Time, limit int) ([]repository.ItemUnits, error) {
	defer r.s.lock(false)()
	units := make(map[string]int)
	for _, m := range r.s.movements {
		if m.Type == entity.MovementTypeOUT && !m.Date.Before(since) {
			units[m.ItemID] += m.Quantity
		}
	}
	out := make([]repository.ItemUnits, 0, len(units))
	for id, n := range units {
		it := r.s.items[id]
		out = append(out, repository.ItemUnits{ItemID: id, SKU: it.SKU, Name: it.Name, Units: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].SKU < out[j].SKU
	})
	return page(out, limit, 0), nil
}

// Package analytics contiene el resumen de bodega que alimenta el dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

const (
	dashboardTopItems     = 5 // productos en el widget de más despachados
	dashboardLowStock     = 5
	dashboardRecentOrders = 5
)

// DashboardUseCase genera el resumen de existencias, pedidos y despachos del mes en curso.
// Solo lee; no abre transacciones.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	items         repository.InventoryItemRepository
	orders        repository.OrderRepository
	threshold     int
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. threshold es el umbral de stock bajo.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	items repository.InventoryItemRepository,
	orders repository.OrderRepository,
	threshold int,
) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		items:         items,
		orders:        orders,
		threshold:     threshold,
		now:           time.Now,
	}
}

// GetSummary lanza las consultas en paralelo; el primer error cancela las demás.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := &dto.DashboardSummaryResponse{PeriodLabel: monthLabel(now)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		units, movements, err := uc.analyticsRepo.GetStockTotals(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: totales: %w", err)
		}
		out.TotalUnits, out.TotalMovements = units, movements
		return nil
	})
	g.Go(func() error {
		list, err := uc.analyticsRepo.GetUnitsByWarehouse(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: unidades por bodega: %w", err)
		}
		out.TotalWarehouses = len(list)
		out.UnitsByWarehouse = make([]dto.WarehouseUnitsDTO, 0, len(list))
		for _, w := range list {
			out.UnitsByWarehouse = append(out.UnitsByWarehouse, dto.WarehouseUnitsDTO{WarehouseID: w.WarehouseID, Name: w.Name, Units: w.Units})
		}
		return nil
	})
	byStatus := make(map[string]int)
	g.Go(func() error {
		counts, err := uc.analyticsRepo.GetOrdersByStatus(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: pedidos por estado: %w", err)
		}
		for status, n := range counts {
			byStatus[string(status)] = n
		}
		return nil
	})
	g.Go(func() error {
		list, err := uc.analyticsRepo.GetTopOutItems(gctx, monthStart, dashboardTopItems)
		if err != nil {
			return fmt.Errorf("dashboard: más despachados: %w", err)
		}
		out.TopOutItems = make([]dto.ItemUnitsDTO, 0, len(list))
		for _, it := range list {
			out.TopOutItems = append(out.TopOutItems, dto.ItemUnitsDTO{ItemID: it.ItemID, SKU: it.SKU, Name: it.Name, Units: it.Units})
		}
		return nil
	})
	g.Go(func() error {
		list, err := uc.items.ListBelow(gctx, uc.threshold, dashboardLowStock)
		if err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		out.LowStock = make([]dto.ItemResponse, 0, len(list))
		for _, it := range list {
			out.LowStock = append(out.LowStock, dto.NewItemResponse(it))
		}
		return nil
	})
	g.Go(func() error {
		list, err := uc.orders.List(gctx, repository.OrderFilter{Limit: dashboardRecentOrders})
		if err != nil {
			return fmt.Errorf("dashboard: pedidos recientes: %w", err)
		}
		out.RecentOrders = make([]dto.OrderResponse, 0, len(list))
		for _, o := range list {
			out.RecentOrders = append(out.RecentOrders, dto.NewOrderResponse(o))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.OrdersByStatus = byStatus
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// Engine conduce el pedido por su máquina de estados. Al completar, aplica todas las líneas
// como movimientos dentro de una sola transacción: o entran todas o no entra ninguna.
type Engine struct {
	txRunner  inventory.TxRunner
	orderRepo repository.OrderRepository
	applier   LineApplier
	movements CorrelationLister
	log       *logger.Logger
	now       func() time.Time
	newCode   func() string
}

// NewEngine construye el motor de pedidos. orderRepo se usa para lecturas fuera de transacción.
func NewEngine(
	txRunner inventory.TxRunner,
	orderRepo repository.OrderRepository,
	applier LineApplier,
	movements CorrelationLister,
	log *logger.Logger,
) *Engine {
	return &Engine{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		applier:   applier,
		movements: movements,
		log:       log.Named("order_engine"),
		now:       time.Now,
		newCode:   generateCode,
	}
}

// LineInput producto y cantidad solicitada.
type LineInput struct {
	ItemID   string
	Quantity int
}

// CreateOrderInput entrada para crear un pedido. Code vacío = se genera ORD-XXXXXXXX.
type CreateOrderInput struct {
	Code        string
	Direction   entity.MovementType
	Lines       []LineInput
	WarehouseID string
	ClientID    string
	CreatedBy   string
}

// FulfillInput entrada para completar un pedido. Elevated habilita el reproceso de pedidos ya completados.
type FulfillInput struct {
	OrderID     string
	CompleterID string
	Elevated    bool
}

// Reconciliation pedido con los movimientos que llevan su código.
type Reconciliation struct {
	Order     *entity.Order
	Movements []*entity.Movement
	// Applications cuántas veces se aplicó el lote completo (más de 1 tras un reproceso).
	Applications int
}

// CreateOrder valida y persiste cabecera y líneas en una sola escritura atómica.
// No valida stock: la suficiencia se verifica únicamente al completar.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	lines, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		code = e.newCode()
	}

	order := &entity.Order{
		ID:              uuid.New().String(),
		Code:            code,
		Direction:       in.Direction,
		Status:          entity.OrderStatusPending,
		CreatedAt:       e.now(),
		WarehouseID:     strings.TrimSpace(in.WarehouseID),
		ClientID:        strings.TrimSpace(in.ClientID),
		CreatedByUserID: in.CreatedBy,
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, entity.OrderLine{OrderID: order.ID, ItemID: l.ItemID, Quantity: l.Quantity})
	}

	err = e.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		_ repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error {
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		e.log.Error().Err(err).Str("order_code", code).Msg("no se pudo crear el pedido")
		return nil, err
	}

	e.log.Info().
		Str("order_id", order.ID).
		Str("order_code", order.Code).
		Str("direction", string(order.Direction)).
		Int("lines", len(order.Lines)).
		Msg("pedido creado")
	return order, nil
}

// Fulfill completa el pedido aplicando cada línea con la dirección del pedido.
// Con Elevated=true un pedido COMPLETED se reprocesa: los movimientos se aplican OTRA VEZ
// (no es idempotente y duplica el efecto en stock). Solo para correcciones administrativas.
func (e *Engine) Fulfill(ctx context.Context, in FulfillInput) (*entity.Order, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, domain.NewValidationError("order_id", "es requerido")
	}
	if strings.TrimSpace(in.CompleterID) == "" {
		return nil, domain.NewValidationError("completer_id", "es requerido")
	}

	var result *entity.Order
	var reprocessed bool
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Bloquea la cabecera: dos completados simultáneos del mismo pedido no pueden aplicar ambos
		order, err := orderRepo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}

		via := entity.TransitionFulfill
		switch order.Status {
		case entity.OrderStatusCancelled:
			return domain.ErrOrderTerminal
		case entity.OrderStatusCompleted:
			if !in.Elevated {
				return domain.ErrAlreadyProcessed
			}
			via = entity.TransitionReprocess
		}
		next, ok := entity.NextStatus(order.Status, via)
		if !ok {
			return domain.ErrInvalidTransition
		}
		reprocessed = via == entity.TransitionReprocess

		now := e.now()
		for _, line := range lockOrder(order.Lines) {
			_, err := e.applier.ApplyInTx(ctx, movRepo, itemRepo, inventory.MovementInput{
				ItemID:           line.ItemID,
				Type:             order.Direction,
				Quantity:         line.Quantity,
				UserID:           in.CompleterID,
				ClientID:         order.ClientID,
				CorrelationToken: order.Code,
			}, now)
			if err != nil {
				return err
			}
		}

		order.Status = next
		order.CompletedAt = &now
		order.CompletedByUserID = in.CompleterID
		if err := orderRepo.UpdateStatus(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		e.logFulfillFailure(in, err)
		return nil, err
	}

	if reprocessed {
		e.log.Warn().
			Str("order_id", result.ID).
			Str("order_code", result.Code).
			Str("completer_id", in.CompleterID).
			Int("lines", len(result.Lines)).
			Msg("pedido reprocesado: los movimientos se aplicaron de nuevo")
	} else {
		e.log.Info().
			Str("order_id", result.ID).
			Str("order_code", result.Code).
			Int("lines", len(result.Lines)).
			Msg("pedido completado")
	}
	return result, nil
}

// Cancel cancela un pedido PENDING. El motivo es obligatorio; no hay efecto en inventario.
func (e *Engine) Cancel(ctx context.Context, orderID, reason string) (*entity.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, domain.NewValidationError("order_id", "es requerido")
	}

	var result *entity.Order
	err := e.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		_ repository.InventoryItemRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		next, ok := entity.NextStatus(order.Status, entity.TransitionCancel)
		if !ok {
			return domain.ErrNotPending
		}
		order.Status = next
		order.CancellationReason = reason
		if err := orderRepo.UpdateStatus(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("order_id", orderID).Msg("cancelación rechazada")
		return nil, err
	}

	e.log.Info().Str("order_id", result.ID).Str("order_code", result.Code).Str("reason", reason).Msg("pedido cancelado")
	return result, nil
}

// GetOrder obtiene un pedido con sus líneas.
func (e *Engine) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := e.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByCode obtiene un pedido por su código legible.
func (e *Engine) GetOrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	order, err := e.orderRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lista pedidos, opcionalmente filtrados por estado.
func (e *Engine) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "debe ser PENDING, COMPLETED o CANCELLED")
	}
	return e.orderRepo.List(ctx, filter)
}

// Reconcile cruza el pedido con los movimientos que llevan su código.
func (e *Engine) Reconcile(ctx context.Context, orderID string) (*Reconciliation, error) {
	order, err := e.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	movs, err := e.movements.ListByCorrelation(ctx, order.Code)
	if err != nil {
		return nil, err
	}
	rec := &Reconciliation{Order: order, Movements: movs}
	if n := len(order.Lines); n > 0 {
		rec.Applications = len(movs) / n
	}
	return rec, nil
}

// validateCreate revisa la solicitud y fusiona líneas repetidas del mismo producto.
func validateCreate(in CreateOrderInput) ([]LineInput, error) {
	if !in.Direction.Valid() {
		return nil, domain.NewValidationError("direction", "debe ser IN u OUT")
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		return nil, domain.NewValidationError("created_by", "es requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "el pedido debe tener al menos una línea")
	}

	merged := make([]LineInput, 0, len(in.Lines))
	index := make(map[string]int, len(in.Lines))
	for _, l := range in.Lines {
		itemID := strings.TrimSpace(l.ItemID)
		if itemID == "" {
			return nil, domain.NewValidationError("lines.item_id", "es requerido")
		}
		if l.Quantity <= 0 {
			return nil, domain.NewValidationError("lines.quantity", "debe ser mayor a 0")
		}
		if l.Quantity > entity.MaxQuantity {
			return nil, domain.NewValidationError("lines.quantity", "excede el máximo permitido")
		}
		if i, ok := index[itemID]; ok {
			if merged[i].Quantity > entity.MaxQuantity-l.Quantity {
				return nil, domain.NewValidationError("lines.quantity", "la suma de líneas del producto excede el máximo permitido")
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		index[itemID] = len(merged)
		merged = append(merged, LineInput{ItemID: itemID, Quantity: l.Quantity})
	}
	return merged, nil
}

// lockOrder devuelve las líneas ordenadas por producto para que lotes concurrentes
// que comparten productos bloqueen las filas en el mismo orden.
func lockOrder(lines []entity.OrderLine) []entity.OrderLine {
	sorted := make([]entity.OrderLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ItemID < sorted[j].ItemID })
	return sorted
}

func generateCode() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

func (e *Engine) logFulfillFailure(in FulfillInput, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		e.log.Warn().
			Str("order_id", in.OrderID).
			Str("item_id", stockErr.ItemID).
			Int("available", stockErr.Available).
			Int("required", stockErr.Required).
			Msg("pedido no completado: stock insuficiente, lote revertido")
	case errors.Is(err, domain.ErrStorage):
		e.log.Error().Err(err).Str("order_id", in.OrderID).Msg("fallo de almacenamiento al completar pedido")
	default:
		e.log.Info().Err(err).Str("order_id", in.OrderID).Msg("pedido no completado")
	}
}

package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/inventory"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// MovementApplier es el único punto que modifica InventoryItem.Quantity.
// Cada aplicación bloquea la fila del producto (SELECT FOR UPDATE), valida el stock,
// actualiza la cantidad e inserta el movimiento en la misma transacción.
type MovementApplier struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewMovementApplier construye el aplicador. movRepo se usa solo para consultas fuera de transacción.
func NewMovementApplier(txRunner TxRunner, movRepo repository.MovementRepository, log *logger.Logger) *MovementApplier {
	return &MovementApplier{
		txRunner: txRunner,
		movRepo:  movRepo,
		log:      log.Named("movement_applier"),
		now:      time.Now,
	}
}

// MovementInput entrada para aplicar un movimiento a un producto.
type MovementInput struct {
	ItemID           string
	Type             entity.MovementType
	Quantity         int
	UserID           string
	ClientID         string
	CorrelationToken string
}

// Validate revisa campos obligatorios antes de tocar el almacenamiento.
func (in MovementInput) Validate() error {
	if strings.TrimSpace(in.ItemID) == "" {
		return domain.NewValidationError("item_id", "es requerido")
	}
	if !in.Type.Valid() {
		return domain.NewValidationError("type", "debe ser IN u OUT")
	}
	if in.Quantity <= 0 {
		return domain.NewValidationError("quantity", "debe ser mayor a 0")
	}
	if in.Quantity > entity.MaxQuantity {
		return domain.NewValidationError("quantity", "excede el máximo permitido")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return domain.NewValidationError("user_id", "es requerido")
	}
	return nil
}

// ApplyMovement aplica un movimiento en su propia transacción.
// Errores: ErrValidation, ErrItemNotFound, *InsufficientStockError, *StorageError (todo revertido).
func (a *MovementApplier) ApplyMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var applied *entity.Movement
	err := a.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.OrderRepository,
	) error {
		mov, err := a.ApplyInTx(ctx, movRepo, itemRepo, in, a.now())
		if err != nil {
			return err
		}
		applied = mov
		return nil
	})
	if err != nil {
		a.logFailure(in, err)
		return nil, err
	}

	a.log.Info().
		Str("movement_id", applied.ID).
		Str("item_id", applied.ItemID).
		Str("type", string(applied.Type)).
		Int("quantity", applied.Quantity).
		Msg("movimiento aplicado")
	return applied, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del llamador.
// Lo usa el motor de pedidos para componer varias líneas en un solo lote atómico.
func (a *MovementApplier) ApplyInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	in MovementInput,
	now time.Time,
) (*entity.Movement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Bloquea la fila del producto para que la verificación y la escritura no se intercalen
	item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	newQty, err := inventory.NextQuantity(item, in.Type, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := itemRepo.UpdateQuantity(ctx, item.ID, newQty); err != nil {
		return nil, err
	}

	mov := &entity.Movement{
		ID:               uuid.New().String(),
		Type:             in.Type,
		ItemID:           item.ID,
		Quantity:         in.Quantity,
		Date:             now,
		UserID:           in.UserID,
		ClientID:         in.ClientID,
		CorrelationToken: in.CorrelationToken,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ListByItem historial de movimientos de un producto (más recientes primero).
func (a *MovementApplier) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domain.NewValidationError("item_id", "es requerido")
	}
	return a.movRepo.ListByItem(ctx, itemID, limit, offset)
}

// ListByCorrelation movimientos que llevan el token indicado (conciliación con pedidos).
func (a *MovementApplier) ListByCorrelation(ctx context.Context, token string) ([]*entity.Movement, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.NewValidationError("correlation_token", "es requerido")
	}
	return a.movRepo.ListByCorrelation(ctx, token)
}

func (a *MovementApplier) logFailure(in MovementInput, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		a.log.Warn().
			Str("item_id", stockErr.ItemID).
			Int("available", stockErr.Available).
			Int("required", stockErr.Required).
			Msg("salida rechazada por stock insuficiente")
	case errors.Is(err, domain.ErrStorage):
		a.log.Error().Err(err).Str("item_id", in.ItemID).Msg("fallo de almacenamiento al aplicar movimiento")
	default:
		a.log.Debug().Err(err).Str("item_id", in.ItemID).Msg("movimiento rechazado")
	}
}

package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// Kind qué identificó el token escaneado.
type Kind string

// Tipos de resolución.
const (
	KindOrder Kind = "order"
	KindItem  Kind = "item"
)

// Resolution resultado de interpretar un token.
type Resolution struct {
	Kind  Kind
	Order *entity.Order
	Item  *entity.InventoryItem
	// RequiresOverride el pedido ya fue completado: solo un usuario con permiso elevado puede continuar.
	RequiresOverride bool
}

// Resolver traduce el contenido de un QR a un pedido o a un producto y delega la acción.
type Resolver struct {
	orders    OrderFinder
	items     ItemFinder
	fulfiller OrderFulfiller
	applier   MovementApplier
	log       *logger.Logger
	now       func() time.Time
}

// NewResolver construye el resolvedor de escaneos.
func NewResolver(orders OrderFinder, items ItemFinder, fulfiller OrderFulfiller, applier MovementApplier, log *logger.Logger) *Resolver {
	return &Resolver{
		orders:    orders,
		items:     items,
		fulfiller: fulfiller,
		applier:   applier,
		log:       log.Named("scan_resolver"),
		now:       time.Now,
	}
}

// Resolve interpreta el token. ORDER|<id>|<código> busca el pedido por id y luego por código;
// si no aparece, o el token no tiene ese formato, se busca como SKU.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Resolution, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewValidationError("token", "es requerido")
	}

	if orderID, code, ok := entity.ParseScanToken(token); ok {
		order, err := r.findOrder(ctx, orderID, code)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return &Resolution{
				Kind:             KindOrder,
				Order:            order,
				RequiresOverride: order.Status == entity.OrderStatusCompleted,
			}, nil
		}
	}

	item, err := r.items.GetBySKU(ctx, token)
	if err != nil {
		return nil, err
	}
	if item == nil {
		r.log.Debug().Str("token", token).Msg("código no reconocido")
		return nil, domain.ErrUnknownToken
	}
	return &Resolution{Kind: KindItem, Item: item}, nil
}

func (r *Resolver) findOrder(ctx context.Context, orderID, code string) (*entity.Order, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil || order != nil || code == "" {
		return order, err
	}
	return r.orders.GetByCode(ctx, code)
}

// FulfillScanned completa el pedido identificado por el token.
func (r *Resolver) FulfillScanned(ctx context.Context, token, completerID string, elevated bool) (*entity.Order, error) {
	res, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if res.Kind != KindOrder {
		return nil, domain.NewValidationError("token", "no corresponde a un pedido")
	}
	return r.fulfiller.Fulfill(ctx, orders.FulfillInput{
		OrderID:     res.Order.ID,
		CompleterID: completerID,
		Elevated:    elevated,
	})
}

// ApplyScanned registra un movimiento ad hoc sobre el producto escaneado.
// El movimiento se correlaciona con MOV-<tipo>-<sku>-<unix ms>.
func (r *Resolver) ApplyScanned(ctx context.Context, token string, movType entity.MovementType, quantity int, userID, clientID string) (*entity.Movement, error) {
	res, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if res.Kind != KindItem {
		return nil, domain.NewValidationError("token", "no corresponde a un producto")
	}
	return r.applier.ApplyMovement(ctx, inventory.MovementInput{
		ItemID:           res.Item.ID,
		Type:             movType,
		Quantity:         quantity,
		UserID:           userID,
		ClientID:         clientID,
		CorrelationToken: MovementToken(movType, res.Item.SKU, r.now()),
	})
}

// MovementToken token de correlación de un movimiento escaneado.
func MovementToken(movType entity.MovementType, sku string, at time.Time) string {
	return fmt.Sprintf("MOV-%s-%s-%d", movType, sku, at.UnixMilli())
}

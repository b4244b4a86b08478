package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// InitialStockToken token de correlación del movimiento IN de alta de un producto.
const InitialStockToken = "ALTA"

// ItemUseCase catálogo de productos y reporte de stock bajo.
type ItemUseCase struct {
	txRunner   inventory.TxRunner
	items      repository.InventoryItemRepository
	warehouses repository.WarehouseRepository
	applier    orders.LineApplier
	threshold  int
	log        *logger.Logger
}

// NewItemUseCase construye el caso de uso. threshold es el umbral del reporte de stock bajo.
func NewItemUseCase(
	txRunner inventory.TxRunner,
	items repository.InventoryItemRepository,
	warehouses repository.WarehouseRepository,
	applier orders.LineApplier,
	threshold int,
	log *logger.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner:   txRunner,
		items:      items,
		warehouses: warehouses,
		applier:    applier,
		threshold:  threshold,
		log:        log.Named("item_usecase"),
	}
}

// Create da de alta el producto con cantidad 0. Una cantidad inicial se registra como
// movimiento IN en la misma transacción para que el historial explique el stock.
func (uc *ItemUseCase) Create(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	switch {
	case sku == "":
		return nil, domain.NewValidationError("sku", "es requerido")
	case name == "":
		return nil, domain.NewValidationError("name", "es requerido")
	case strings.TrimSpace(in.WarehouseID) == "":
		return nil, domain.NewValidationError("warehouse_id", "es requerido")
	case in.InitialQuantity < 0:
		return nil, domain.NewValidationError("initial_quantity", "no puede ser negativa")
	case in.InitialQuantity > entity.MaxQuantity:
		return nil, domain.NewValidationError("initial_quantity", "excede el máximo permitido")
	}

	wh, err := uc.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrWarehouseNotFound
	}

	now := time.Now()
	item := &entity.InventoryItem{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		WarehouseID: wh.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.OrderRepository,
	) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		if in.InitialQuantity == 0 {
			return nil
		}
		_, err := uc.applier.ApplyInTx(ctx, movRepo, itemRepo, inventory.MovementInput{
			ItemID:           item.ID,
			Type:             entity.MovementTypeIN,
			Quantity:         in.InitialQuantity,
			UserID:           userID,
			CorrelationToken: InitialStockToken,
		}, now)
		if err != nil {
			return err
		}
		item.Quantity = in.InitialQuantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("item_id", item.ID).Str("sku", item.SKU).Int("quantity", item.Quantity).Msg("producto creado")
	resp := dto.NewItemResponse(item)
	return &resp, nil
}

// GetByID obtiene un producto por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewItemResponse(item)
	return &resp, nil
}

// GetBySKU obtiene un producto por SKU.
func (uc *ItemUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	resp := dto.NewItemResponse(item)
	return &resp, nil
}

func (uc *ItemUseCase) get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

// List productos de una bodega (todas si warehouseID está vacío).
func (uc *ItemUseCase) List(ctx context.Context, warehouseID string, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.items.ListByWarehouse(ctx, strings.TrimSpace(warehouseID), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ItemListResponse{
		Items: toItemResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update modifica datos de catálogo; la cantidad no se toca.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		if item.SKU = strings.TrimSpace(*in.SKU); item.SKU == "" {
			return nil, domain.NewValidationError("sku", "no puede quedar vacío")
		}
	}
	if in.Name != nil {
		if item.Name = strings.TrimSpace(*in.Name); item.Name == "" {
			return nil, domain.NewValidationError("name", "no puede quedar vacío")
		}
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.WarehouseID != nil {
		item.WarehouseID = strings.TrimSpace(*in.WarehouseID)
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.Update(ctx, item); err != nil {
		return nil, err
	}
	resp := dto.NewItemResponse(item)
	return &resp, nil
}

// Delete elimina un producto sin stock ni historial.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	item, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if item.Quantity != 0 {
		return domain.ErrConflict
	}
	return uc.items.Delete(ctx, id)
}

// LowStock productos con cantidad menor al umbral configurado.
func (uc *ItemUseCase) LowStock(ctx context.Context, limit int) (*dto.LowStockResponse, error) {
	list, err := uc.items.ListBelow(ctx, uc.threshold, limit)
	if err != nil {
		return nil, err
	}
	return &dto.LowStockResponse{Threshold: uc.threshold, Items: toItemResponses(list)}, nil
}

func toItemResponses(list []*entity.InventoryItem) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, dto.NewItemResponse(it))
	}
	return out
}

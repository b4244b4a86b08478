package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/bodega-api/internal/application/analytics"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/application/scan"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/bodega-api/internal/interfaces/http"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

type apiHarness struct {
	app   *fiber.App
	store *memory.Store
	admin string
	clerk string
}

// newAPI monta el router completo sobre el store en memoria con una bodega wh-1
// y los productos indicados (id -> cantidad).
func newAPI(t *testing.T, items map[string]int) *apiHarness {
	t.Helper()
	return newAPIWithRunner(t, items, nil)
}

func newAPIWithRunner(t *testing.T, items map[string]int, runner inventory.TxRunner) *apiHarness {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", Name: "Principal"}))
	for id, qty := range items {
		require.NoError(t, store.Items().Create(ctx, &entity.InventoryItem{ID: id, SKU: "SKU-" + id, Name: id, Quantity: qty, WarehouseID: "wh-1"}))
	}
	if runner == nil {
		runner = store
	}
	log := logger.Nop()
	applier := inventory.NewMovementApplier(runner, store.Movements(), log)
	engine := orders.NewEngine(runner, store.Orders(), applier, applier, log)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:      engine,
		Applier:     applier,
		Resolver:    scan.NewResolver(store.Orders(), store.Items(), engine, applier, log),
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		ClientUC:    usecase.NewClientUseCase(store.Clients()),
		ItemUC:      usecase.NewItemUseCase(runner, store.Items(), store.Warehouses(), applier, 10, log),
		DashboardUC: appanalytics.NewDashboardUseCase(store.Analytics(), store.Items(), store.Orders(), 10),
		JWTSecret:   testJWTSecret,
	})
	return &apiHarness{app: app, store: store, admin: tokenForRole(t, "admin"), clerk: tokenForRole(t, "bodeguero")}
}

func (h *apiHarness) do(t *testing.T, method, path, auth string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (h *apiHarness) createOrder(t *testing.T, direction string, lines ...dto.OrderLineRequest) dto.OrderResponse {
	t.Helper()
	status, raw := h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{Direction: direction, Lines: lines})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(raw, &order))
	return order
}

func (h *apiHarness) quantity(t *testing.T, id string) int {
	t.Helper()
	item, err := h.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestAPI_RequiresToken(t *testing.T) {
	h := newAPI(t, nil)
	status, _ := h.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_CreateAndFulfillOrder(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10, "B": 4})
	order := h.createOrder(t, "OUT",
		dto.OrderLineRequest{ItemID: "A", Quantity: 3},
		dto.OrderLineRequest{ItemID: "B", Quantity: 4},
	)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, 7, order.TotalUnits)
	assert.Equal(t, "ORDER|"+order.ID+"|"+order.Code, order.ScanToken)

	status, raw := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.clerk, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var done dto.OrderResponse
	require.NoError(t, json.Unmarshal(raw, &done))
	assert.Equal(t, "COMPLETED", done.Status)
	assert.NotEmpty(t, done.CompletedByUserID)
	assert.Equal(t, 7, h.quantity(t, "A"))
	assert.Equal(t, 0, h.quantity(t, "B"))

	status, raw = h.do(t, http.MethodGet, "/api/orders/"+order.ID+"/movements", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Len(t, rec.Movements, 2)
	assert.Equal(t, 1, rec.Applications)
}

func TestAPI_InsufficientStockDetails(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10, "B": 1})
	order := h.createOrder(t, "OUT",
		dto.OrderLineRequest{ItemID: "A", Quantity: 10},
		dto.OrderLineRequest{ItemID: "B", Quantity: 5},
	)

	status, raw := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.clerk, nil)
	require.Equal(t, http.StatusConflict, status)
	e := decodeError(t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, "B", e.Details["item_id"])
	assert.EqualValues(t, 1, e.Details["available"])
	assert.EqualValues(t, 5, e.Details["required"])

	// todo o nada: A no se descontó y el pedido sigue pendiente
	assert.Equal(t, 10, h.quantity(t, "A"))
	status, raw = h.do(t, http.MethodGet, "/api/orders/"+order.ID, h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"status":"PENDING"`)
}

func TestAPI_ReprocessOnlyAdmin(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})
	order := h.createOrder(t, "OUT", dto.OrderLineRequest{ItemID: "A", Quantity: 2})
	status, _ := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)

	status, raw := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.clerk, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_PROCESSED", decodeError(t, raw).Code)
	assert.Equal(t, 8, h.quantity(t, "A"))

	status, _ = h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6, h.quantity(t, "A"))
}

func TestAPI_CancelRequiresReason(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})
	order := h.createOrder(t, "OUT", dto.OrderLineRequest{ItemID: "A", Quantity: 1})

	status, raw := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", h.clerk, dto.CancelOrderRequest{Reason: "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "REASON_REQUIRED", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", h.clerk, dto.CancelOrderRequest{Reason: "cliente desistió"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"status":"CANCELLED"`)

	status, raw = h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ORDER_TERMINAL", decodeError(t, raw).Code)
}

func TestAPI_CreateOrderValidation(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})
	status, raw := h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{
		Direction: "OUT",
		Lines:     []dto.OrderLineRequest{{ItemID: "A", Quantity: 0}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	status, _ = h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{Direction: "OUT"})
	assert.Equal(t, http.StatusBadRequest, status, "pedido sin líneas")
}

func TestAPI_MovementAndHistory(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 0})
	status, raw := h.do(t, http.MethodPost, "/api/inventory/movements", h.clerk, dto.RegisterMovementRequest{ItemID: "A", Type: "IN", Quantity: 5})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = h.do(t, http.MethodPost, "/api/inventory/movements", h.clerk, dto.RegisterMovementRequest{ItemID: "A", Type: "OUT", Quantity: 6})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodPost, "/api/inventory/movements", h.clerk, dto.RegisterMovementRequest{ItemID: "nope", Type: "IN", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodGet, "/api/inventory/items/A/movements", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Items[0].Quantity)
}

func TestAPI_ScanFlow(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})
	order := h.createOrder(t, "OUT", dto.OrderLineRequest{ItemID: "A", Quantity: 4})

	status, raw := h.do(t, http.MethodPost, "/api/scan/resolve", h.clerk, dto.ScanRequest{Token: order.ScanToken})
	require.Equal(t, http.StatusOK, status)
	var res dto.ScanResolution
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, "order", res.Kind)
	require.NotNil(t, res.Order)
	assert.False(t, res.RequiresOverride)

	status, _ = h.do(t, http.MethodPost, "/api/scan/fulfill", h.clerk, dto.ScanRequest{Token: order.ScanToken})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6, h.quantity(t, "A"))

	status, raw = h.do(t, http.MethodPost, "/api/scan/resolve", h.clerk, dto.ScanRequest{Token: order.ScanToken})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.True(t, res.RequiresOverride)

	status, raw = h.do(t, http.MethodPost, "/api/scan/movement", h.clerk, dto.ScanMovementRequest{Token: "SKU-A", Type: "OUT", Quantity: 1})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Regexp(t, `^MOV-OUT-SKU-A-\d+$`, mov.CorrelationToken)
	assert.Equal(t, 5, h.quantity(t, "A"))

	status, raw = h.do(t, http.MethodPost, "/api/scan/resolve", h.clerk, dto.ScanRequest{Token: "???"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "UNKNOWN_TOKEN", decodeError(t, raw).Code)
}

func TestAPI_ItemCreateRecordsInitialStock(t *testing.T) {
	h := newAPI(t, nil)
	status, raw := h.do(t, http.MethodPost, "/api/items", h.clerk, dto.CreateItemRequest{SKU: "NEW-1", Name: "Nuevo", WarehouseID: "wh-1", InitialQuantity: 7})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var item dto.ItemResponse
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, 7, item.Quantity)

	status, raw = h.do(t, http.MethodGet, "/api/items/NEW-1?by=sku", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), item.ID)

	status, raw = h.do(t, http.MethodPost, "/api/items", h.clerk, dto.CreateItemRequest{SKU: "NEW-1", Name: "Otro", WarehouseID: "wh-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decodeError(t, raw).Code)

	// borrar exige rol admin
	status, _ = h.do(t, http.MethodDelete, "/api/items/"+item.ID, h.clerk, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, raw = h.do(t, http.MethodDelete, "/api/items/"+item.ID, h.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decodeError(t, raw).Code)
}

func TestAPI_ClientsCRUDAndOrderReference(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})

	status, raw := h.do(t, http.MethodPost, "/api/clients", h.clerk, dto.CreateClientRequest{ID: "cli-1", Name: "Ferretería Sur", Email: "compras@sur.cl"})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = h.do(t, http.MethodPost, "/api/clients", h.clerk, dto.CreateClientRequest{Name: "X", Email: "sin-arroba"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{
		Direction: "OUT", ClientID: "ghost", Lines: []dto.OrderLineRequest{{ItemID: "A", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{
		Direction: "OUT", ClientID: "cli-1", Lines: []dto.OrderLineRequest{{ItemID: "A", Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = h.do(t, http.MethodGet, "/api/clients", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.ClientListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "compras@sur.cl", list.Items[0].Email)

	status, _ = h.do(t, http.MethodDelete, "/api/clients/cli-1", h.clerk, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, raw = h.do(t, http.MethodDelete, "/api/clients/cli-1", h.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decodeError(t, raw).Code)
}

func TestAPI_OrderQuantityAboveMaximumIsValidation(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 0})
	status, raw := h.do(t, http.MethodPost, "/api/orders", h.clerk, dto.CreateOrderRequest{
		Direction: "IN", Lines: []dto.OrderLineRequest{{ItemID: "A", Quantity: entity.MaxQuantity}, {ItemID: "A", Quantity: entity.MaxQuantity}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	status, raw = h.do(t, http.MethodGet, "/api/orders", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.OrderListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Empty(t, list.Items)
}

type brokenRunner struct{}

func (brokenRunner) Run(context.Context, func(repository.MovementRepository, repository.InventoryItemRepository, repository.OrderRepository) error) error {
	return &domain.StorageError{Op: "begin", Err: errors.New("connection refused")}
}

func TestAPI_StorageFailureIs503(t *testing.T) {
	h := newAPIWithRunner(t, map[string]int{"A": 10}, brokenRunner{})
	status, raw := h.do(t, http.MethodPost, "/api/inventory/movements", h.clerk, dto.RegisterMovementRequest{ItemID: "A", Type: "IN", Quantity: 1})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORAGE_FAILURE", decodeError(t, raw).Code)
	assert.Equal(t, 10, h.quantity(t, "A"))
}

func TestAPI_DashboardSummary(t *testing.T) {
	h := newAPI(t, map[string]int{"A": 10})
	order := h.createOrder(t, "OUT", dto.OrderLineRequest{ItemID: "A", Quantity: 6})
	status, _ := h.do(t, http.MethodPost, "/api/orders/"+order.ID+"/fulfill", h.clerk, nil)
	require.Equal(t, http.StatusOK, status)

	status, raw := h.do(t, http.MethodGet, "/api/dashboard/summary", h.clerk, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var summary dto.DashboardSummaryResponse
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 4, summary.TotalUnits)
	assert.Equal(t, 1, summary.OrdersByStatus["COMPLETED"])
	require.Len(t, summary.TopOutItems, 1)
	assert.Equal(t, 6, summary.TopOutItems[0].Units)
	assert.Len(t, summary.LowStock, 1)
}

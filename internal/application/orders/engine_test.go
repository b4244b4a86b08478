package orders_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store   *memory.Store
	applier *inventory.MovementApplier
	engine  *orders.Engine
}

// newHarness crea una bodega y los productos indicados (id -> cantidad).
func newHarness(t *testing.T, items map[string]int) *harness {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", Name: "Principal"}))
	require.NoError(t, store.Clients().Create(ctx, &entity.Client{ID: "client-1", Name: "Cliente"}))
	for id, qty := range items {
		require.NoError(t, store.Items().Create(ctx, &entity.InventoryItem{ID: id, SKU: "SKU-" + id, Name: id, Quantity: qty, WarehouseID: "wh-1"}))
	}
	applier := inventory.NewMovementApplier(store, store.Movements(), logger.Nop())
	return &harness{
		store:   store,
		applier: applier,
		engine:  orders.NewEngine(store, store.Orders(), applier, applier, logger.Nop()),
	}
}

func (h *harness) quantity(t *testing.T, id string) int {
	t.Helper()
	item, err := h.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func (h *harness) movementCount(t *testing.T, ids ...string) int {
	t.Helper()
	n := 0
	for _, id := range ids {
		movs, err := h.store.Movements().ListByItem(context.Background(), id, 0, 0)
		require.NoError(t, err)
		n += len(movs)
	}
	return n
}

func (h *harness) create(t *testing.T, dir entity.MovementType, lines ...orders.LineInput) *entity.Order {
	t.Helper()
	order, err := h.engine.CreateOrder(context.Background(), orders.CreateOrderInput{
		Direction: dir, Lines: lines, ClientID: "client-1", CreatedBy: "u-creator",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_GeneratesCodeAndMergesLines(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	order := h.create(t, entity.MovementTypeOUT,
		orders.LineInput{ItemID: "A", Quantity: 2},
		orders.LineInput{ItemID: "A", Quantity: 3},
	)

	assert.True(t, strings.HasPrefix(order.Code, "ORD-"))
	assert.Len(t, order.Code, len("ORD-")+8)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 5, order.Lines[0].Quantity)
	assert.Equal(t, "ORDER|"+order.ID+"|"+order.Code, order.ScanToken())
	// crear no toca el inventario
	assert.Equal(t, 10, h.quantity(t, "A"))
}

func TestCreateOrder_EmptyLinesPersistsNothing(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.engine.CreateOrder(context.Background(), orders.CreateOrderInput{
		Direction: entity.MovementTypeOUT, CreatedBy: "u-1",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := h.engine.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateOrder_Validation(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 1})
	ctx := context.Background()
	line := []orders.LineInput{{ItemID: "A", Quantity: 1}}

	cases := map[string]orders.CreateOrderInput{
		"direction":    {Direction: "UP", Lines: line, CreatedBy: "u-1"},
		"creator":      {Direction: entity.MovementTypeIN, Lines: line},
		"item id":      {Direction: entity.MovementTypeIN, Lines: []orders.LineInput{{ItemID: " ", Quantity: 1}}, CreatedBy: "u-1"},
		"zero qty":     {Direction: entity.MovementTypeIN, Lines: []orders.LineInput{{ItemID: "A", Quantity: 0}}, CreatedBy: "u-1"},
		"negative qty": {Direction: entity.MovementTypeIN, Lines: []orders.LineInput{{ItemID: "A", Quantity: -1}}, CreatedBy: "u-1"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.engine.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateOrder_QuantityAboveMaximumIsRejected(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 0})
	ctx := context.Background()

	cases := map[string][]orders.LineInput{
		"single line": {{ItemID: "A", Quantity: entity.MaxQuantity + 1}},
		"merged lines": {
			{ItemID: "A", Quantity: entity.MaxQuantity},
			{ItemID: "A", Quantity: entity.MaxQuantity},
		},
		"merged sum one past": {
			{ItemID: "A", Quantity: entity.MaxQuantity - 1},
			{ItemID: "A", Quantity: 2},
		},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.engine.CreateOrder(ctx, orders.CreateOrderInput{Direction: entity.MovementTypeIN, Lines: lines, CreatedBy: "u-1"})
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "lines.quantity", vErr.Field)
		})
	}

	list, err := h.engine.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	order := h.create(t, entity.MovementTypeIN,
		orders.LineInput{ItemID: "A", Quantity: entity.MaxQuantity - 1},
		orders.LineInput{ItemID: "A", Quantity: 1},
	)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, entity.MaxQuantity, order.Lines[0].Quantity)
}

func TestCreateOrder_DuplicateCodeAndUnknownItem(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 1})
	ctx := context.Background()
	in := orders.CreateOrderInput{Code: "ORD-FIXED", Direction: entity.MovementTypeIN, Lines: []orders.LineInput{{ItemID: "A", Quantity: 1}}, CreatedBy: "u-1"}
	_, err := h.engine.CreateOrder(ctx, in)
	require.NoError(t, err)

	_, err = h.engine.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	in.Code = "ORD-OTHER"
	in.Lines = []orders.LineInput{{ItemID: "ghost", Quantity: 1}}
	_, err = h.engine.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	in.Code = "ORD-NOBODY"
	in.Lines = []orders.LineInput{{ItemID: "A", Quantity: 1}}
	in.ClientID = "ghost"
	_, err = h.engine.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestFulfill_AppliesEveryLine(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10, "B": 10})
	order := h.create(t, entity.MovementTypeOUT,
		orders.LineInput{ItemID: "B", Quantity: 4},
		orders.LineInput{ItemID: "A", Quantity: 6},
	)

	done, err := h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "u-2", done.CompletedByUserID)
	assert.Equal(t, 4, h.quantity(t, "A"))
	assert.Equal(t, 6, h.quantity(t, "B"))

	rec, err := h.engine.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Movements, 2)
	assert.Equal(t, 1, rec.Applications)
	for _, m := range rec.Movements {
		assert.Equal(t, order.Code, m.CorrelationToken)
		assert.Equal(t, "u-2", m.UserID)
		assert.Equal(t, "client-1", m.ClientID)
		assert.Equal(t, entity.MovementTypeOUT, m.Type)
	}
}

func TestFulfill_InOrderAddsStock(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 0})
	order := h.create(t, entity.MovementTypeIN, orders.LineInput{ItemID: "A", Quantity: 12})

	_, err := h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, 12, h.quantity(t, "A"))
}

func TestFulfill_PartialShortageRollsBackWholeBatch(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 100, "B": 5})
	order := h.create(t, entity.MovementTypeOUT,
		orders.LineInput{ItemID: "A", Quantity: 10},
		orders.LineInput{ItemID: "B", Quantity: 999999},
	)

	_, err := h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "B", stockErr.ItemID)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 999999, stockErr.Required)

	assert.Equal(t, 100, h.quantity(t, "A"))
	assert.Equal(t, 5, h.quantity(t, "B"))
	assert.Equal(t, 0, h.movementCount(t, "A", "B"))

	got, err := h.engine.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
}

// failingApplier delega en el aplicador real y falla con un error de almacenamiento en la línea n.
type failingApplier struct {
	inner  orders.LineApplier
	failAt int
	calls  int
}

func (f *failingApplier) ApplyInTx(ctx context.Context, movRepo repository.MovementRepository, itemRepo repository.InventoryItemRepository, in inventory.MovementInput, now time.Time) (*entity.Movement, error) {
	f.calls++
	if f.calls == f.failAt {
		return nil, domain.NewStorageError("insert movement", errors.New("connection reset"))
	}
	return f.inner.ApplyInTx(ctx, movRepo, itemRepo, in, now)
}

func TestFulfill_StorageFailureRollsBack(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10, "B": 10})
	order := h.create(t, entity.MovementTypeOUT,
		orders.LineInput{ItemID: "A", Quantity: 1},
		orders.LineInput{ItemID: "B", Quantity: 1},
	)
	engine := orders.NewEngine(h.store, h.store.Orders(), &failingApplier{inner: h.applier, failAt: 2}, h.applier, logger.Nop())

	_, err := engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 10, h.quantity(t, "A"))
	assert.Equal(t, 0, h.movementCount(t, "A", "B"))

	got, _ := h.engine.GetOrder(context.Background(), order.ID)
	assert.Equal(t, entity.OrderStatusPending, got.Status)

	// reintentar la operación completa funciona
	_, err = h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, 9, h.quantity(t, "A"))
}

func TestFulfill_StatusGuards(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	ctx := context.Background()

	_, err := h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: "ghost", CompleterID: "u-2"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: "", CompleterID: "u-2"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cancelled := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 1})
	_, err = h.engine.Cancel(ctx, cancelled.ID, "cliente desistió")
	require.NoError(t, err)
	_, err = h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: cancelled.ID, CompleterID: "u-2", Elevated: true})
	assert.ErrorIs(t, err, domain.ErrOrderTerminal)

	completed := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 2})
	_, err = h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: completed.ID, CompleterID: "u-2"})
	require.NoError(t, err)
	_, err = h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: completed.ID, CompleterID: "u-2"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Equal(t, 8, h.quantity(t, "A"))
}

func TestFulfill_ElevatedReprocessAppliesAgain(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	ctx := context.Background()
	order := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 3})

	_, err := h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.NoError(t, err)
	again, err := h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: order.ID, CompleterID: "admin-1", Elevated: true})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCompleted, again.Status)
	assert.Equal(t, "admin-1", again.CompletedByUserID)
	assert.Equal(t, 4, h.quantity(t, "A"))

	rec, err := h.engine.Reconcile(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Applications)
}

func TestFulfill_ConcurrentFulfillOfSameOrderAppliesOnce(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	order := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 3})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, h.quantity(t, "A"))
}

func TestFulfill_ConcurrentOrdersCompetingForStock(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 5})
	first := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 4})
	second := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 4})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.engine.Fulfill(context.Background(), orders.FulfillInput{OrderID: id, CompleterID: "u-2"})
		}(i, id)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, h.quantity(t, "A"))
}

func TestCancel(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	ctx := context.Background()
	order := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 1})

	_, err := h.engine.Cancel(ctx, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)
	_, err = h.engine.Cancel(ctx, order.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	cancelled, err := h.engine.Cancel(ctx, order.ID, "client declined")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "client declined", cancelled.CancellationReason)
	assert.Equal(t, 0, h.movementCount(t, "A"))
	assert.Equal(t, 10, h.quantity(t, "A"))

	_, err = h.engine.Cancel(ctx, order.ID, "otra vez")
	assert.ErrorIs(t, err, domain.ErrNotPending)

	_, err = h.engine.Cancel(ctx, "ghost", "motivo")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancel_CompletedOrderUntouched(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	ctx := context.Background()
	order := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 2})
	_, err := h.engine.Fulfill(ctx, orders.FulfillInput{OrderID: order.ID, CompleterID: "u-2"})
	require.NoError(t, err)

	_, err = h.engine.Cancel(ctx, order.ID, "tarde")
	assert.ErrorIs(t, err, domain.ErrNotPending)

	got, err := h.engine.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, got.Status)
	assert.Empty(t, got.CancellationReason)
	assert.Equal(t, 8, h.quantity(t, "A"))
}

func TestListOrdersAndLookupByCode(t *testing.T) {
	h := newHarness(t, map[string]int{"A": 10})
	ctx := context.Background()
	pending := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 1})
	other := h.create(t, entity.MovementTypeOUT, orders.LineInput{ItemID: "A", Quantity: 1})
	_, err := h.engine.Cancel(ctx, other.ID, "duplicado")
	require.NoError(t, err)

	list, err := h.engine.ListOrders(ctx, repository.OrderFilter{Status: entity.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	_, err = h.engine.ListOrders(ctx, repository.OrderFilter{Status: "DONE"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	byCode, err := h.engine.GetOrderByCode(ctx, pending.Code)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, byCode.ID)

	_, err = h.engine.GetOrderByCode(ctx, "ORD-NONE")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

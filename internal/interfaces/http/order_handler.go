package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de pedidos (protegido).
type OrderHandler struct {
	engine *orders.Engine
}

// NewOrderHandler construye el handler.
func NewOrderHandler(engine *orders.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// Create godoc
// @Summary      Crear pedido de entrada o salida
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "direction (IN|OUT), lines, client_id"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]orders.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, orders.LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	order, err := h.engine.CreateOrder(c.UserContext(), orders.CreateOrderInput{
		Code:        in.Code,
		Direction:   entity.MovementType(in.Direction),
		Lines:       lines,
		WarehouseID: in.WarehouseID,
		ClientID:    in.ClientID,
		CreatedBy:   userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// Fulfill godoc
// @Summary      Completar pedido aplicando todas sus líneas
// @Description  Solo admin puede reprocesar un pedido ya completado (vuelve a aplicar los movimientos).
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfill [post]
func (h *OrderHandler) Fulfill(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	order, err := h.engine.Fulfill(c.UserContext(), orders.FulfillInput{
		OrderID:     c.Params("id"),
		CompleterID: userID,
		Elevated:    IsElevated(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar pedido pendiente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del pedido"
// @Param        body  body  dto.CancelOrderRequest  true  "reason"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.engine.Cancel(c.UserContext(), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// GetByID obtiene un pedido con sus líneas.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.engine.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// List pedidos más recientes primero. ?status=PENDING|COMPLETED|CANCELLED
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.engine.ListOrders(c.UserContext(), repository.OrderFilter{
		Status: entity.OrderStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, dto.NewOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Movements concilia el pedido con los movimientos que llevan su código.
func (h *OrderHandler) Movements(c *fiber.Ctx) error {
	rec, err := h.engine.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		Order:        dto.NewOrderResponse(rec.Order),
		Movements:    dto.NewMovementList(rec.Movements),
		Applications: rec.Applications,
	})
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/scan"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// ScanHandler expone la lectura de códigos QR del operario de bodega.
type ScanHandler struct {
	resolver *scan.Resolver
}

// NewScanHandler construye el handler.
func NewScanHandler(resolver *scan.Resolver) *ScanHandler {
	return &ScanHandler{resolver: resolver}
}

// Resolve identifica si el token es un pedido o un producto.
// Para pedidos ya completados responde requires_override; solo admin puede continuar.
func (h *ScanHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.resolver.Resolve(c.UserContext(), in.Token)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ScanResolution{Kind: string(res.Kind), RequiresOverride: res.RequiresOverride}
	if res.Order != nil {
		o := dto.NewOrderResponse(res.Order)
		out.Order = &o
	}
	if res.Item != nil {
		it := dto.NewItemResponse(res.Item)
		out.Item = &it
	}
	return c.JSON(out)
}

// Fulfill completa el pedido escaneado.
func (h *ScanHandler) Fulfill(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.resolver.FulfillScanned(c.UserContext(), in.Token, userID, IsElevated(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Movement registra un movimiento ad hoc sobre el producto escaneado.
func (h *ScanHandler) Movement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ScanMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.resolver.ApplyScanned(c.UserContext(), in.Token, entity.MovementType(in.Type), in.Quantity, userID, in.ClientID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y cuerpo ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		stockErr *domain.InsufficientStockError
		valErr   *domain.ValidationError
	)
	switch {
	case errors.As(err, &stockErr):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"item_id":   stockErr.ItemID,
				"available": stockErr.Available,
				"required":  stockErr.Required,
			},
		}
	case errors.As(err, &valErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: valErr.Field + " " + valErr.Reason,
			Details: map[string]any{"field": valErr.Field},
		}
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrReasonRequired):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "REASON_REQUIRED", Message: err.Error()}
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrWarehouseNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrClientNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUnknownToken):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "UNKNOWN_TOKEN", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrOrderTerminal):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ORDER_TERMINAL", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: err.Error()}
	case errors.Is(err, domain.ErrNotPending):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NOT_PENDING", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()}
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORAGE_FAILURE", Message: "fallo de almacenamiento, reintente la operación"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

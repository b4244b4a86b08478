package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation        = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrItemNotFound      = errors.New("producto no encontrado")
	ErrWarehouseNotFound = errors.New("bodega no encontrada")
	ErrOrderNotFound     = errors.New("pedido no encontrado")
	ErrClientNotFound    = errors.New("cliente no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOrderTerminal     = errors.New("el pedido está cancelado")
	ErrAlreadyProcessed  = errors.New("el pedido ya fue procesado")
	ErrNotPending        = errors.New("el pedido no está pendiente")
	ErrReasonRequired    = errors.New("el motivo de cancelación es obligatorio")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrUnknownToken      = errors.New("código no reconocido")
	ErrStorage           = errors.New("fallo de almacenamiento")
)

// ValidationError detalla qué campo de la solicitud es inválido.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientStockError lleva el detalle que necesita el llamador para actuar.
type InsufficientStockError struct {
	ItemID    string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s disponible %d, requerido %d", ErrInsufficientStock, e.ItemID, e.Available, e.Required)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// StorageError envuelve fallos del motor de persistencia (tx abortada, conexión perdida).
// La operación se considera no aplicada y puede reintentarse completa.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError envuelve err con la operación que falló.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage).
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

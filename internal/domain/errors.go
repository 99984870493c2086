package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError reporta exactamente cuánto había disponible frente a lo
// solicitado, para que el terminal pueda mostrarlo y reintentar con seguridad.
type InsufficientStockError struct {
	ProductID int64
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %d, disponible %s, solicitado %s",
		e.ProductID, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock) sobre el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// OperationError marca qué operación del lote falló y cuántas se habían
// procesado antes del rollback. El correlation id es el local_id del cliente.
type OperationError struct {
	LocalID        int64
	OperationType  string
	ProcessedCount int
	Err            error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operación %d (%s) falló: %v", e.LocalID, e.OperationType, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

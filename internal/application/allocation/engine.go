package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/internal/domain/stock"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// Engine mueve stock entre ubicaciones agotando lotes en orden FIFO.
// No abre transacciones: recibe los repositorios ya atados a la tx del lote.
type Engine struct {
	log *logger.Logger
}

// NewEngine construye el motor de asignación.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log.WithComponent("allocation")}
}

// MoveInput parámetros de un movimiento para un solo producto.
type MoveInput struct {
	ProductID        int64
	Quantity         decimal.Decimal
	SourceLocationID *int64 // nil = área virtual de recepción
	TargetLocationID int64
	SourcePallet     *string
	OperationType    string // pallet_transfer conserva el palet en destino
	OrderID          *int64
	ReceiptID        *int64
	DeliveryNote     *string
	EmployeeID       int64
	TransferDate     time.Time
}

// isPutaway el movimiento saca stock del área de recepción hacia un rack,
// ligado a una orden o a una recepción libre concreta.
func (in MoveInput) isPutaway() bool {
	return in.SourceLocationID == nil && (in.OrderID != nil || in.ReceiptID != nil)
}

// sourceKey clave de búsqueda de los lotes de origen. Ubicación, palet y
// orden se fijan null-safe (nil exige NULL en la columna). En una colocación
// de recepción libre el alcance se acota además a esa recepción, para no
// drenar stock de otras recepciones que comparten el área.
func (in MoveInput) sourceKey() stock.LotKey {
	status := entity.LotStatusAvailable
	if in.isPutaway() {
		status = entity.LotStatusReceiving
	}
	receipt := stock.AnyInt64()
	if in.isPutaway() && in.OrderID == nil && in.ReceiptID != nil {
		receipt = stock.EqInt64(*in.ReceiptID)
	}
	return stock.LotKey{
		ProductID: in.ProductID,
		Status:    status,
		Location:  stock.Int64OrNull(in.SourceLocationID),
		Pallet:    stock.StringOrNull(in.SourcePallet),
		Order:     stock.Int64OrNull(in.OrderID),
		Receipt:   receipt,
		Expiry:    stock.AnyTime(),
	}
}

// MoveStock agota qty del origen en orden FIFO, deposita cada porción en el
// destino conservando su procedencia (vencimiento, orden, recepción) y deja
// una fila de auditoría por porción. En una colocación acumula además el
// avance de la línea de orden y, si todo quedó en rack, completa la orden.
func (e *Engine) MoveStock(ctx context.Context, r repository.Set, in MoveInput) error {
	if in.ProductID <= 0 || in.TargetLocationID <= 0 {
		return fmt.Errorf("producto y ubicación destino son obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.Quantity.LessThanOrEqual(entity.Epsilon) {
		return fmt.Errorf("la cantidad debe ser mayor que cero: %w", domain.ErrInvalidInput)
	}

	portions, err := r.Lots.DepleteFIFO(ctx, in.sourceKey(), in.Quantity)
	if err != nil {
		return err
	}

	targetPallet := (*string)(nil)
	if in.OperationType == entity.TransferTypePallet {
		targetPallet = in.SourcePallet
	}

	for _, p := range portions {
		dest := &entity.StockLot{
			ProductID:     in.ProductID,
			LocationID:    &in.TargetLocationID,
			PalletBarcode: targetPallet,
			Status:        entity.LotStatusAvailable,
			ExpiryDate:    p.ExpiryDate,
			OrderID:       p.OrderID,
			ReceiptID:     p.ReceiptID,
		}
		if err := r.Lots.Upsert(ctx, dest, p.Quantity); err != nil {
			return fmt.Errorf("depositar porción en destino: %w", err)
		}

		transfer := &entity.Transfer{
			ProductID:         in.ProductID,
			FromLocationID:    in.SourceLocationID,
			ToLocationID:      in.TargetLocationID,
			Quantity:          p.Quantity,
			FromPalletBarcode: in.SourcePallet,
			PalletBarcode:     targetPallet,
			OrderID:           in.OrderID,
			ReceiptID:         in.ReceiptID,
			DeliveryNote:      in.DeliveryNote,
			EmployeeID:        in.EmployeeID,
			TransferDate:      in.TransferDate,
		}
		if err := r.Transfers.Create(ctx, transfer); err != nil {
			return fmt.Errorf("registrar transferencia: %w", err)
		}
	}

	if in.isPutaway() && in.OrderID != nil {
		if err := e.recordPutaway(ctx, r, *in.OrderID, in.ProductID, in.Quantity); err != nil {
			return err
		}
	}

	e.log.Debug().
		Int64("product_id", in.ProductID).
		Str("quantity", in.Quantity.String()).
		Int("portions", len(portions)).
		Msg("movimiento de stock aplicado")
	return nil
}

// recordPutaway acumula la cantidad colocada sobre la línea de la orden y
// promueve la orden a completada cuando cada línea tiene colocado >= pedido.
func (e *Engine) recordPutaway(ctx context.Context, r repository.Set, orderID, productID int64, qty decimal.Decimal) error {
	line, err := r.Orders.GetLine(ctx, orderID, productID)
	if err != nil {
		return fmt.Errorf("resolver línea de orden: %w", err)
	}
	if line == nil {
		// Producto colocado que no figura en la orden: se mueve el stock pero
		// no hay línea sobre la que contabilizar.
		e.log.Warn().Int64("order_id", orderID).Int64("product_id", productID).
			Msg("colocación sin línea de orden correspondiente")
		return nil
	}
	if err := r.Orders.AddPutaway(ctx, line.ID, qty); err != nil {
		return err
	}
	return e.finalizeIfComplete(ctx, r, orderID)
}

// finalizeIfComplete transición automática hacia adelante: una orden cerrada
// manualmente nunca se toca.
func (e *Engine) finalizeIfComplete(ctx context.Context, r repository.Set, orderID int64) error {
	lines, err := r.Orders.LinesProgress(ctx, orderID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for _, l := range lines {
		if l.Putaway.LessThan(l.Ordered.Sub(entity.Epsilon)) {
			return nil
		}
	}

	current, err := r.Orders.GetStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if current == entity.OrderStatusClosed || current == entity.OrderStatusCompleted {
		return nil
	}
	if _, err := r.Orders.UpdateStatus(ctx, orderID, entity.OrderStatusCompleted); err != nil {
		return err
	}
	e.log.Info().Int64("order_id", orderID).Msg("orden completada: todas las líneas colocadas")
	return nil
}

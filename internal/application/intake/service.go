package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// Service registra recepciones de mercancía y cierres manuales de órdenes.
// No abre transacciones: recibe los repositorios ya atados a la tx del lote.
type Service struct {
	log *logger.Logger
}

// NewService construye el servicio de recepción.
func NewService(log *logger.Logger) *Service {
	return &Service{log: log.WithComponent("intake")}
}

// ReceiptInput cabecera y líneas de una recepción. OrderID nil = recepción
// libre, que exige DeliveryNote. La bodega se resuelve desde el empleado.
type ReceiptInput struct {
	EmployeeID   int64
	OrderID      *int64
	DeliveryNote *string
	ReceiptDate  *time.Time
	Items        []ReceiptItemInput
}

// ReceiptItemInput línea recibida.
type ReceiptItemInput struct {
	ProductID     int64
	Quantity      decimal.Decimal
	PalletBarcode *string
	ExpiryDate    *time.Time
}

// ReceiptResult id generado de la recepción.
type ReceiptResult struct {
	ReceiptID int64
}

// CreateReceipt valida la entrada, crea cabecera y líneas, y por cada línea
// crea o aumenta un lote en estado receiving en el área virtual (location
// NULL) etiquetado con la recepción y, si aplica, la orden. Si hay orden,
// recalcula su estado al final.
func (s *Service) CreateReceipt(ctx context.Context, r repository.Set, in ReceiptInput) (*ReceiptResult, error) {
	if in.EmployeeID <= 0 || len(in.Items) == 0 {
		return nil, fmt.Errorf("recepción sin empleado o sin líneas: %w", domain.ErrInvalidInput)
	}
	if in.OrderID == nil && (in.DeliveryNote == nil || *in.DeliveryNote == "") {
		return nil, fmt.Errorf("recepción libre sin número de albarán: %w", domain.ErrInvalidInput)
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 || item.Quantity.LessThanOrEqual(entity.Epsilon) {
			return nil, fmt.Errorf("línea con producto o cantidad inválida: %w", domain.ErrInvalidInput)
		}
	}

	employee, err := r.Employees.GetByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("resolver empleado: %w", err)
	}
	if employee == nil {
		return nil, fmt.Errorf("empleado %d sin bodega asignada: %w", in.EmployeeID, domain.ErrNotFound)
	}

	receiptDate := time.Now().UTC()
	if in.ReceiptDate != nil {
		receiptDate = *in.ReceiptDate
	}
	header := &entity.GoodsReceipt{
		OrderID:      in.OrderID,
		WarehouseID:  employee.WarehouseID,
		EmployeeID:   in.EmployeeID,
		DeliveryNote: in.DeliveryNote,
		ReceiptDate:  receiptDate,
	}
	if err := r.Receipts.CreateHeader(ctx, header); err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		product, err := r.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolver producto: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("producto %d desconocido: %w", item.ProductID, domain.ErrNotFound)
		}

		line := &entity.GoodsReceiptItem{
			ReceiptID:     header.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PalletBarcode: item.PalletBarcode,
			ExpiryDate:    item.ExpiryDate,
		}
		if err := r.Receipts.CreateItem(ctx, line); err != nil {
			return nil, err
		}

		lot := &entity.StockLot{
			ProductID:     item.ProductID,
			LocationID:    nil, // área virtual de recepción
			PalletBarcode: item.PalletBarcode,
			Status:        entity.LotStatusReceiving,
			ExpiryDate:    item.ExpiryDate,
			OrderID:       in.OrderID,
			ReceiptID:     &header.ID,
		}
		if err := r.Lots.Upsert(ctx, lot, item.Quantity); err != nil {
			return nil, fmt.Errorf("acumular lote de recepción: %w", err)
		}
	}

	if in.OrderID != nil {
		if err := s.promoteIfReceived(ctx, r, *in.OrderID); err != nil {
			return nil, err
		}
	}

	s.log.Info().Int64("receipt_id", header.ID).Int("items", len(in.Items)).
		Int64("employee_id", in.EmployeeID).Msg("recepción registrada")
	return &ReceiptResult{ReceiptID: header.ID}, nil
}

// promoteIfReceived avanza la orden de abierta a parcial cuando alguna línea
// ya tiene cantidad recibida. La recepción nunca completa la orden: eso lo
// hace la colocación en rack.
func (s *Service) promoteIfReceived(ctx context.Context, r repository.Set, orderID int64) error {
	lines, err := r.Orders.LinesProgress(ctx, orderID)
	if err != nil {
		return err
	}
	anyReceived := false
	for _, l := range lines {
		if l.Received.GreaterThan(entity.Epsilon) {
			anyReceived = true
			break
		}
	}
	if !anyReceived {
		return nil
	}

	current, err := r.Orders.GetStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if current != entity.OrderStatusOpen {
		return nil
	}
	_, err = r.Orders.UpdateStatus(ctx, orderID, entity.OrderStatusPartial)
	return err
}

// ForceCloseOrder cierre manual explícito: fija el estado closed sin mirar el
// avance de recepción ni de colocación.
func (s *Service) ForceCloseOrder(ctx context.Context, r repository.Set, orderID int64) error {
	if orderID <= 0 {
		return fmt.Errorf("siparis_id es obligatorio: %w", domain.ErrInvalidInput)
	}
	rows, err := r.Orders.UpdateStatus(ctx, orderID, entity.OrderStatusClosed)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("orden %d no existe: %w", orderID, domain.ErrNotFound)
	}
	s.log.Info().Int64("order_id", orderID).Msg("orden cerrada manualmente")
	return nil
}

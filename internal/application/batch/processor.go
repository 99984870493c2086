package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Terminal-wms/internal/application/allocation"
	"github.com/jhoicas/Terminal-wms/internal/application/dto"
	"github.com/jhoicas/Terminal-wms/internal/application/intake"
	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/internal/infrastructure/metrics"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// Processor ejecuta un lote ordenado de operaciones del terminal dentro de
// una única transacción serializable. Una operación fallida revierte el lote
// completo, registros de idempotencia incluidos; una clave confirmada en un
// lote anterior responde su resultado cacheado sin re-ejecutar nada.
type Processor struct {
	tx       TxRunner
	engine   *allocation.Engine
	intake   *intake.Service
	erp      ERPGateway
	notifier Notifier
	log      *logger.Logger
}

// NewProcessor construye el procesador de lotes.
func NewProcessor(tx TxRunner, engine *allocation.Engine, intakeSvc *intake.Service,
	erp ERPGateway, notifier Notifier, log *logger.Logger) *Processor {
	return &Processor{
		tx:       tx,
		engine:   engine,
		intake:   intakeSvc,
		erp:      erp,
		notifier: notifier,
		log:      log.WithComponent("batch"),
	}
}

// pendingReceipt recepción confirmada en este lote, pendiente de empujar al
// ERP después del commit.
type pendingReceipt struct {
	header entity.GoodsReceipt
	items  []entity.GoodsReceiptItem
}

// Process ejecuta el lote. Devuelve los resultados en el orden de entrada o,
// si cualquier operación falla, un OperationError con el local_id culpable y
// cuántas operaciones iban procesadas antes del rollback.
func (p *Processor) Process(ctx context.Context, ops []dto.Operation) (*dto.BatchResponse, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("lote sin operaciones: %w", domain.ErrInvalidInput)
	}

	var results []dto.OperationResult
	var created []pendingReceipt

	err := p.tx.RunSerializable(ctx, func(r repository.Set) error {
		results = results[:0]
		created = created[:0]

		for _, op := range ops {
			if op.LocalID == 0 || op.IdempotencyKey == "" {
				return &domain.OperationError{
					LocalID:        op.LocalID,
					OperationType:  op.Type,
					ProcessedCount: len(results),
					Err:            fmt.Errorf("local_id e idempotency_key son obligatorios: %w", domain.ErrInvalidInput),
				}
			}

			cached, err := r.Idempotency.Get(ctx, op.IdempotencyKey)
			if err != nil {
				return &domain.OperationError{LocalID: op.LocalID, OperationType: op.Type,
					ProcessedCount: len(results), Err: err}
			}
			if cached != nil {
				metrics.IdempotentReplays.Inc()
				p.log.Info().Str("key", op.IdempotencyKey).Int64("local_id", op.LocalID).
					Msg("operación ya procesada, respondiendo resultado cacheado")
				results = append(results, dto.OperationResult{
					LocalID: op.LocalID,
					Result:  json.RawMessage(cached.ResponseBody),
				})
				continue
			}

			result, opErr := p.dispatch(ctx, r, op, &created)
			if opErr != nil {
				// El fallo también se asienta bajo la clave. El rollback del
				// lote lo descarta junto con el resto de escrituras.
				body, _ := json.Marshal(map[string]any{"status": "error", "message": opErr.Error()})
				_ = r.Idempotency.Create(ctx, &entity.ProcessedRequest{
					IdempotencyKey: op.IdempotencyKey,
					ResponseCode:   500,
					ResponseBody:   body,
				})
				return &domain.OperationError{LocalID: op.LocalID, OperationType: op.Type,
					ProcessedCount: len(results), Err: opErr}
			}

			if err := r.Idempotency.Create(ctx, &entity.ProcessedRequest{
				IdempotencyKey: op.IdempotencyKey,
				ResponseCode:   200,
				ResponseBody:   result,
			}); err != nil {
				return &domain.OperationError{LocalID: op.LocalID, OperationType: op.Type,
					ProcessedCount: len(results), Err: err}
			}

			metrics.OperationsProcessed.WithLabelValues(op.Type).Inc()
			results = append(results, dto.OperationResult{LocalID: op.LocalID, Result: result})
		}
		return nil
	})

	if err != nil {
		metrics.BatchesFailed.Inc()
		p.alert(err)
		return nil, err
	}

	metrics.BatchesProcessed.Inc()
	p.log.Info().Int("operations", len(results)).Msg("lote confirmado")

	// Push al ERP fuera de la transacción: la recepción ya está confirmada y
	// un fallo aquí no la revierte.
	for i := range created {
		p.erp.NotifyReceiptCreated(ctx, &created[i].header, created[i].items)
	}

	return &dto.BatchResponse{Success: true, Results: results}, nil
}

func (p *Processor) dispatch(ctx context.Context, r repository.Set, op dto.Operation, created *[]pendingReceipt) (json.RawMessage, error) {
	switch op.Type {
	case dto.OpGoodsReceipt:
		return p.runGoodsReceipt(ctx, r, op.Data, created)
	case dto.OpInventoryTransfer:
		return p.runInventoryTransfer(ctx, r, op.Data)
	case dto.OpForceCloseOrder:
		return p.runForceClose(ctx, r, op.Data)
	default:
		return nil, fmt.Errorf("tipo de operación desconocido %q: %w", op.Type, domain.ErrInvalidInput)
	}
}

func (p *Processor) runGoodsReceipt(ctx context.Context, r repository.Set, raw json.RawMessage, created *[]pendingReceipt) (json.RawMessage, error) {
	var data dto.GoodsReceiptData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("payload de recepción inválido: %w", domain.ErrInvalidInput)
	}

	in := intake.ReceiptInput{
		EmployeeID:   data.Header.EmployeeID,
		OrderID:      data.Header.OrderID,
		DeliveryNote: data.Header.DeliveryNote,
		ReceiptDate:  data.Header.ReceiptDate,
	}
	for _, item := range data.Items {
		in.Items = append(in.Items, intake.ReceiptItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PalletBarcode: item.PalletBarcode,
			ExpiryDate:    item.ExpiryDate,
		})
	}

	res, err := p.intake.CreateReceipt(ctx, r, in)
	if err != nil {
		return nil, err
	}

	receiptDate := time.Now().UTC()
	if data.Header.ReceiptDate != nil {
		receiptDate = *data.Header.ReceiptDate
	}
	pending := pendingReceipt{header: entity.GoodsReceipt{
		ID:           res.ReceiptID,
		OrderID:      data.Header.OrderID,
		EmployeeID:   data.Header.EmployeeID,
		DeliveryNote: data.Header.DeliveryNote,
		ReceiptDate:  receiptDate,
	}}
	for _, item := range data.Items {
		pending.items = append(pending.items, entity.GoodsReceiptItem{
			ReceiptID: res.ReceiptID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	*created = append(*created, pending)

	return json.Marshal(map[string]any{"status": "success", "receipt_id": res.ReceiptID})
}

func (p *Processor) runInventoryTransfer(ctx context.Context, r repository.Set, raw json.RawMessage) (json.RawMessage, error) {
	var data dto.InventoryTransferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("payload de transferencia inválido: %w", domain.ErrInvalidInput)
	}
	if len(data.Items) == 0 {
		return nil, fmt.Errorf("transferencia sin líneas: %w", domain.ErrInvalidInput)
	}

	// Los terminales antiguos mandan 0 para el área de recepción.
	source := data.Header.SourceLocationID
	if source != nil && *source == 0 {
		source = nil
	}
	transferDate := time.Now().UTC()
	if data.Header.TransferDate != nil {
		transferDate = *data.Header.TransferDate
	}

	for _, item := range data.Items {
		err := p.engine.MoveStock(ctx, r, allocation.MoveInput{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			SourceLocationID: source,
			TargetLocationID: data.Header.TargetLocationID,
			SourcePallet:     item.PalletBarcode,
			OperationType:    data.Header.OperationType,
			OrderID:          data.Header.OrderID,
			ReceiptID:        data.Header.ReceiptID,
			DeliveryNote:     data.Header.DeliveryNote,
			EmployeeID:       data.Header.EmployeeID,
			TransferDate:     transferDate,
		})
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(map[string]any{"status": "success"})
}

func (p *Processor) runForceClose(ctx context.Context, r repository.Set, raw json.RawMessage) (json.RawMessage, error) {
	var data dto.ForceCloseOrderData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("payload de cierre inválido: %w", domain.ErrInvalidInput)
	}
	if err := p.intake.ForceCloseOrder(ctx, r, data.OrderID); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"status": "success"})
}

// alert registra y notifica el fallo del lote. Las alertas nunca bloquean.
func (p *Processor) alert(err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		metrics.InsufficientStockRejections.Inc()
		p.notifier.InsufficientStock(stockErr.ProductID,
			stockErr.Available.String(), stockErr.Requested.String())
	}

	var opErr *domain.OperationError
	if errors.As(err, &opErr) {
		p.log.Error().Err(opErr.Err).Int64("local_id", opErr.LocalID).
			Str("type", opErr.OperationType).Int("processed", opErr.ProcessedCount).
			Msg("lote revertido")
		p.notifier.BatchFailed(opErr.LocalID, opErr.OperationType, opErr.Err.Error())
		return
	}
	p.log.Error().Err(err).Msg("lote revertido")
}

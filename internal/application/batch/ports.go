package batch

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

// TxRunner ejecuta un callback con repositorios atados a una transacción
// serializable; lo implementa el runner de postgres.
type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(repos repository.Set) error) error
}

// Notifier sink de alertas best-effort.
type Notifier interface {
	BatchFailed(localID int64, opType, details string)
	InsufficientStock(productID int64, available, requested string)
}

// ERPGateway push de recepciones confirmadas; se invoca después del commit y
// su resultado no afecta al lote.
type ERPGateway interface {
	NotifyReceiptCreated(ctx context.Context, receipt *entity.GoodsReceipt, items []entity.GoodsReceiptItem)
}

package repository

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// ReceiptRepository cabeceras y líneas de recepciones de mercancía.
type ReceiptRepository interface {
	CreateHeader(ctx context.Context, receipt *entity.GoodsReceipt) error
	CreateItem(ctx context.Context, item *entity.GoodsReceiptItem) error

	// ListFreeForPutaway recepciones libres (sin orden) con stock aún en el
	// área de recepción, más recientes primero.
	ListFreeForPutaway(ctx context.Context, warehouseID int64) ([]entity.FreeReceiptSummary, error)
}

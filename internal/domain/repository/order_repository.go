package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// OrderRepository órdenes de compra y su contabilidad de recepción/colocación.
type OrderRepository interface {
	GetStatus(ctx context.Context, orderID int64) (int, error)

	// UpdateStatus devuelve cuántas filas cambió (0 = orden inexistente).
	UpdateStatus(ctx context.Context, orderID int64, status int) (int64, error)

	GetLine(ctx context.Context, orderID, productID int64) (*entity.OrderLine, error)

	// LinesProgress líneas de la orden con lo pedido, lo recibido (suma de
	// goods_receipt_items) y lo colocado (putaway_status).
	LinesProgress(ctx context.Context, orderID int64) ([]entity.OrderLineProgress, error)

	// AddPutaway acumula qty sobre la línea (upsert-add).
	AddPutaway(ctx context.Context, orderLineID int64, qty decimal.Decimal) error
}

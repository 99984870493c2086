package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recepciones de mercancía sobre PostgreSQL (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// CreateHeader inserta la cabecera y deja el id generado en receipt.ID.
func (r *ReceiptRepo) CreateHeader(ctx context.Context, receipt *entity.GoodsReceipt) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO goods_receipts (siparis_id, warehouse_id, employee_id, delivery_note_number, receipt_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING goods_receipt_id`,
		receipt.OrderID, receipt.WarehouseID, receipt.EmployeeID, receipt.DeliveryNote, receipt.ReceiptDate,
	).Scan(&receipt.ID)
	if err != nil {
		return fmt.Errorf("create receipt header: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de recepción.
func (r *ReceiptRepo) CreateItem(ctx context.Context, item *entity.GoodsReceiptItem) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO goods_receipt_items (receipt_id, urun_id, quantity_received, pallet_barcode, expiry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id`,
		item.ReceiptID, item.ProductID, item.Quantity, item.PalletBarcode, item.ExpiryDate,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create receipt item: %w", err)
	}
	return nil
}

// ListFreeForPutaway recepciones libres con stock todavía en el área de
// recepción, para la pantalla de colocación del terminal.
func (r *ReceiptRepo) ListFreeForPutaway(ctx context.Context, warehouseID int64) ([]entity.FreeReceiptSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT gr.goods_receipt_id, gr.delivery_note_number, gr.receipt_date,
		       e.first_name, e.last_name, COUNT(DISTINCT ist.urun_id) AS item_count
		FROM goods_receipts gr
		JOIN inventory_stock ist ON ist.goods_receipt_id = gr.goods_receipt_id
		JOIN employees e ON e.id = gr.employee_id
		WHERE gr.siparis_id IS NULL
		  AND ist.stock_status = $1
		  AND gr.warehouse_id = $2
		GROUP BY gr.goods_receipt_id, gr.delivery_note_number, gr.receipt_date, e.first_name, e.last_name
		ORDER BY gr.receipt_date DESC`,
		entity.LotStatusReceiving, warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list free receipts: %w", err)
	}
	defer rows.Close()

	var list []entity.FreeReceiptSummary
	for rows.Next() {
		var s entity.FreeReceiptSummary
		if err := rows.Scan(&s.ReceiptID, &s.DeliveryNote, &s.ReceiptDate,
			&s.FirstName, &s.LastName, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("scan free receipt: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

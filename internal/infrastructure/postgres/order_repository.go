package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes de compra sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetStatus devuelve el estado actual de la orden.
func (r *OrderRepo) GetStatus(ctx context.Context, orderID int64) (int, error) {
	var status int
	err := r.q.QueryRow(ctx,
		"SELECT status FROM satin_alma_siparis_fis WHERE id = $1", orderID,
	).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get order status: %w", err)
	}
	return status, nil
}

// UpdateStatus cambia el estado y devuelve cuántas filas afectó (0 = no existe).
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID int64, status int) (int64, error) {
	tag, err := r.q.Exec(ctx,
		"UPDATE satin_alma_siparis_fis SET status = $1, updated_at = now() WHERE id = $2",
		status, orderID,
	)
	if err != nil {
		return 0, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetLine busca la línea de la orden para un producto. Devuelve nil, nil si no existe.
func (r *OrderRepo) GetLine(ctx context.Context, orderID, productID int64) (*entity.OrderLine, error) {
	var l entity.OrderLine
	err := r.q.QueryRow(ctx, `
		SELECT id, siparis_id, urun_id, miktar, birim, updated_at
		FROM satin_alma_siparis_fis_satir
		WHERE siparis_id = $1 AND urun_id = $2`,
		orderID, productID,
	).Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Unit, &l.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}
	return &l, nil
}

// LinesProgress devuelve cada línea con lo pedido, lo recibido y lo colocado,
// para recalcular el estado de la orden.
func (r *OrderRepo) LinesProgress(ctx context.Context, orderID int64) ([]entity.OrderLineProgress, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.id, s.miktar,
		       COALESCE((SELECT SUM(gri.quantity_received)
		                 FROM goods_receipt_items gri
		                 JOIN goods_receipts gr ON gr.goods_receipt_id = gri.receipt_id
		                 WHERE gr.siparis_id = s.siparis_id AND gri.urun_id = s.urun_id), 0) AS received,
		       COALESCE(w.putaway_quantity, 0) AS putaway
		FROM satin_alma_siparis_fis_satir s
		LEFT JOIN wms_putaway_status w ON w.satinalmasiparisfissatir_id = s.id
		WHERE s.siparis_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("lines progress: %w", err)
	}
	defer rows.Close()

	var lines []entity.OrderLineProgress
	for rows.Next() {
		var p entity.OrderLineProgress
		if err := rows.Scan(&p.LineID, &p.Ordered, &p.Received, &p.Putaway); err != nil {
			return nil, fmt.Errorf("scan line progress: %w", err)
		}
		lines = append(lines, p)
	}
	return lines, rows.Err()
}

// AddPutaway acumula qty sobre la línea (upsert-add).
func (r *OrderRepo) AddPutaway(ctx context.Context, orderLineID int64, qty decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO wms_putaway_status (satinalmasiparisfissatir_id, putaway_quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (satinalmasiparisfissatir_id)
		DO UPDATE SET putaway_quantity = wms_putaway_status.putaway_quantity + EXCLUDED.putaway_quantity,
		              updated_at = now()`,
		orderLineID, qty,
	)
	if err != nil {
		return fmt.Errorf("add putaway: %w", err)
	}
	return nil
}

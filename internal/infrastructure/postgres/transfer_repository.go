package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo auditoría de movimientos sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta un registro de transferencia. Las filas son inmutables:
// una por porción movida, nunca se actualizan ni se borran.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory_transfers
			(urun_id, from_location_id, to_location_id, quantity, from_pallet_barcode, pallet_barcode,
			 siparis_id, goods_receipt_id, delivery_note_number, employee_id, transfer_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING id`,
		t.ProductID, t.FromLocationID, t.ToLocationID, t.Quantity, t.FromPalletBarcode, t.PalletBarcode,
		t.OrderID, t.ReceiptID, t.DeliveryNote, t.EmployeeID, t.TransferDate,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación de transferencia del terminal.
const (
	TransferTypePallet = "pallet_transfer" // el palet completo viaja con su código
	TransferTypeBox    = "box_transfer"    // cajas sueltas, el destino queda sin palet
)

// Transfer es el registro de auditoría de un movimiento a nivel de lote.
// Inmutable: se inserta una fila por porción movida y nunca se actualiza.
type Transfer struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"urun_id"`
	FromLocationID    *int64          `json:"from_location_id"` // NULL = área de recepción
	ToLocationID      int64           `json:"to_location_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	FromPalletBarcode *string         `json:"from_pallet_barcode"`
	PalletBarcode     *string         `json:"pallet_barcode"` // palet en destino
	OrderID           *int64          `json:"siparis_id"`
	ReceiptID         *int64          `json:"goods_receipt_id"`
	DeliveryNote      *string         `json:"delivery_note_number"`
	EmployeeID        int64           `json:"employee_id"`
	TransferDate      time.Time       `json:"transfer_date"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

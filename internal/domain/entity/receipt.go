package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoodsReceipt cabecera de una recepción de mercancía. Si OrderID es NULL se
// trata de una recepción libre y DeliveryNote es obligatorio.
type GoodsReceipt struct {
	ID           int64      `json:"goods_receipt_id"`
	OrderID      *int64     `json:"siparis_id"`
	WarehouseID  int64      `json:"warehouse_id"`
	EmployeeID   int64      `json:"employee_id"`
	DeliveryNote *string    `json:"delivery_note_number"`
	ReceiptDate  time.Time  `json:"receipt_date"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GoodsReceiptItem línea de una recepción; cada una crea o aumenta un lote
// en estado receiving en el área virtual.
type GoodsReceiptItem struct {
	ID            int64           `json:"id"`
	ReceiptID     int64           `json:"receipt_id"`
	ProductID     int64           `json:"urun_id"`
	Quantity      decimal.Decimal `json:"quantity_received"`
	PalletBarcode *string         `json:"pallet_barcode"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FreeReceiptSummary resumen de recepciones libres pendientes de colocación,
// para la pantalla de putaway del terminal.
type FreeReceiptSummary struct {
	ReceiptID    int64     `json:"goods_receipt_id"`
	DeliveryNote string    `json:"delivery_note_number"`
	ReceiptDate  time.Time `json:"receipt_date"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	ItemCount    int       `json:"item_count"`
}

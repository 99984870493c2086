package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de stock.
const (
	LotStatusReceiving = "receiving" // en el área virtual de recepción (location NULL)
	LotStatusAvailable = "available" // colocado en un rack, disponible para operar
)

// Epsilon tolerancia para comparaciones de cantidades en coma flotante.
// Ningún lote persistido puede quedar con cantidad <= Epsilon.
var Epsilon = decimal.NewFromFloat(0.001)

// StockLot es una fila del libro de inventario: cantidad de un producto que
// comparte ubicación, palet, estado, vencimiento y procedencia. La combinación
// de esos campos es única; las adiciones se funden en la fila existente.
type StockLot struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"urun_id"`
	LocationID    *int64          `json:"location_id"` // NULL = área virtual de recepción
	PalletBarcode *string         `json:"pallet_barcode"`
	Status        string          `json:"stock_status"`
	Quantity      decimal.Decimal `json:"quantity"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	OrderID       *int64          `json:"siparis_id"`        // orden de compra de origen
	ReceiptID     *int64          `json:"goods_receipt_id"`  // recepción de origen
	UpdatedAt     time.Time       `json:"updated_at"`
}

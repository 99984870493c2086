package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. La transición automática solo avanza:
// open -> partial (alguna línea recibida) -> completed (todo colocado en rack).
// closed es exclusivamente manual (forceCloseOrder) y no participa del avance.
const (
	OrderStatusOpen      = 0
	OrderStatusPartial   = 1
	OrderStatusClosed    = 2 // cierre manual
	OrderStatusCompleted = 3 // colocación completa
)

// PurchaseOrder orden de compra descargada del ERP y trabajada por el terminal.
type PurchaseOrder struct {
	ID        int64     `json:"id"`
	BranchID  int64     `json:"branch_id"`
	Number    string    `json:"po_id"`
	OrderDate time.Time `json:"tarih"`
	Status    int       `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderLine línea de la orden: cantidad pedida por producto.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"siparis_id"`
	ProductID int64           `json:"urun_id"`
	Quantity  decimal.Decimal `json:"miktar"`
	Unit      string          `json:"birim"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PutawayStatus cantidad ya colocada en rack por línea de orden. Contabilidad
// derivada: nunca es dueña del stock, solo acumula lo transferido.
type PutawayStatus struct {
	ID          int64           `json:"id"`
	OrderLineID int64           `json:"satinalmasiparisfissatir_id"`
	Quantity    decimal.Decimal `json:"putaway_quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderLineProgress línea con sus cantidades recibida y colocada, para
// recalcular el estado de la orden.
type OrderLineProgress struct {
	LineID   int64
	Ordered  decimal.Decimal
	Received decimal.Decimal
	Putaway  decimal.Decimal
}

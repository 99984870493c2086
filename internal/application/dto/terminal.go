package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación aceptados en un lote del terminal.
const (
	OpGoodsReceipt      = "goodsReceipt"
	OpInventoryTransfer = "inventoryTransfer"
	OpForceCloseOrder   = "forceCloseOrder"
)

// BatchRequest lote ordenado de operaciones subidas por el terminal.
type BatchRequest struct {
	Operations []Operation `json:"operations"`
}

// Operation una operación del lote. LocalID es el id de correlación del
// cliente; IdempotencyKey garantiza a-lo-sumo-una ejecución entre reintentos.
type Operation struct {
	LocalID        int64           `json:"local_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
}

// OperationResult resultado de una operación, cacheado o recién calculado.
type OperationResult struct {
	LocalID int64           `json:"local_id"`
	Result  json.RawMessage `json:"result"`
}

// BatchResponse respuesta cuando el lote completo se confirmó.
type BatchResponse struct {
	Success bool              `json:"success"`
	Results []OperationResult `json:"results"`
}

// BatchFailureResponse respuesta cuando el lote se revirtió completo.
type BatchFailureResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	Details        string `json:"details,omitempty"`
	ProcessedCount int    `json:"processed_count"`
}

// GoodsReceiptData payload de una operación goodsReceipt.
type GoodsReceiptData struct {
	Header ReceiptHeader `json:"header"`
	Items  []ReceiptItem `json:"items"`
}

// ReceiptHeader cabecera de la recepción. OrderID nil = recepción libre, que
// exige DeliveryNote. La bodega se resuelve en el servidor desde el empleado.
type ReceiptHeader struct {
	EmployeeID   int64      `json:"employee_id"`
	OrderID      *int64     `json:"siparis_id"`
	DeliveryNote *string    `json:"delivery_note_number"`
	ReceiptDate  *time.Time `json:"receipt_date"`
}

// ReceiptItem línea recibida.
type ReceiptItem struct {
	ProductID     int64           `json:"urun_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PalletBarcode *string         `json:"pallet_barcode"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
}

// InventoryTransferData payload de una operación inventoryTransfer.
type InventoryTransferData struct {
	Header TransferHeader `json:"header"`
	Items  []TransferItem `json:"items"`
}

// TransferHeader cabecera del movimiento. SourceLocationID nil o 0 significa
// el área virtual de recepción. OperationType pallet_transfer conserva el
// código de palet en destino; box_transfer lo descarta.
type TransferHeader struct {
	EmployeeID       int64      `json:"employee_id"`
	SourceLocationID *int64     `json:"source_location_id"`
	TargetLocationID int64      `json:"target_location_id"`
	OperationType    string     `json:"operation_type"`
	OrderID          *int64     `json:"siparis_id"`
	ReceiptID        *int64     `json:"goods_receipt_id"`
	DeliveryNote     *string    `json:"delivery_note_number"`
	TransferDate     *time.Time `json:"transfer_date"`
}

// TransferItem producto y cantidad a mover; PalletBarcode es el palet de origen.
type TransferItem struct {
	ProductID     int64           `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PalletBarcode *string         `json:"pallet_id"`
}

// ForceCloseOrderData payload de una operación forceCloseOrder.
type ForceCloseOrderData struct {
	OrderID int64 `json:"siparis_id"`
}

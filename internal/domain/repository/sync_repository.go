package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// SyncFilter filtro común de las lecturas de sincronización.
// Cursor nil = snapshot completo. Limit 0 = sin paginación; con paginación el
// orden es determinista por clave primaria.
type SyncFilter struct {
	Cursor *time.Time
	Limit  int
	Offset int
}

// SyncRepository lecturas de delta por entidad para la descarga del terminal.
// El alcance (scope) de cada tabla se calcula sobre TODAS las filas que
// pertenecen a la bodega, no solo las cambiadas; el cursor filtra únicamente
// qué filas se entregan. Así un hijo modificado de un padre sin cambios nunca
// se pierde.
type SyncRepository interface {
	// BranchIDForWarehouse devuelve 0 si la bodega no existe.
	BranchIDForWarehouse(ctx context.Context, warehouseID int64) (int64, error)

	Products(ctx context.Context, f SyncFilter) ([]entity.Product, error)
	Shelfs(ctx context.Context, warehouseID int64, f SyncFilter) ([]entity.Shelf, error)
	Employees(ctx context.Context, warehouseID int64, f SyncFilter) ([]entity.Employee, error)

	// Órdenes de la sucursal aún trabajables (abiertas o parciales).
	Orders(ctx context.Context, branchID int64, f SyncFilter) ([]entity.PurchaseOrder, error)
	OpenOrderIDs(ctx context.Context, branchID int64) ([]int64, error)

	OrderLines(ctx context.Context, orderIDs []int64, f SyncFilter) ([]entity.OrderLine, error)
	OrderLineIDs(ctx context.Context, orderIDs []int64) ([]int64, error)
	PutawayStatuses(ctx context.Context, orderLineIDs []int64, f SyncFilter) ([]entity.PutawayStatus, error)

	// Recepciones de las órdenes dadas más las libres de la bodega.
	Receipts(ctx context.Context, orderIDs []int64, warehouseID int64, f SyncFilter) ([]entity.GoodsReceipt, error)
	ReceiptIDsForScope(ctx context.Context, orderIDs []int64, warehouseID int64) ([]int64, error)
	ReceiptItems(ctx context.Context, receiptIDs []int64, f SyncFilter) ([]entity.GoodsReceiptItem, error)

	// Lotes en los racks de la bodega, en el área de recepción (location NULL)
	// o ligados a las recepciones del alcance.
	Lots(ctx context.Context, shelfIDs []int64, receiptIDs []int64, f SyncFilter) ([]entity.StockLot, error)
	ShelfIDs(ctx context.Context, warehouseID int64) ([]int64, error)
}

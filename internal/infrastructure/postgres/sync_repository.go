package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.SyncRepository = (*SyncRepo)(nil)

// SyncRepo lecturas de delta para la descarga del terminal. Solo consultas;
// las escrituras pasan por los repositorios de cada entidad.
type SyncRepo struct {
	q Querier
}

// NewSyncRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncRepository(q Querier) *SyncRepo {
	return &SyncRepo{q: q}
}

// syncClauses agrega al SQL el filtro de cursor y la paginación. Los
// argumentos nuevos se añaden a args y se devuelve la lista completa.
// El orden por clave primaria hace la paginación determinista.
func syncClauses(sb *strings.Builder, args []any, f repository.SyncFilter, pkCol string) []any {
	if f.Cursor != nil {
		args = append(args, *f.Cursor)
		fmt.Fprintf(sb, " AND updated_at > $%d", len(args))
	}
	fmt.Fprintf(sb, " ORDER BY %s", pkCol)
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		fmt.Fprintf(sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return args
}

// BranchIDForWarehouse devuelve 0 si la bodega no existe.
func (r *SyncRepo) BranchIDForWarehouse(ctx context.Context, warehouseID int64) (int64, error) {
	var branchID int64
	err := r.q.QueryRow(ctx,
		"SELECT branch_id FROM warehouses WHERE id = $1", warehouseID,
	).Scan(&branchID)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("branch for warehouse: %w", err)
	}
	return branchID, nil
}

// Products catálogo completo de productos activos; no se filtra por bodega.
func (r *SyncRepo) Products(ctx context.Context, f repository.SyncFilter) ([]entity.Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT "UrunId", "StokKodu", "UrunAdi", "Barcode1", aktif, updated_at
		FROM urunler WHERE aktif`)
	args := syncClauses(&sb, nil, f, `"UrunId"`)

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync products: %w", err)
	}
	defer rows.Close()

	var list []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Barcode, &p.Active, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Shelfs racks de la bodega.
func (r *SyncRepo) Shelfs(ctx context.Context, warehouseID int64, f repository.SyncFilter) ([]entity.Shelf, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, warehouse_id, code, name, is_active, updated_at
		FROM shelfs WHERE warehouse_id = $1`)
	args := syncClauses(&sb, []any{warehouseID}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync shelfs: %w", err)
	}
	defer rows.Close()

	var list []entity.Shelf
	for rows.Next() {
		var s entity.Shelf
		if err := rows.Scan(&s.ID, &s.WarehouseID, &s.Code, &s.Name, &s.Active, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shelf: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Employees operarios activos de la bodega.
func (r *SyncRepo) Employees(ctx context.Context, warehouseID int64, f repository.SyncFilter) ([]entity.Employee, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, warehouse_id, username, first_name, last_name, is_active, updated_at
		FROM employees WHERE warehouse_id = $1 AND is_active`)
	args := syncClauses(&sb, []any{warehouseID}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync employees: %w", err)
	}
	defer rows.Close()

	var list []entity.Employee
	for rows.Next() {
		var e entity.Employee
		if err := rows.Scan(&e.ID, &e.WarehouseID, &e.Username, &e.FirstName, &e.LastName, &e.Active, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Orders órdenes de la sucursal aún trabajables (abiertas o parciales).
func (r *SyncRepo) Orders(ctx context.Context, branchID int64, f repository.SyncFilter) ([]entity.PurchaseOrder, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, branch_id, po_id, tarih, status, updated_at
		FROM satin_alma_siparis_fis
		WHERE branch_id = $1 AND status < $2`)
	args := syncClauses(&sb, []any{branchID, entity.OrderStatusClosed}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync orders: %w", err)
	}
	defer rows.Close()

	var list []entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		if err := rows.Scan(&o.ID, &o.BranchID, &o.Number, &o.OrderDate, &o.Status, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// OpenOrderIDs ids de TODAS las órdenes trabajables de la sucursal, sin
// cursor: el alcance de las tablas hijas se calcula sobre este conjunto.
func (r *SyncRepo) OpenOrderIDs(ctx context.Context, branchID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		"SELECT id FROM satin_alma_siparis_fis WHERE branch_id = $1 AND status < $2 ORDER BY id",
		branchID, entity.OrderStatusClosed,
	)
	if err != nil {
		return nil, fmt.Errorf("open order ids: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// OrderLines líneas de las órdenes dadas.
func (r *SyncRepo) OrderLines(ctx context.Context, orderIDs []int64, f repository.SyncFilter) ([]entity.OrderLine, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT id, siparis_id, urun_id, miktar, birim, updated_at
		FROM satin_alma_siparis_fis_satir WHERE siparis_id = ANY($1)`)
	args := syncClauses(&sb, []any{orderIDs}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync order lines: %w", err)
	}
	defer rows.Close()

	var list []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Unit, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// OrderLineIDs ids de todas las líneas de las órdenes dadas, sin cursor.
func (r *SyncRepo) OrderLineIDs(ctx context.Context, orderIDs []int64) ([]int64, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		"SELECT id FROM satin_alma_siparis_fis_satir WHERE siparis_id = ANY($1) ORDER BY id",
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("order line ids: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// PutawayStatuses avance de colocación de las líneas dadas.
func (r *SyncRepo) PutawayStatuses(ctx context.Context, orderLineIDs []int64, f repository.SyncFilter) ([]entity.PutawayStatus, error) {
	if len(orderLineIDs) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT id, satinalmasiparisfissatir_id, putaway_quantity, updated_at
		FROM wms_putaway_status WHERE satinalmasiparisfissatir_id = ANY($1)`)
	args := syncClauses(&sb, []any{orderLineIDs}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync putaway statuses: %w", err)
	}
	defer rows.Close()

	var list []entity.PutawayStatus
	for rows.Next() {
		var p entity.PutawayStatus
		if err := rows.Scan(&p.ID, &p.OrderLineID, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan putaway status: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Receipts recepciones de las órdenes dadas más las libres de la bodega.
func (r *SyncRepo) Receipts(ctx context.Context, orderIDs []int64, warehouseID int64, f repository.SyncFilter) ([]entity.GoodsReceipt, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT goods_receipt_id, siparis_id, warehouse_id, employee_id, delivery_note_number, receipt_date, updated_at
		FROM goods_receipts
		WHERE (siparis_id = ANY($1) OR (siparis_id IS NULL AND warehouse_id = $2))`)
	args := syncClauses(&sb, []any{orderIDs, warehouseID}, f, "goods_receipt_id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync receipts: %w", err)
	}
	defer rows.Close()

	var list []entity.GoodsReceipt
	for rows.Next() {
		var g entity.GoodsReceipt
		if err := rows.Scan(&g.ID, &g.OrderID, &g.WarehouseID, &g.EmployeeID, &g.DeliveryNote, &g.ReceiptDate, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// ReceiptIDsForScope ids de todas las recepciones del alcance, sin cursor.
func (r *SyncRepo) ReceiptIDsForScope(ctx context.Context, orderIDs []int64, warehouseID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT goods_receipt_id FROM goods_receipts
		WHERE (siparis_id = ANY($1) OR (siparis_id IS NULL AND warehouse_id = $2))
		ORDER BY goods_receipt_id`,
		orderIDs, warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("receipt ids for scope: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// ReceiptItems líneas de las recepciones dadas.
func (r *SyncRepo) ReceiptItems(ctx context.Context, receiptIDs []int64, f repository.SyncFilter) ([]entity.GoodsReceiptItem, error) {
	if len(receiptIDs) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT id, receipt_id, urun_id, quantity_received, pallet_barcode, expiry_date, updated_at
		FROM goods_receipt_items WHERE receipt_id = ANY($1)`)
	args := syncClauses(&sb, []any{receiptIDs}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync receipt items: %w", err)
	}
	defer rows.Close()

	var list []entity.GoodsReceiptItem
	for rows.Next() {
		var it entity.GoodsReceiptItem
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.ProductID, &it.Quantity, &it.PalletBarcode, &it.ExpiryDate, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ShelfIDs ids de todos los racks de la bodega, sin cursor.
func (r *SyncRepo) ShelfIDs(ctx context.Context, warehouseID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		"SELECT id FROM shelfs WHERE warehouse_id = $1 ORDER BY id", warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("shelf ids: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// Lots lotes visibles para la bodega: en sus racks, en el área de recepción
// (location NULL) o ligados a las recepciones del alcance.
func (r *SyncRepo) Lots(ctx context.Context, shelfIDs []int64, receiptIDs []int64, f repository.SyncFilter) ([]entity.StockLot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, urun_id, location_id, pallet_barcode, stock_status, quantity,
			expiry_date, siparis_id, goods_receipt_id, updated_at
		FROM inventory_stock
		WHERE (location_id = ANY($1) OR location_id IS NULL OR goods_receipt_id = ANY($2))`)
	args := syncClauses(&sb, []any{shelfIDs, receiptIDs}, f, "id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sync lots: %w", err)
	}
	defer rows.Close()

	var list []entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.PalletBarcode, &l.Status, &l.Quantity,
			&l.ExpiryDate, &l.OrderID, &l.ReceiptID, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

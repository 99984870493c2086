package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/internal/domain/stock"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = "id, urun_id, location_id, pallet_barcode, stock_status, quantity, expiry_date, siparis_id, goods_receipt_id, updated_at"

// LotRepo implementación del libro de lotes sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// whereForKey traduce la clave a condiciones SQL respetando el modo de cada
// campo: Ignore no añade condición, MustNull exige IS NULL, Equals parametriza.
func whereForKey(key stock.LotKey) (string, []any) {
	var sb strings.Builder
	args := []any{key.ProductID, key.Status}
	sb.WriteString("urun_id = $1 AND stock_status = $2")

	addInt64 := func(col string, m stock.Int64Match) {
		switch m.Mode {
		case stock.MatchMustNull:
			fmt.Fprintf(&sb, " AND %s IS NULL", col)
		case stock.MatchEquals:
			args = append(args, m.Value)
			fmt.Fprintf(&sb, " AND %s = $%d", col, len(args))
		}
	}
	addString := func(col string, m stock.StringMatch) {
		switch m.Mode {
		case stock.MatchMustNull:
			fmt.Fprintf(&sb, " AND %s IS NULL", col)
		case stock.MatchEquals:
			args = append(args, m.Value)
			fmt.Fprintf(&sb, " AND %s = $%d", col, len(args))
		}
	}
	addTime := func(col string, m stock.TimeMatch) {
		switch m.Mode {
		case stock.MatchMustNull:
			fmt.Fprintf(&sb, " AND %s IS NULL", col)
		case stock.MatchEquals:
			args = append(args, m.Value)
			fmt.Fprintf(&sb, " AND %s = $%d", col, len(args))
		}
	}

	addInt64("location_id", key.Location)
	addString("pallet_barcode", key.Pallet)
	addInt64("siparis_id", key.Order)
	addInt64("goods_receipt_id", key.Receipt)
	addTime("expiry_date", key.Expiry)

	return sb.String(), args
}

// Find devuelve los lotes que cumplen la clave en orden FIFO: vencimiento
// ascendente con NULL al final, id como desempate estable.
func (r *LotRepo) Find(ctx context.Context, key stock.LotKey) ([]entity.StockLot, error) {
	where, args := whereForKey(key)
	query := fmt.Sprintf(
		"SELECT %s FROM inventory_stock WHERE %s ORDER BY expiry_date ASC NULLS LAST, id ASC",
		lotColumns, where,
	)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find lots: %w", err)
	}
	defer rows.Close()

	var lots []entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.PalletBarcode, &l.Status,
			&l.Quantity, &l.ExpiryDate, &l.OrderID, &l.ReceiptID, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// Consume descuenta amount del lote. Si el descuento vacía el lote dentro de
// la tolerancia, borra la fila y reporta consumida la cantidad completa.
func (r *LotRepo) Consume(ctx context.Context, lot *entity.StockLot, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.GreaterThanOrEqual(lot.Quantity.Sub(entity.Epsilon)) {
		if _, err := r.q.Exec(ctx, "DELETE FROM inventory_stock WHERE id = $1", lot.ID); err != nil {
			return decimal.Zero, fmt.Errorf("consume lot %d: %w", lot.ID, err)
		}
		return lot.Quantity, nil
	}
	_, err := r.q.Exec(ctx,
		"UPDATE inventory_stock SET quantity = quantity - $1, updated_at = now() WHERE id = $2",
		amount, lot.ID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("consume lot %d: %w", lot.ID, err)
	}
	return amount, nil
}

// Upsert funde delta en la fila de clave exacta o inserta una nueva. Con delta
// negativo la fila debe existir (corrección puntual ya resuelta por el caller);
// el agotamiento general es DepleteFIFO, nunca este método.
func (r *LotRepo) Upsert(ctx context.Context, lot *entity.StockLot, delta decimal.Decimal) error {
	key := stock.LotKey{
		ProductID: lot.ProductID,
		Status:    lot.Status,
		Location:  stock.Int64OrNull(lot.LocationID),
		Pallet:    stock.StringOrNull(lot.PalletBarcode),
		Order:     stock.Int64OrNull(lot.OrderID),
		Receipt:   stock.Int64OrNull(lot.ReceiptID),
		Expiry:    stock.TimeOrNull(lot.ExpiryDate),
	}
	where, args := whereForKey(key)

	var id int64
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx,
		fmt.Sprintf("SELECT id, quantity FROM inventory_stock WHERE %s", where), args...,
	).Scan(&id, &qty)

	switch {
	case err == nil:
		newQty := qty.Add(delta)
		if newQty.GreaterThan(entity.Epsilon) {
			_, err = r.q.Exec(ctx,
				"UPDATE inventory_stock SET quantity = $1, updated_at = now() WHERE id = $2", newQty, id)
		} else {
			_, err = r.q.Exec(ctx, "DELETE FROM inventory_stock WHERE id = $1", id)
		}
		if err != nil {
			return fmt.Errorf("upsert lot: %w", err)
		}
		return nil

	case isNoRows(err):
		if delta.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("upsert con delta negativo sin lote destino: %w", domain.ErrNotFound)
		}
		_, err = r.q.Exec(ctx, `
			INSERT INTO inventory_stock (urun_id, location_id, pallet_barcode, stock_status, quantity, expiry_date, siparis_id, goods_receipt_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
			lot.ProductID, lot.LocationID, lot.PalletBarcode, lot.Status, delta,
			lot.ExpiryDate, lot.OrderID, lot.ReceiptID,
		)
		if err != nil {
			return fmt.Errorf("insert lot: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("upsert lot: %w", err)
	}
}

// DepleteFIFO consume amount recorriendo los lotes en orden FIFO dentro de la
// transacción actual. Sin stock suficiente devuelve InsufficientStockError con
// el disponible exacto y no muta nada.
func (r *LotRepo) DepleteFIFO(ctx context.Context, key stock.LotKey, amount decimal.Decimal) ([]stock.Portion, error) {
	lots, err := r.Find(ctx, key)
	if err != nil {
		return nil, err
	}

	portions, effects, err := stock.PlanDepletion(lots, amount)
	if err != nil {
		return nil, err
	}

	for _, e := range effects {
		if e.Delete {
			_, err = r.q.Exec(ctx, "DELETE FROM inventory_stock WHERE id = $1", e.LotID)
		} else {
			_, err = r.q.Exec(ctx,
				"UPDATE inventory_stock SET quantity = $1, updated_at = now() WHERE id = $2",
				e.NewQuantity, e.LotID)
		}
		if err != nil {
			return nil, fmt.Errorf("deplete lot %d: %w", e.LotID, err)
		}
	}
	return portions, nil
}

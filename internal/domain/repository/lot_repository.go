package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/stock"
)

// LotRepository libro de lotes de inventario.
type LotRepository interface {
	// Find devuelve los lotes que cumplen la clave, ordenados por vencimiento
	// ascendente con NULL al final (se agotan últimos) y por id como desempate.
	Find(ctx context.Context, key stock.LotKey) ([]entity.StockLot, error)

	// Consume descuenta amount del lote. Si amount >= cantidad - epsilon borra
	// la fila y devuelve la cantidad completa del lote como consumida.
	Consume(ctx context.Context, lot *entity.StockLot, amount decimal.Decimal) (decimal.Decimal, error)

	// Upsert funde delta en la fila de clave exacta o inserta una nueva.
	// Delta negativo solo se admite contra una única fila ya resuelta
	// (correcciones puntuales); el agotamiento general usa DepleteFIFO.
	Upsert(ctx context.Context, lot *entity.StockLot, delta decimal.Decimal) error

	// DepleteFIFO consume amount recorriendo Find(key) en orden y devuelve las
	// porciones con su procedencia. Si no alcanza, InsufficientStockError con
	// el disponible exacto y sin mutación alguna.
	DepleteFIFO(ctx context.Context, key stock.LotKey, amount decimal.Decimal) ([]stock.Portion, error)
}

package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// Portion porción consumida de un lote concreto durante un agotamiento FIFO.
// Conserva la procedencia del lote (vencimiento, orden, recepción) para que el
// destino herede esos datos.
type Portion struct {
	LotID      int64
	Quantity   decimal.Decimal
	ExpiryDate *time.Time
	OrderID    *int64
	ReceiptID  *int64
}

// Consumption efecto sobre una fila de lote: actualizar a NewQuantity o borrar.
type Consumption struct {
	LotID       int64
	NewQuantity decimal.Decimal
	Delete      bool
}

// PlanDepletion reparte amount entre los lotes recibidos, en el orden dado
// (el repositorio ya los entrega por vencimiento ascendente, NULL al final).
// Devuelve las porciones en orden y los efectos por fila. Si la suma de los
// lotes no alcanza amount (con tolerancia Epsilon) devuelve
// InsufficientStockError con el total disponible exacto y cero efectos.
func PlanDepletion(lots []entity.StockLot, amount decimal.Decimal) ([]Portion, []Consumption, error) {
	available := decimal.Zero
	for _, lot := range lots {
		available = available.Add(lot.Quantity)
	}
	if available.LessThan(amount.Sub(entity.Epsilon)) {
		var productID int64
		if len(lots) > 0 {
			productID = lots[0].ProductID
		}
		return nil, nil, &domain.InsufficientStockError{
			ProductID: productID,
			Available: available,
			Requested: amount,
		}
	}

	left := amount
	var portions []Portion
	var effects []Consumption

	for _, lot := range lots {
		if left.LessThanOrEqual(entity.Epsilon) {
			break
		}
		take := decimal.Min(lot.Quantity, left)
		remainder := lot.Quantity.Sub(take)

		if remainder.GreaterThan(entity.Epsilon) {
			effects = append(effects, Consumption{LotID: lot.ID, NewQuantity: remainder})
		} else {
			// El resto cae dentro de la tolerancia: el lote se vacía entero y
			// lo consumido reportado es la cantidad completa del lote.
			take = lot.Quantity
			effects = append(effects, Consumption{LotID: lot.ID, Delete: true})
		}

		portions = append(portions, Portion{
			LotID:      lot.ID,
			Quantity:   take,
			ExpiryDate: lot.ExpiryDate,
			OrderID:    lot.OrderID,
			ReceiptID:  lot.ReceiptID,
		})
		left = left.Sub(take)
	}

	return portions, effects, nil
}

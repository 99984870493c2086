package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/stock"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func tp(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func lote(id int64, qty string, expiry *time.Time) entity.StockLot {
	return entity.StockLot{ID: id, ProductID: 42, Quantity: d(qty), ExpiryDate: expiry}
}

func TestPlanDepletion_RepartePorOrden(t *testing.T) {
	lots := []entity.StockLot{
		lote(1, "10", tp("2026-01-01")),
		lote(2, "5", tp("2026-02-01")),
		lote(3, "8", nil),
	}

	portions, effects, err := stock.PlanDepletion(lots, d("12"))
	require.NoError(t, err)

	require.Len(t, portions, 2)
	assert.Equal(t, int64(1), portions[0].LotID)
	assert.True(t, portions[0].Quantity.Equal(d("10")))
	assert.Equal(t, int64(2), portions[1].LotID)
	assert.True(t, portions[1].Quantity.Equal(d("2")))

	require.Len(t, effects, 2)
	assert.True(t, effects[0].Delete)
	assert.False(t, effects[1].Delete)
	assert.True(t, effects[1].NewQuantity.Equal(d("3")))
}

func TestPlanDepletion_VaciaTodoConCantidadExacta(t *testing.T) {
	lots := []entity.StockLot{
		lote(1, "4", tp("2026-01-01")),
		lote(2, "6", tp("2026-02-01")),
	}

	portions, effects, err := stock.PlanDepletion(lots, d("10"))
	require.NoError(t, err)
	require.Len(t, portions, 2)
	for _, e := range effects {
		assert.True(t, e.Delete, "cantidad exacta debe vaciar todos los lotes")
	}
}

func TestPlanDepletion_RestoDentroDeToleranciaBorraElLote(t *testing.T) {
	lots := []entity.StockLot{lote(1, "5.0005", nil)}

	portions, effects, err := stock.PlanDepletion(lots, d("5"))
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.True(t, effects[0].Delete)
	// Lo consumido reportado es la cantidad completa del lote, no lo pedido.
	assert.True(t, portions[0].Quantity.Equal(d("5.0005")))
}

func TestPlanDepletion_StockInsuficienteSinEfectos(t *testing.T) {
	lots := []entity.StockLot{
		lote(1, "3", tp("2026-01-01")),
		lote(2, "2", nil),
	}

	portions, effects, err := stock.PlanDepletion(lots, d("9"))
	require.Error(t, err)
	assert.Nil(t, portions)
	assert.Nil(t, effects)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(d("5")), "disponible debe ser la suma exacta")
	assert.True(t, stockErr.Requested.Equal(d("9")))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlanDepletion_ConservaProcedencia(t *testing.T) {
	orderID := int64(7)
	receiptID := int64(9)
	lots := []entity.StockLot{{
		ID: 1, ProductID: 42, Quantity: d("5"),
		ExpiryDate: tp("2026-03-01"), OrderID: &orderID, ReceiptID: &receiptID,
	}}

	portions, _, err := stock.PlanDepletion(lots, d("2"))
	require.NoError(t, err)
	require.Len(t, portions, 1)
	assert.Equal(t, &orderID, portions[0].OrderID)
	assert.Equal(t, &receiptID, portions[0].ReceiptID)
	require.NotNil(t, portions[0].ExpiryDate)
	assert.Equal(t, *tp("2026-03-01"), *portions[0].ExpiryDate)
}

func TestMatchConstructors(t *testing.T) {
	assert.Equal(t, stock.MatchIgnore, stock.AnyInt64().Mode)
	assert.Equal(t, stock.MatchEquals, stock.EqInt64(5).Mode)

	assert.Equal(t, stock.MatchMustNull, stock.Int64OrNull(nil).Mode)
	v := int64(3)
	m := stock.Int64OrNull(&v)
	assert.Equal(t, stock.MatchEquals, m.Mode)
	assert.Equal(t, int64(3), m.Value)

	assert.Equal(t, stock.MatchMustNull, stock.StringOrNull(nil).Mode)
	s := "PAL-1"
	assert.Equal(t, "PAL-1", stock.StringOrNull(&s).Value)

	assert.Equal(t, stock.MatchMustNull, stock.TimeOrNull(nil).Mode)
	assert.Equal(t, stock.MatchIgnore, stock.AnyTime().Mode)
}

package intake_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Terminal-wms/internal/application/intake"
	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/internal/domain/stock"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func i64(v int64) *int64   { return &v }
func str(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memEmployees struct{ byID map[int64]entity.Employee }

func (m *memEmployees) GetByID(_ context.Context, id int64) (*entity.Employee, error) {
	if e, ok := m.byID[id]; ok {
		return &e, nil
	}
	return nil, nil
}

type memProducts struct{ byID map[int64]entity.Product }

func (m *memProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	if p, ok := m.byID[id]; ok {
		return &p, nil
	}
	return nil, nil
}

type memReceipts struct {
	headers []entity.GoodsReceipt
	items   []entity.GoodsReceiptItem
}

func (m *memReceipts) CreateHeader(_ context.Context, r *entity.GoodsReceipt) error {
	r.ID = int64(len(m.headers) + 1)
	m.headers = append(m.headers, *r)
	return nil
}

func (m *memReceipts) CreateItem(_ context.Context, it *entity.GoodsReceiptItem) error {
	it.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *it)
	return nil
}

func (m *memReceipts) ListFreeForPutaway(_ context.Context, _ int64) ([]entity.FreeReceiptSummary, error) {
	return nil, nil
}

type upsertCall struct {
	lot   entity.StockLot
	delta decimal.Decimal
}

type recordLots struct{ upserts []upsertCall }

func (m *recordLots) Find(context.Context, stock.LotKey) ([]entity.StockLot, error) {
	return nil, nil
}

func (m *recordLots) Consume(context.Context, *entity.StockLot, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *recordLots) Upsert(_ context.Context, lot *entity.StockLot, delta decimal.Decimal) error {
	m.upserts = append(m.upserts, upsertCall{lot: *lot, delta: delta})
	return nil
}

func (m *recordLots) DepleteFIFO(context.Context, stock.LotKey, decimal.Decimal) ([]stock.Portion, error) {
	return nil, nil
}

type memOrders struct {
	statuses map[int64]int
	lines    []entity.OrderLine
	received map[int64]decimal.Decimal
}

func (m *memOrders) GetStatus(_ context.Context, orderID int64) (int, error) {
	s, ok := m.statuses[orderID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return s, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, orderID int64, status int) (int64, error) {
	if _, ok := m.statuses[orderID]; !ok {
		return 0, nil
	}
	m.statuses[orderID] = status
	return 1, nil
}

func (m *memOrders) GetLine(_ context.Context, orderID, productID int64) (*entity.OrderLine, error) {
	for _, l := range m.lines {
		if l.OrderID == orderID && l.ProductID == productID {
			line := l
			return &line, nil
		}
	}
	return nil, nil
}

func (m *memOrders) LinesProgress(_ context.Context, orderID int64) ([]entity.OrderLineProgress, error) {
	var out []entity.OrderLineProgress
	for _, l := range m.lines {
		if l.OrderID != orderID {
			continue
		}
		out = append(out, entity.OrderLineProgress{
			LineID:   l.ID,
			Ordered:  l.Quantity,
			Received: m.received[l.ID],
		})
	}
	return out, nil
}

func (m *memOrders) AddPutaway(context.Context, int64, decimal.Decimal) error { return nil }

type fixture struct {
	set      repository.Set
	lots     *recordLots
	receipts *memReceipts
	orders   *memOrders
}

func newFixture() *fixture {
	f := &fixture{
		lots:     &recordLots{},
		receipts: &memReceipts{},
		orders:   &memOrders{statuses: map[int64]int{}, received: map[int64]decimal.Decimal{}},
	}
	f.set = repository.Set{
		Lots:     f.lots,
		Receipts: f.receipts,
		Orders:   f.orders,
		Products: &memProducts{byID: map[int64]entity.Product{
			42: {ID: 42, Code: "SKU-42", Name: "Producto 42", Active: true},
		}},
		Employees: &memEmployees{byID: map[int64]entity.Employee{
			5: {ID: 5, WarehouseID: 3, Active: true},
		}},
	}
	return f
}

func testService() *intake.Service {
	return intake.NewService(logger.New(logger.Config{Env: "production", Level: "error"}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateReceipt_RecepcionLibreExigeAlbaran(t *testing.T) {
	f := newFixture()
	_, err := testService().CreateReceipt(context.Background(), f.set, intake.ReceiptInput{
		EmployeeID: 5,
		Items:      []intake.ReceiptItemInput{{ProductID: 42, Quantity: d("3")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.receipts.headers)
}

func TestCreateReceipt_EmpleadoDesconocido(t *testing.T) {
	f := newFixture()
	_, err := testService().CreateReceipt(context.Background(), f.set, intake.ReceiptInput{
		EmployeeID:   99,
		DeliveryNote: str("IRS-1"),
		Items:        []intake.ReceiptItemInput{{ProductID: 42, Quantity: d("3")}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReceipt_ProductoDesconocido(t *testing.T) {
	f := newFixture()
	_, err := testService().CreateReceipt(context.Background(), f.set, intake.ReceiptInput{
		EmployeeID:   5,
		DeliveryNote: str("IRS-1"),
		Items:        []intake.ReceiptItemInput{{ProductID: 777, Quantity: d("3")}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReceipt_CreaLotesReceivingYPromueveLaOrden(t *testing.T) {
	f := newFixture()
	f.orders.statuses[7] = entity.OrderStatusOpen
	f.orders.lines = []entity.OrderLine{{ID: 70, OrderID: 7, ProductID: 42, Quantity: d("10")}}
	f.orders.received[70] = d("6") // lo que quedará acumulado tras esta recepción

	expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := testService().CreateReceipt(context.Background(), f.set, intake.ReceiptInput{
		EmployeeID: 5,
		OrderID:    i64(7),
		Items: []intake.ReceiptItemInput{
			{ProductID: 42, Quantity: d("6"), PalletBarcode: str("PAL-1"), ExpiryDate: &expiry},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(1), res.ReceiptID)

	// La bodega sale del empleado, nunca del cliente.
	require.Len(t, f.receipts.headers, 1)
	assert.Equal(t, int64(3), f.receipts.headers[0].WarehouseID)

	require.Len(t, f.lots.upserts, 1)
	lot := f.lots.upserts[0].lot
	assert.Equal(t, entity.LotStatusReceiving, lot.Status)
	assert.Nil(t, lot.LocationID, "la recepción entra al área virtual")
	assert.Equal(t, i64(7), lot.OrderID)
	assert.Equal(t, i64(1), lot.ReceiptID)
	require.NotNil(t, lot.ExpiryDate)
	assert.True(t, f.lots.upserts[0].delta.Equal(d("6")))

	assert.Equal(t, entity.OrderStatusPartial, f.orders.statuses[7])
}

func TestCreateReceipt_NoRetrocedeUnaOrdenYaAvanzada(t *testing.T) {
	f := newFixture()
	f.orders.statuses[7] = entity.OrderStatusCompleted
	f.orders.lines = []entity.OrderLine{{ID: 70, OrderID: 7, ProductID: 42, Quantity: d("10")}}
	f.orders.received[70] = d("12")

	_, err := testService().CreateReceipt(context.Background(), f.set, intake.ReceiptInput{
		EmployeeID: 5,
		OrderID:    i64(7),
		Items:      []intake.ReceiptItemInput{{ProductID: 42, Quantity: d("2")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, f.orders.statuses[7],
		"una recepción tardía no degrada el estado")
}

func TestForceCloseOrder(t *testing.T) {
	f := newFixture()
	f.orders.statuses[7] = entity.OrderStatusPartial

	err := testService().ForceCloseOrder(context.Background(), f.set, 7)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusClosed, f.orders.statuses[7])

	err = testService().ForceCloseOrder(context.Background(), f.set, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

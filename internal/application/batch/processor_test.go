package batch_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Terminal-wms/internal/application/allocation"
	"github.com/jhoicas/Terminal-wms/internal/application/batch"
	"github.com/jhoicas/Terminal-wms/internal/application/dto"
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
// Almacén en memoria con semántica transaccional: el runner trabaja sobre una
// copia y solo la confirma si el callback no devuelve error. Así los tests
// verifican el contrato de rollback del lote sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	lots        []entity.StockLot
	transfers   []entity.Transfer
	receipts    []entity.GoodsReceipt
	items       []entity.GoodsReceiptItem
	orders      map[int64]int
	lines       []entity.OrderLine
	putaway     map[int64]decimal.Decimal
	idem        map[string]entity.ProcessedRequest
	products    map[int64]entity.Product
	employees   map[int64]entity.Employee
	nextLotID   int64
	nextRcptID  int64
	nextItemID  int64
}

func newMemState() *memState {
	return &memState{
		orders:    map[int64]int{},
		putaway:   map[int64]decimal.Decimal{},
		idem:      map[string]entity.ProcessedRequest{},
		products:  map[int64]entity.Product{},
		employees: map[int64]entity.Employee{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.lots = append([]entity.StockLot(nil), s.lots...)
	c.transfers = append([]entity.Transfer(nil), s.transfers...)
	c.receipts = append([]entity.GoodsReceipt(nil), s.receipts...)
	c.items = append([]entity.GoodsReceiptItem(nil), s.items...)
	c.lines = append([]entity.OrderLine(nil), s.lines...)
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.putaway {
		c.putaway[k] = v
	}
	for k, v := range s.idem {
		c.idem[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	c.nextLotID, c.nextRcptID, c.nextItemID = s.nextLotID, s.nextRcptID, s.nextItemID
	return c
}

type fakeTx struct{ committed *memState }

func (f *fakeTx) RunSerializable(_ context.Context, fn func(repos repository.Set) error) error {
	work := f.committed.clone()
	if err := fn(setFor(work)); err != nil {
		return err
	}
	f.committed = work
	return nil
}

func setFor(s *memState) repository.Set {
	return repository.Set{
		Lots:        &stLots{s: s},
		Transfers:   &stTransfers{s: s},
		Receipts:    &stReceipts{s: s},
		Orders:      &stOrders{s: s},
		Idempotency: &stIdem{s: s},
		Products:    &stProducts{s: s},
		Employees:   &stEmployees{s: s},
	}
}

type stLots struct{ s *memState }

func matchInt64(val *int64, m stock.Int64Match) bool {
	switch m.Mode {
	case stock.MatchMustNull:
		return val == nil
	case stock.MatchEquals:
		return val != nil && *val == m.Value
	}
	return true
}

func matchString(val *string, m stock.StringMatch) bool {
	switch m.Mode {
	case stock.MatchMustNull:
		return val == nil
	case stock.MatchEquals:
		return val != nil && *val == m.Value
	}
	return true
}

func lotMatches(l entity.StockLot, key stock.LotKey) bool {
	if l.ProductID != key.ProductID || l.Status != key.Status {
		return false
	}
	if !matchInt64(l.LocationID, key.Location) || !matchString(l.PalletBarcode, key.Pallet) {
		return false
	}
	if !matchInt64(l.OrderID, key.Order) || !matchInt64(l.ReceiptID, key.Receipt) {
		return false
	}
	switch key.Expiry.Mode {
	case stock.MatchMustNull:
		return l.ExpiryDate == nil
	case stock.MatchEquals:
		return l.ExpiryDate != nil && l.ExpiryDate.Equal(key.Expiry.Value)
	}
	return true
}

func (r *stLots) Find(_ context.Context, key stock.LotKey) ([]entity.StockLot, error) {
	var out []entity.StockLot
	for _, l := range r.s.lots {
		if lotMatches(l, key) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ID < b.ID
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})
	return out, nil
}

func (r *stLots) Consume(_ context.Context, lot *entity.StockLot, amount decimal.Decimal) (decimal.Decimal, error) {
	for i := range r.s.lots {
		if r.s.lots[i].ID != lot.ID {
			continue
		}
		if amount.GreaterThanOrEqual(r.s.lots[i].Quantity.Sub(entity.Epsilon)) {
			full := r.s.lots[i].Quantity
			r.s.lots = append(r.s.lots[:i], r.s.lots[i+1:]...)
			return full, nil
		}
		r.s.lots[i].Quantity = r.s.lots[i].Quantity.Sub(amount)
		return amount, nil
	}
	return decimal.Zero, domain.ErrNotFound
}

func (r *stLots) Upsert(_ context.Context, lot *entity.StockLot, delta decimal.Decimal) error {
	key := stock.LotKey{
		ProductID: lot.ProductID,
		Status:    lot.Status,
		Location:  stock.Int64OrNull(lot.LocationID),
		Pallet:    stock.StringOrNull(lot.PalletBarcode),
		Order:     stock.Int64OrNull(lot.OrderID),
		Receipt:   stock.Int64OrNull(lot.ReceiptID),
		Expiry:    stock.TimeOrNull(lot.ExpiryDate),
	}
	for i := range r.s.lots {
		if lotMatches(r.s.lots[i], key) {
			newQty := r.s.lots[i].Quantity.Add(delta)
			if newQty.GreaterThan(entity.Epsilon) {
				r.s.lots[i].Quantity = newQty
			} else {
				r.s.lots = append(r.s.lots[:i], r.s.lots[i+1:]...)
			}
			return nil
		}
	}
	if delta.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNotFound
	}
	r.s.nextLotID++
	created := *lot
	created.ID = r.s.nextLotID
	created.Quantity = delta
	r.s.lots = append(r.s.lots, created)
	return nil
}

func (r *stLots) DepleteFIFO(ctx context.Context, key stock.LotKey, amount decimal.Decimal) ([]stock.Portion, error) {
	lots, _ := r.Find(ctx, key)
	portions, effects, err := stock.PlanDepletion(lots, amount)
	if err != nil {
		return nil, err
	}
	for _, e := range effects {
		for i := range r.s.lots {
			if r.s.lots[i].ID != e.LotID {
				continue
			}
			if e.Delete {
				r.s.lots = append(r.s.lots[:i], r.s.lots[i+1:]...)
			} else {
				r.s.lots[i].Quantity = e.NewQuantity
			}
			break
		}
	}
	return portions, nil
}

type stTransfers struct{ s *memState }

func (r *stTransfers) Create(_ context.Context, t *entity.Transfer) error {
	t.ID = int64(len(r.s.transfers) + 1)
	r.s.transfers = append(r.s.transfers, *t)
	return nil
}

type stReceipts struct{ s *memState }

func (r *stReceipts) CreateHeader(_ context.Context, h *entity.GoodsReceipt) error {
	r.s.nextRcptID++
	h.ID = r.s.nextRcptID
	r.s.receipts = append(r.s.receipts, *h)
	return nil
}

func (r *stReceipts) CreateItem(_ context.Context, it *entity.GoodsReceiptItem) error {
	r.s.nextItemID++
	it.ID = r.s.nextItemID
	r.s.items = append(r.s.items, *it)
	return nil
}

func (r *stReceipts) ListFreeForPutaway(context.Context, int64) ([]entity.FreeReceiptSummary, error) {
	return nil, nil
}

type stOrders struct{ s *memState }

func (r *stOrders) GetStatus(_ context.Context, orderID int64) (int, error) {
	st, ok := r.s.orders[orderID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return st, nil
}

func (r *stOrders) UpdateStatus(_ context.Context, orderID int64, status int) (int64, error) {
	if _, ok := r.s.orders[orderID]; !ok {
		return 0, nil
	}
	r.s.orders[orderID] = status
	return 1, nil
}

func (r *stOrders) GetLine(_ context.Context, orderID, productID int64) (*entity.OrderLine, error) {
	for _, l := range r.s.lines {
		if l.OrderID == orderID && l.ProductID == productID {
			line := l
			return &line, nil
		}
	}
	return nil, nil
}

func (r *stOrders) LinesProgress(_ context.Context, orderID int64) ([]entity.OrderLineProgress, error) {
	var out []entity.OrderLineProgress
	for _, l := range r.s.lines {
		if l.OrderID != orderID {
			continue
		}
		received := decimal.Zero
		for _, it := range r.s.items {
			for _, h := range r.s.receipts {
				if h.ID == it.ReceiptID && h.OrderID != nil && *h.OrderID == orderID && it.ProductID == l.ProductID {
					received = received.Add(it.Quantity)
				}
			}
		}
		out = append(out, entity.OrderLineProgress{
			LineID:   l.ID,
			Ordered:  l.Quantity,
			Received: received,
			Putaway:  r.s.putaway[l.ID],
		})
	}
	return out, nil
}

func (r *stOrders) AddPutaway(_ context.Context, lineID int64, qty decimal.Decimal) error {
	r.s.putaway[lineID] = r.s.putaway[lineID].Add(qty)
	return nil
}

type stIdem struct{ s *memState }

func (r *stIdem) Get(_ context.Context, key string) (*entity.ProcessedRequest, error) {
	if rec, ok := r.s.idem[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *stIdem) Create(_ context.Context, rec *entity.ProcessedRequest) error {
	if _, ok := r.s.idem[rec.IdempotencyKey]; ok {
		return domain.ErrDuplicate
	}
	r.s.idem[rec.IdempotencyKey] = *rec
	return nil
}

type stProducts struct{ s *memState }

func (r *stProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

type stEmployees struct{ s *memState }

func (r *stEmployees) GetByID(_ context.Context, id int64) (*entity.Employee, error) {
	if e, ok := r.s.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeERP struct{ pushed []int64 }

func (f *fakeERP) NotifyReceiptCreated(_ context.Context, receipt *entity.GoodsReceipt, _ []entity.GoodsReceiptItem) {
	f.pushed = append(f.pushed, receipt.ID)
}

type fakeNotifier struct {
	batchFailures int
	stockAlerts   int
}

func (f *fakeNotifier) BatchFailed(int64, string, string)       { f.batchFailures++ }
func (f *fakeNotifier) InsufficientStock(int64, string, string) { f.stockAlerts++ }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	tx       *fakeTx
	erp      *fakeERP
	notifier *fakeNotifier
	proc     *batch.Processor
}

func newFixture() *fixture {
	state := newMemState()
	state.products[42] = entity.Product{ID: 42, Code: "SKU-42", Active: true}
	state.employees[5] = entity.Employee{ID: 5, WarehouseID: 3, Active: true}
	state.orders[7] = entity.OrderStatusOpen
	state.lines = []entity.OrderLine{{ID: 70, OrderID: 7, ProductID: 42, Quantity: d("10")}}

	log := logger.New(logger.Config{Env: "production", Level: "error"})
	f := &fixture{
		tx:       &fakeTx{committed: state},
		erp:      &fakeERP{},
		notifier: &fakeNotifier{},
	}
	f.proc = batch.NewProcessor(f.tx, allocation.NewEngine(log), intake.NewService(log),
		f.erp, f.notifier, log)
	return f
}

func receiptOp(localID int64, key string) dto.Operation {
	data, _ := json.Marshal(dto.GoodsReceiptData{
		Header: dto.ReceiptHeader{EmployeeID: 5, OrderID: i64(7)},
		Items:  []dto.ReceiptItem{{ProductID: 42, Quantity: d("6"), PalletBarcode: str("PAL-1")}},
	})
	return dto.Operation{LocalID: localID, IdempotencyKey: key, Type: dto.OpGoodsReceipt, Data: data}
}

func transferOp(localID int64, key, qty string) dto.Operation {
	data, _ := json.Marshal(dto.InventoryTransferData{
		Header: dto.TransferHeader{
			EmployeeID:       5,
			SourceLocationID: i64(0), // área de recepción en el dialecto del terminal
			TargetLocationID: 3,
			OperationType:    entity.TransferTypeBox,
			OrderID:          i64(7),
		},
		Items: []dto.TransferItem{{ProductID: 42, Quantity: d(qty), PalletBarcode: str("PAL-1")}},
	})
	return dto.Operation{LocalID: localID, IdempotencyKey: key, Type: dto.OpInventoryTransfer, Data: data}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_LoteCompletoConfirmado(t *testing.T) {
	f := newFixture()

	resp, err := f.proc.Process(context.Background(),
		[]dto.Operation{receiptOp(1, "k-1"), transferOp(2, "k-2", "6")})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, int64(1), resp.Results[0].LocalID)
	assert.Equal(t, int64(2), resp.Results[1].LocalID)

	st := f.tx.committed
	assert.Len(t, st.receipts, 1)
	assert.Len(t, st.transfers, 1)
	assert.Len(t, st.idem, 2, "una fila de idempotencia por operación")
	assert.True(t, st.putaway[70].Equal(d("6")))
	assert.Equal(t, entity.OrderStatusPartial, st.orders[7])

	// El push al ERP ocurre una vez, después del commit.
	assert.Equal(t, []int64{1}, f.erp.pushed)
	assert.Zero(t, f.notifier.batchFailures)
}

func TestProcess_ClaveYaConfirmadaRespondeCacheado(t *testing.T) {
	f := newFixture()
	cached := json.RawMessage(`{"status":"success","receipt_id":99}`)
	f.tx.committed.idem["k-1"] = entity.ProcessedRequest{
		IdempotencyKey: "k-1", ResponseCode: 200, ResponseBody: cached,
	}

	resp, err := f.proc.Process(context.Background(), []dto.Operation{receiptOp(1, "k-1")})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.JSONEq(t, string(cached), string(resp.Results[0].Result))

	assert.Empty(t, f.tx.committed.receipts, "el replay no re-ejecuta la operación")
	assert.Empty(t, f.erp.pushed)
}

func TestProcess_FalloIntermedioRevierteTodo(t *testing.T) {
	f := newFixture()

	// La recepción mete 6 unidades; la transferencia pide 50 y debe fallar.
	_, err := f.proc.Process(context.Background(),
		[]dto.Operation{receiptOp(1, "k-1"), transferOp(2, "k-2", "50")})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, int64(2), opErr.LocalID)
	assert.Equal(t, 1, opErr.ProcessedCount, "una operación iba procesada antes del fallo")

	st := f.tx.committed
	assert.Empty(t, st.receipts, "el rollback descarta también la recepción previa")
	assert.Empty(t, st.lots)
	assert.Empty(t, st.idem, "los registros de idempotencia del lote se descartan")
	assert.Equal(t, entity.OrderStatusOpen, st.orders[7])

	assert.Empty(t, f.erp.pushed)
	assert.Equal(t, 1, f.notifier.batchFailures)
	assert.Equal(t, 1, f.notifier.stockAlerts)
}

func TestProcess_TipoDesconocido(t *testing.T) {
	f := newFixture()
	_, err := f.proc.Process(context.Background(), []dto.Operation{{
		LocalID: 1, IdempotencyKey: "k-1", Type: "renameWarehouse", Data: json.RawMessage(`{}`),
	}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_OperacionSinClave(t *testing.T) {
	f := newFixture()
	_, err := f.proc.Process(context.Background(), []dto.Operation{{
		LocalID: 1, Type: dto.OpGoodsReceipt, Data: json.RawMessage(`{}`),
	}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.proc.Process(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_ForceClose(t *testing.T) {
	f := newFixture()
	data, _ := json.Marshal(dto.ForceCloseOrderData{OrderID: 7})
	resp, err := f.proc.Process(context.Background(), []dto.Operation{{
		LocalID: 1, IdempotencyKey: "k-1", Type: dto.OpForceCloseOrder, Data: data,
	}})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, entity.OrderStatusClosed, f.tx.committed.orders[7])
}

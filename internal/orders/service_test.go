package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milletflow/milletflow/internal/shared"
)

const (
	testWarehouseName   = "Central Depot"
	testDistributorName = "Acme Traders"
	testProductName     = "Millet Flour"
)

// ============================================================================
// FAKES
// ============================================================================

type stockMove struct {
	OwnerID   int64
	ProductID int64
	Qty       int64
}

type fakeRecorder struct {
	mu      sync.Mutex
	err     error
	entries []string
}

func (f *fakeRecorder) Record(ctx context.Context, source, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, source+" | "+description)
	return nil
}

func (f *fakeRecorder) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.entries...)
}

// fakeStore keeps orders in memory. WithTx serializes callers and rolls the
// state back when the callback fails, mirroring commit semantics.
type fakeStore struct {
	mu         sync.Mutex
	orders     map[int64]Order
	history    []HistoryEntry
	nextID     int64
	deductions []stockMove
	credits    []stockMove
	detailsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]Order), nextID: 1}
}

func (f *fakeStore) seedOrder(status Status) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.orders[id] = Order{
		ID:            id,
		DistributorID: 3,
		WarehouseID:   2,
		ProductID:     7,
		Quantity:      5,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	return id
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapOrders := make(map[int64]Order, len(f.orders))
	for id, o := range f.orders {
		snapOrders[id] = o
	}
	snapHistory := append([]HistoryEntry(nil), f.history...)
	snapDeductions := append([]stockMove(nil), f.deductions...)
	snapCredits := append([]stockMove(nil), f.credits...)
	snapNext := f.nextID

	if err := fn(ctx, &fakeTx{store: f}); err != nil {
		f.orders = snapOrders
		f.history = snapHistory
		f.deductions = snapDeductions
		f.credits = snapCredits
		f.nextID = snapNext
		return err
	}
	return nil
}

func (f *fakeStore) details(o Order) OrderWithDetails {
	return OrderWithDetails{
		Order:           o,
		DistributorName: testDistributorName,
		WarehouseName:   testWarehouseName,
		ProductName:     testProductName,
	}
}

func (f *fakeStore) GetOrderDetails(ctx context.Context, id int64) (OrderWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailsErr != nil {
		return OrderWithDetails{}, f.detailsErr
	}
	o, ok := f.orders[id]
	if !ok {
		return OrderWithDetails{}, shared.ErrNotFound
	}
	return f.details(o), nil
}

func (f *fakeStore) ListByWarehouse(ctx context.Context, warehouseID int64, filters ListFilters) ([]OrderWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []OrderWithDetails
	for _, o := range f.orders {
		if o.WarehouseID != warehouseID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		list = append(list, f.details(o))
	}
	return list, nil
}

func (f *fakeStore) ListByDistributor(ctx context.Context, distributorID int64) ([]OrderWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []OrderWithDetails
	for _, o := range f.orders {
		if o.DistributorID == distributorID {
			list = append(list, f.details(o))
		}
	}
	return list, nil
}

func (f *fakeStore) Recent(ctx context.Context, limit int) ([]OrderWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []OrderWithDetails
	for _, o := range f.orders {
		if len(list) == limit {
			break
		}
		list = append(list, f.details(o))
	}
	return list, nil
}

func (f *fakeStore) StatusSummary(ctx context.Context, warehouseID int64) (StatusSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s StatusSummary
	for _, o := range f.orders {
		if o.WarehouseID != warehouseID {
			continue
		}
		switch o.Status {
		case StatusPending:
			s.Pending++
		case StatusShipped:
			s.Shipped++
		case StatusDelivered:
			s.Delivered++
		}
	}
	return s, nil
}

func (f *fakeStore) History(ctx context.Context, orderID int64) ([]HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []HistoryEntry
	for _, e := range f.history {
		if e.OrderID == orderID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetOrder(ctx context.Context, id int64) (Order, error) {
	o, ok := t.store.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order Order) (int64, error) {
	id := t.store.nextID
	t.store.nextID++
	order.ID = id
	order.CreatedAt = time.Now()
	t.store.orders[id] = order
	return id, nil
}

func (t *fakeTx) TransitionStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	o, ok := t.store.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	t.store.orders[id] = o
	return true, nil
}

func (t *fakeTx) AppendHistory(ctx context.Context, orderID int64, status Status) error {
	o, ok := t.store.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	t.store.history = append(t.store.history, HistoryEntry{
		ID:              int64(len(t.store.history) + 1),
		OrderID:         orderID,
		WarehouseID:     o.WarehouseID,
		DistributorName: testDistributorName,
		ProductName:     testProductName,
		Quantity:        o.Quantity,
		Status:          status,
		Timestamp:       time.Now(),
	})
	return nil
}

func (t *fakeTx) DeductWarehouseStock(ctx context.Context, warehouseID, productID, qty int64) error {
	t.store.deductions = append(t.store.deductions, stockMove{warehouseID, productID, qty})
	return nil
}

func (t *fakeTx) CreditDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	t.store.credits = append(t.store.credits, stockMove{distributorID, productID, qty})
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeRecorder) {
	store := newFakeStore()
	recorder := &fakeRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, recorder, logger), store, recorder
}

// ============================================================================
// PLACE ORDER TESTS
// ============================================================================

func TestServicePlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order with history snapshot", func(t *testing.T) {
		svc, store, recorder := newTestService()

		id, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
			DistributorID: 3,
			WarehouseID:   2,
			ProductID:     7,
			Quantity:      5,
		})
		require.NoError(t, err)

		order := store.orders[id]
		assert.Equal(t, StatusPending, order.Status)

		history, err := store.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, StatusPending, history[0].Status)
		assert.Equal(t, int64(5), history[0].Quantity)

		assert.Contains(t, recorder.all(), "Central Depot (Acme Traders) | Ordered 5 x Millet Flour")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, store, _ := newTestService()

		_, err := svc.PlaceOrder(ctx, PlaceOrderRequest{DistributorID: 3, WarehouseID: 2, ProductID: 7, Quantity: 0})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Empty(t, store.orders)
	})

	t.Run("stock is not touched at placement", func(t *testing.T) {
		svc, store, _ := newTestService()

		_, err := svc.PlaceOrder(ctx, PlaceOrderRequest{DistributorID: 3, WarehouseID: 2, ProductID: 7, Quantity: 500})
		require.NoError(t, err)
		assert.Empty(t, store.deductions)
		assert.Empty(t, store.credits)
	})
}

// ============================================================================
// DISPATCH TESTS
// ============================================================================

func TestServiceDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("ships pending order and deducts warehouse stock", func(t *testing.T) {
		svc, store, recorder := newTestService()
		id := store.seedOrder(StatusPending)

		require.NoError(t, svc.Dispatch(ctx, id))

		assert.Equal(t, StatusShipped, store.orders[id].Status)
		require.Len(t, store.deductions, 1)
		assert.Equal(t, stockMove{2, 7, 5}, store.deductions[0])

		history, _ := store.History(ctx, id)
		require.Len(t, history, 1)
		assert.Equal(t, StatusShipped, history[0].Status)

		assert.Contains(t, recorder.all(), "Central Depot (Admin) | Dispatched order #1: 5 x Millet Flour")
	})

	t.Run("rejects dispatching a shipped order", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusShipped)

		err := svc.Dispatch(ctx, id)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, store.deductions)
		assert.Empty(t, store.history)
	})

	t.Run("rejects dispatching a delivered order", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusDelivered)

		err := svc.Dispatch(ctx, id)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, store.deductions)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, _ := newTestService()

		err := svc.Dispatch(ctx, 99)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("activity failure does not fail the command", func(t *testing.T) {
		svc, store, recorder := newTestService()
		recorder.err = errors.New("activity log down")
		id := store.seedOrder(StatusPending)

		require.NoError(t, svc.Dispatch(ctx, id))
		assert.Equal(t, StatusShipped, store.orders[id].Status)
	})
}

// ============================================================================
// CONFIRM DELIVERY TESTS
// ============================================================================

func TestServiceConfirmDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("credits distributor stock once", func(t *testing.T) {
		svc, store, recorder := newTestService()
		id := store.seedOrder(StatusShipped)

		require.NoError(t, svc.ConfirmDelivery(ctx, id))

		assert.Equal(t, StatusDelivered, store.orders[id].Status)
		require.Len(t, store.credits, 1)
		assert.Equal(t, stockMove{3, 7, 5}, store.credits[0])

		assert.Contains(t, recorder.all(), "Central Depot (Acme Traders) | Confirmed delivery of order #1")
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, store, _ := newTestService()

		err := svc.ConfirmDelivery(ctx, 99)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, store.credits)
	})

	t.Run("rejects confirming a pending order", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusPending)

		err := svc.ConfirmDelivery(ctx, id)
		assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
		assert.Empty(t, store.credits)
		assert.Equal(t, StatusPending, store.orders[id].Status)
	})

	t.Run("second confirmation fails without double credit", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusShipped)

		require.NoError(t, svc.ConfirmDelivery(ctx, id))
		err := svc.ConfirmDelivery(ctx, id)
		assert.ErrorIs(t, err, shared.ErrPreconditionFailed)

		assert.Len(t, store.credits, 1)
	})

	t.Run("concurrent confirmations credit exactly once", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusShipped)

		const callers = 8
		var wg sync.WaitGroup
		results := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- svc.ConfirmDelivery(ctx, id)
			}()
		}
		wg.Wait()
		close(results)

		var succeeded int
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Len(t, store.credits, 1)

		history, _ := store.History(ctx, id)
		assert.Len(t, history, 1)
	})
}

// ============================================================================
// STATUS OVERRIDE TESTS
// ============================================================================

func TestServiceSetOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusPending)

		err := svc.SetOrderStatus(ctx, id, Status("Cancelled"))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("cannot skip shipment", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusPending)

		err := svc.SetOrderStatus(ctx, id, StatusDelivered)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, store.credits)
		assert.Equal(t, StatusPending, store.orders[id].Status)
	})

	t.Run("override to shipped deducts stock", func(t *testing.T) {
		svc, store, recorder := newTestService()
		id := store.seedOrder(StatusPending)

		require.NoError(t, svc.SetOrderStatus(ctx, id, StatusShipped))
		assert.Equal(t, StatusShipped, store.orders[id].Status)
		assert.Len(t, store.deductions, 1)
		assert.Contains(t, recorder.all(), "Central Depot (Admin) | Order #1 status set to Shipped")
	})

	t.Run("override to delivered credits stock", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusShipped)

		require.NoError(t, svc.SetOrderStatus(ctx, id, StatusDelivered))
		assert.Equal(t, StatusDelivered, store.orders[id].Status)
		assert.Len(t, store.credits, 1)
	})

	t.Run("cannot move back to pending", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusShipped)

		err := svc.SetOrderStatus(ctx, id, StatusPending)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, StatusShipped, store.orders[id].Status)
	})

	t.Run("delivered is terminal", func(t *testing.T) {
		svc, store, _ := newTestService()
		id := store.seedOrder(StatusDelivered)

		err := svc.SetOrderStatus(ctx, id, StatusShipped)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, store.deductions)
	})
}

// ============================================================================
// QUERY TESTS
// ============================================================================

func TestServiceQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("warehouse orders returns list and summary", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.seedOrder(StatusPending)
		store.seedOrder(StatusPending)
		store.seedOrder(StatusShipped)
		store.seedOrder(StatusDelivered)

		list, summary, err := svc.WarehouseOrders(ctx, 2, ListFilters{})
		require.NoError(t, err)
		assert.Len(t, list, 4)
		assert.Equal(t, StatusSummary{Pending: 2, Shipped: 1, Delivered: 1}, summary)
	})

	t.Run("status filter narrows the list", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.seedOrder(StatusPending)
		store.seedOrder(StatusShipped)

		shipped := StatusShipped
		list, _, err := svc.WarehouseOrders(ctx, 2, ListFilters{Status: &shipped})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, StatusShipped, list[0].Status)
	})

	t.Run("status filter must be a known status", func(t *testing.T) {
		svc, _, _ := newTestService()

		bogus := Status("Bogus")
		_, _, err := svc.WarehouseOrders(ctx, 2, ListFilters{Status: &bogus})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("invalid ids are rejected", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Get(ctx, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.DistributorOrders(ctx, -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.History(ctx, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

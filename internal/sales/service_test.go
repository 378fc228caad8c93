package sales

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milletflow/milletflow/internal/masterdata/distributors"
	"github.com/milletflow/milletflow/internal/masterdata/products"
	"github.com/milletflow/milletflow/internal/masterdata/warehouses"
	"github.com/milletflow/milletflow/internal/shared"
)

// ============================================================================
// FAKES
// ============================================================================

type stockKey struct {
	OwnerID   int64
	ProductID int64
}

// fakeStore keeps sales, purchases and both stock pools in memory. WithTx
// rolls everything back when the callback fails, mirroring commit semantics.
type fakeStore struct {
	mu               sync.Mutex
	sales            []Sale
	purchases        []Purchase
	distributorStock map[stockKey]int64
	warehouseStock   map[stockKey]int64
	nextID           int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		distributorStock: make(map[stockKey]int64),
		warehouseStock:   make(map[stockKey]int64),
		nextID:           1,
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapSales := append([]Sale(nil), f.sales...)
	snapPurchases := append([]Purchase(nil), f.purchases...)
	snapDist := make(map[stockKey]int64, len(f.distributorStock))
	for k, v := range f.distributorStock {
		snapDist[k] = v
	}
	snapWh := make(map[stockKey]int64, len(f.warehouseStock))
	for k, v := range f.warehouseStock {
		snapWh[k] = v
	}
	snapNext := f.nextID

	if err := fn(ctx, &fakeTx{store: f}); err != nil {
		f.sales = snapSales
		f.purchases = snapPurchases
		f.distributorStock = snapDist
		f.warehouseStock = snapWh
		f.nextID = snapNext
		return err
	}
	return nil
}

func (f *fakeStore) ListByDistributor(ctx context.Context, distributorID int64) ([]SaleWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []SaleWithDetails
	for _, s := range f.sales {
		if s.DistributorID == distributorID {
			list = append(list, SaleWithDetails{Sale: s, ProductName: "Millet Flour"})
		}
	}
	return list, nil
}

func (f *fakeStore) Summary(ctx context.Context) ([]SummaryRow, error) {
	return nil, nil
}

func (f *fakeStore) RecentPurchases(ctx context.Context, warehouseID int64) ([]Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []Purchase
	for _, p := range f.purchases {
		if p.WarehouseID == warehouseID {
			list = append(list, p)
		}
	}
	return list, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	sale.ID = t.store.nextID
	t.store.nextID++
	sale.Date = time.Now()
	t.store.sales = append(t.store.sales, sale)
	return sale.ID, nil
}

func (t *fakeTx) InsertPurchase(ctx context.Context, warehouseID int64, customerName string, productID, qty int64) (int64, error) {
	id := t.store.nextID
	t.store.nextID++
	t.store.purchases = append(t.store.purchases, Purchase{
		ID:            id,
		WarehouseID:   warehouseID,
		WarehouseName: "Central Depot",
		CustomerName:  customerName,
		ProductName:   "Millet Flour",
		Quantity:      qty,
		Date:          time.Now(),
	})
	return id, nil
}

func (t *fakeTx) DebitDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	key := stockKey{distributorID, productID}
	if t.store.distributorStock[key] < qty {
		return shared.ErrInsufficientStock
	}
	t.store.distributorStock[key] -= qty
	return nil
}

func (t *fakeTx) DeductWarehouseStockGuarded(ctx context.Context, warehouseID, productID, qty int64) error {
	key := stockKey{warehouseID, productID}
	if t.store.warehouseStock[key] < qty {
		return shared.ErrInsufficientStock
	}
	t.store.warehouseStock[key] -= qty
	return nil
}

type fakeCatalog struct{}

func (fakeCatalog) Get(ctx context.Context, id int64) (products.Product, error) {
	if id != 7 {
		return products.Product{}, shared.ErrNotFound
	}
	return products.Product{ID: 7, Name: "Millet Flour", SKU: "MF-001", Unit: "kg"}, nil
}

type fakeDistributors struct{}

func (fakeDistributors) Get(ctx context.Context, id int64) (distributors.Distributor, error) {
	if id != 3 {
		return distributors.Distributor{}, shared.ErrNotFound
	}
	return distributors.Distributor{ID: 3, Name: "Acme Traders", City: "Pune"}, nil
}

type fakeWarehouses struct{}

func (fakeWarehouses) Get(ctx context.Context, id int64) (warehouses.Warehouse, error) {
	if id != 1 {
		return warehouses.Warehouse{}, shared.ErrNotFound
	}
	return warehouses.Warehouse{ID: 1, Name: "Central Depot", Location: "Nagpur"}, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeRecorder) Record(ctx context.Context, source, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, source+" | "+description)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeRecorder) {
	store := newFakeStore()
	recorder := &fakeRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, fakeCatalog{}, fakeDistributors{}, fakeWarehouses{}, recorder, logger)
	return svc, store, recorder
}

// ============================================================================
// RECORD SALE TESTS
// ============================================================================

func TestServiceRecordSale(t *testing.T) {
	ctx := context.Background()

	t.Run("debits stock and inserts the sale", func(t *testing.T) {
		svc, store, recorder := newTestService()
		store.distributorStock[stockKey{3, 7}] = 10

		id, err := svc.RecordSale(ctx, RecordSaleRequest{DistributorID: 3, ProductID: 7, Quantity: 4})
		require.NoError(t, err)
		assert.NotZero(t, id)

		assert.Equal(t, int64(6), store.distributorStock[stockKey{3, 7}])
		require.Len(t, store.sales, 1)
		assert.Equal(t, int64(4), store.sales[0].Quantity)

		assert.Contains(t, recorder.entries, "Acme Traders (Distributor) | Sold 4 x Millet Flour")
	})

	t.Run("insufficient stock aborts the sale", func(t *testing.T) {
		svc, store, recorder := newTestService()
		store.distributorStock[stockKey{3, 7}] = 2

		_, err := svc.RecordSale(ctx, RecordSaleRequest{DistributorID: 3, ProductID: 7, Quantity: 4})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		assert.Empty(t, store.sales)
		assert.Equal(t, int64(2), store.distributorStock[stockKey{3, 7}])
		assert.Empty(t, recorder.entries)
	})

	t.Run("missing pool entry counts as zero stock", func(t *testing.T) {
		svc, store, _ := newTestService()

		_, err := svc.RecordSale(ctx, RecordSaleRequest{DistributorID: 3, ProductID: 7, Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Empty(t, store.sales)
	})

	t.Run("unknown distributor", func(t *testing.T) {
		svc, store, _ := newTestService()

		_, err := svc.RecordSale(ctx, RecordSaleRequest{DistributorID: 99, ProductID: 7, Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, store.sales)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.RecordSale(ctx, RecordSaleRequest{DistributorID: 3, ProductID: 7, Quantity: 0})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

// ============================================================================
// RECORD PURCHASE TESTS
// ============================================================================

func TestServiceRecordPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts stock and snapshots the purchase", func(t *testing.T) {
		svc, store, recorder := newTestService()
		store.warehouseStock[stockKey{1, 7}] = 10

		id, err := svc.RecordPurchase(ctx, RecordPurchaseRequest{
			WarehouseID:  1,
			CustomerName: "Ravi",
			ProductID:    7,
			Quantity:     3,
		})
		require.NoError(t, err)
		assert.NotZero(t, id)

		assert.Equal(t, int64(7), store.warehouseStock[stockKey{1, 7}])
		require.Len(t, store.purchases, 1)
		assert.Equal(t, "Ravi", store.purchases[0].CustomerName)
		assert.Equal(t, "Millet Flour", store.purchases[0].ProductName)

		assert.Contains(t, recorder.entries, "Central Depot (Ravi) | Purchased 3 x Millet Flour")
	})

	t.Run("insufficient stock aborts the purchase", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.warehouseStock[stockKey{1, 7}] = 1

		_, err := svc.RecordPurchase(ctx, RecordPurchaseRequest{
			WarehouseID:  1,
			CustomerName: "Ravi",
			ProductID:    7,
			Quantity:     3,
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Empty(t, store.purchases)
		assert.Equal(t, int64(1), store.warehouseStock[stockKey{1, 7}])
	})

	t.Run("unknown warehouse", func(t *testing.T) {
		svc, store, _ := newTestService()

		_, err := svc.RecordPurchase(ctx, RecordPurchaseRequest{
			WarehouseID:  42,
			CustomerName: "Ravi",
			ProductID:    7,
			Quantity:     1,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, store.purchases)
	})
}

// ============================================================================
// QUERY TESTS
// ============================================================================

func TestServiceQueriesValidateIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.DistributorSales(ctx, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.RecentPurchases(ctx, -1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

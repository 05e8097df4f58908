package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mirrors the repo's transactional behavior: Create either applies
// the order, items and reservations together or leaves everything untouched.
type fakeStore struct {
	mu       sync.Mutex
	stock    map[int64]int
	stockMin map[int64]int
	orders   map[int64]*Order
	sales    []salesRow
	nextID   int64
}

type salesRow struct {
	orderID       int64
	clientID      int64
	kind          catalog.Kind
	itemID        int64
	quantity      int
	unitPrice     decimal.Decimal
	total         decimal.Decimal
	paymentMethod string
}

func newFakeStore(stock, stockMin map[int64]int) *fakeStore {
	return &fakeStore{stock: stock, stockMin: stockMin, orders: map[int64]*Order{}}
}

func (s *fakeStore) Create(_ context.Context, o *Order) ([]LowStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// stage reservations so a failure applies nothing
	staged := map[int64]int{}
	for k, v := range s.stock {
		staged[k] = v
	}
	var low []LowStock
	for _, it := range o.Items {
		if it.Kind != catalog.KindProduct {
			continue
		}
		if staged[it.ItemID] < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: it.ItemID,
				Requested: it.Quantity,
				Available: staged[it.ItemID],
			}
		}
		staged[it.ItemID] -= it.Quantity
		if staged[it.ItemID] < s.stockMin[it.ItemID] {
			low = append(low, LowStock{ProductID: it.ItemID})
		}
	}

	s.stock = staged
	s.nextID++
	o.ID = s.nextID
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	s.orders[o.ID] = &cp
	return low, nil
}

func (s *fakeStore) Confirm(_ context.Context, orderID int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	if !CanTransition(o.Status, StatusPaid) {
		return nil, ErrInvalidState
	}
	o.Status = StatusPaid
	for _, it := range o.Items {
		s.sales = append(s.sales, salesRow{
			orderID:       o.ID,
			clientID:      o.ClientID,
			kind:          it.Kind,
			itemID:        it.ItemID,
			quantity:      it.Quantity,
			unitPrice:     it.UnitPrice,
			total:         it.LineTotal,
			paymentMethod: o.PaymentMethod,
		})
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) Cancel(_ context.Context, orderID int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	o.Status = StatusCancelled
	for _, it := range o.Items {
		if it.Kind == catalog.KindProduct {
			s.stock[it.ItemID] += it.Quantity
		}
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) Status(_ context.Context, orderID int64) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return "", ErrNotFound
	}
	return o.Status, nil
}

func (s *fakeStore) snapshot() (map[int64]int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock := map[int64]int{}
	for k, v := range s.stock {
		stock[k] = v
	}
	return stock, len(s.orders)
}

type fakeCatalog struct {
	services map[int64]catalog.Service
	products map[int64]catalog.Product
	store    *fakeStore // live stock, so snapshots see reservations
}

func (c *fakeCatalog) ActiveService(_ context.Context, id int64) (catalog.Service, error) {
	s, ok := c.services[id]
	if !ok || !s.Active {
		return catalog.Service{}, catalog.ErrNotFound
	}
	return s, nil
}

func (c *fakeCatalog) ActiveProduct(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok || !p.Active {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if c.store != nil {
		c.store.mu.Lock()
		p.Stock = c.store.stock[id]
		c.store.mu.Unlock()
	}
	return p, nil
}

type fakeCarts struct {
	mu      sync.Mutex
	cleared []int64
}

func (c *fakeCarts) Clear(_ context.Context, clientID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, clientID)
	return nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture() (*Service, *fakeStore, *fakeCarts) {
	store := newFakeStore(map[int64]int{5: 2, 6: 20, 7: 10}, map[int64]int{5: 1, 6: 10, 7: 0})
	cat := &fakeCatalog{
		services: map[int64]catalog.Service{
			1: {ID: 1, Name: "Fade Cut", Price: price("45.00"), Active: true},
			2: {
				ID: 2, Name: "Cut + Beard", Price: price("65.00"), Active: true,
				OnPromotion: true,
				PromoPrice:  decimal.NewNullDecimal(price("55.00")),
			},
		},
		products: map[int64]catalog.Product{
			5: {ID: 5, Name: "Beard Oil", Price: price("40.00"), Active: true},
			6: {ID: 6, Name: "Pomade", Price: price("38.50"), Active: true},
			7: {ID: 7, Name: "Old Wax", Price: price("20.00"), Active: false},
		},
		store: store,
	}
	carts := &fakeCarts{}
	return &Service{Store: store, Catalog: cat, Carts: carts}, store, carts
}

func TestFinalize_ComputesTotalsAndReservesStock(t *testing.T) {
	svc, store, carts := newFixture()

	o, low, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindService, ID: 1, Quantity: 1},
		{Kind: catalog.KindProduct, ID: 6, Quantity: 2},
	}, "pix", "ring the bell")
	require.NoError(t, err)

	assert.Equal(t, StatusAwaitingConfirmation, o.Status)
	assert.True(t, o.Total.Equal(price("122.00")), "total %s", o.Total) // 45 + 2*38.50

	// invariant: total equals the sum of line totals
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal)
		assert.True(t, it.LineTotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))))
	}
	assert.True(t, o.Total.Equal(sum))

	// name snapshots
	assert.Equal(t, "Fade Cut", o.Items[0].Name)
	assert.Equal(t, "Pomade", o.Items[1].Name)

	stock, _ := store.snapshot()
	assert.Equal(t, 18, stock[6], "stock reserved at finalize")
	assert.Equal(t, []int64{10}, carts.cleared)
	assert.Empty(t, low, "18 is not below the minimum of 10")
}

func TestFinalize_UsesPromoPriceWhenActive(t *testing.T) {
	svc, _, _ := newFixture()

	o, _, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindService, ID: 2, Quantity: 1},
	}, "cash", "")
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(price("55.00")), "total %s", o.Total)
}

func TestFinalize_ValidationFailures(t *testing.T) {
	svc, store, _ := newFixture()
	before, ordersBefore := store.snapshot()

	tests := []struct {
		name  string
		id    int64
		items cart.Cart
	}{
		{"missing client", 0, cart.Cart{{Kind: catalog.KindProduct, ID: 5, Quantity: 1}}},
		{"empty cart", 10, cart.Cart{}},
		{"bad kind", 10, cart.Cart{{Kind: "voucher", ID: 5, Quantity: 1}}},
		{"zero quantity", 10, cart.Cart{{Kind: catalog.KindProduct, ID: 5, Quantity: 0}}},
		{"over cap", 10, cart.Cart{{Kind: catalog.KindProduct, ID: 6, Quantity: 101}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Finalize(context.Background(), tc.id, tc.items, "cash", "")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	after, ordersAfter := store.snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, ordersBefore, ordersAfter)
}

func TestFinalize_UnknownOrInactiveItems(t *testing.T) {
	svc, _, _ := newFixture()

	_, _, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindProduct, ID: 99, Quantity: 1},
	}, "cash", "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, _, err = svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindProduct, ID: 7, Quantity: 1}, // inactive
	}, "cash", "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestFinalize_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	svc, store, carts := newFixture()
	before, ordersBefore := store.snapshot()

	// product 5 has stock 2, cart wants 3
	_, _, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindService, ID: 1, Quantity: 1},
		{Kind: catalog.KindProduct, ID: 5, Quantity: 3},
	}, "cash", "")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(5), stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	after, ordersAfter := store.snapshot()
	assert.Equal(t, before, after, "stock unchanged after failed finalize")
	assert.Equal(t, ordersBefore, ordersAfter, "no order persisted")
	assert.Empty(t, carts.cleared, "cart kept on failure")
}

func TestFinalize_ConcurrentLastUnit_ExactlyOneSucceeds(t *testing.T) {
	svc, store, _ := newFixture()
	store.mu.Lock()
	store.stock[5] = 1
	store.mu.Unlock()

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(client int64) {
			defer wg.Done()
			_, _, err := svc.Finalize(context.Background(), client, cart.Cart{
				{Kind: catalog.KindProduct, ID: 5, Quantity: 1},
			}, "cash", "")
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	okCount, rejected := 0, 0
	for err := range errs {
		var stockErr *InsufficientStockError
		switch {
		case err == nil:
			okCount++
		case errors.As(err, &stockErr):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, n-1, rejected)

	stock, _ := store.snapshot()
	assert.Equal(t, 0, stock[5])
}

func TestFinalize_ReportsLowStock(t *testing.T) {
	svc, _, _ := newFixture()

	// product 6: stock 20, min 10; taking 15 leaves 5
	_, low, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindProduct, ID: 6, Quantity: 15},
	}, "cash", "")
	require.NoError(t, err)

	require.Len(t, low, 1)
	assert.Equal(t, int64(6), low[0].ProductID)
}

func TestFinalize_DefaultsPaymentMethodAndClipsNote(t *testing.T) {
	svc, _, _ := newFixture()

	o, _, err := svc.Finalize(context.Background(), 10, cart.Cart{
		{Kind: catalog.KindService, ID: 1, Quantity: 1},
	}, "", strings.Repeat("n", 600))
	require.NoError(t, err)

	assert.Equal(t, "cash", o.PaymentMethod)
	assert.Len(t, o.Note, 500)
}

func finalizeOne(t *testing.T, svc *Service, items cart.Cart) *Order {
	t.Helper()
	o, _, err := svc.Finalize(context.Background(), 10, items, "card", "")
	require.NoError(t, err)
	return o
}

func TestConfirmPayment_WritesSalesLedgerOncePerItem(t *testing.T) {
	svc, store, _ := newFixture()
	o := finalizeOne(t, svc, cart.Cart{
		{Kind: catalog.KindService, ID: 1, Quantity: 1},
		{Kind: catalog.KindProduct, ID: 6, Quantity: 2},
	})

	confirmed, err := svc.ConfirmPayment(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, confirmed.Status)

	require.Len(t, store.sales, 2)
	for i, row := range store.sales {
		assert.Equal(t, o.ID, row.orderID)
		assert.Equal(t, int64(10), row.clientID)
		assert.Equal(t, "card", row.paymentMethod)
		assert.Equal(t, o.Items[i].ItemID, row.itemID)
		assert.True(t, row.total.Equal(o.Items[i].LineTotal))
	}

	// stock already reserved at create; confirm must not touch it
	stock, _ := store.snapshot()
	assert.Equal(t, 18, stock[6])
}

func TestConfirmPayment_TerminalStatesReject(t *testing.T) {
	svc, _, _ := newFixture()
	o := finalizeOne(t, svc, cart.Cart{{Kind: catalog.KindService, ID: 1, Quantity: 1}})

	_, err := svc.ConfirmPayment(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.CancelOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	svc, _, _ := newFixture()
	_, err := svc.ConfirmPayment(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder_RestoresExactlyTheReservedQuantities(t *testing.T) {
	svc, store, _ := newFixture()
	before, _ := store.snapshot()

	o := finalizeOne(t, svc, cart.Cart{
		{Kind: catalog.KindService, ID: 1, Quantity: 1},
		{Kind: catalog.KindProduct, ID: 5, Quantity: 2},
		{Kind: catalog.KindProduct, ID: 6, Quantity: 4},
	})

	mid, _ := store.snapshot()
	assert.Equal(t, before[5]-2, mid[5])
	assert.Equal(t, before[6]-4, mid[6])

	cancelled, err := svc.CancelOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	after, _ := store.snapshot()
	assert.Equal(t, before, after, "restitution returns exactly what was reserved")

	_, err = svc.CancelOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.ConfirmPayment(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGetStatus(t *testing.T) {
	svc, _, _ := newFixture()
	o := finalizeOne(t, svc, cart.Cart{{Kind: catalog.KindService, ID: 1, Quantity: 1}})

	st, err := svc.GetStatus(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingConfirmation, st)

	_, err = svc.GetStatus(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetStatus(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

package orderControllers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stubStore keeps orders in memory and enforces the same conditional credit
// reservation the database store does.
type stubStore struct {
	mu          sync.Mutex
	creditLimit decimal.Decimal
	creditUsed  decimal.Decimal
	orders      map[uint]*models.Order
	items       map[uint][]models.OrderItem
	nextID      uint

	createOrderErrs []error // popped one per CreateOrder call
	createItemsErr  error
	reserveErr      error
	userErr         error
}

func newStubStore(limit, used string) *stubStore {
	return &stubStore{
		creditLimit: dec(limit),
		creditUsed:  dec(used),
		orders:      make(map[uint]*models.Order),
		items:       make(map[uint][]models.OrderItem),
	}
}

func (s *stubStore) AvailableCredit(_ context.Context, _ string) (decimal.Decimal, error) {
	if s.userErr != nil {
		return decimal.Zero, s.userErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creditLimit.Sub(s.creditUsed), nil
}

func (s *stubStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.createOrderErrs) > 0 {
		err := s.createOrderErrs[0]
		s.createOrderErrs = s.createOrderErrs[1:]
		if err != nil {
			return err
		}
	}
	s.nextID++
	o.ID = s.nextID
	s.orders[o.ID] = o
	return nil
}

func (s *stubStore) CreateOrderItems(_ context.Context, items []models.OrderItem) error {
	if s.createItemsErr != nil {
		return s.createItemsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) > 0 {
		s.items[items[0].OrderID] = items
	}
	return nil
}

func (s *stubStore) ReserveCredit(_ context.Context, _ string, amount decimal.Decimal) error {
	if s.reserveErr != nil {
		return s.reserveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditUsed.Add(amount).GreaterThan(s.creditLimit) {
		return ErrInsufficientCredit
	}
	s.creditUsed = s.creditUsed.Add(amount)
	return nil
}

func (s *stubStore) DeleteOrderItems(_ context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, orderID)
	return nil
}

func (s *stubStore) DeleteOrder(_ context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, orderID)
	return nil
}

func (s *stubStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func TestCheckoutHappyPath(t *testing.T) {
	store := newStubStore("100.00", "50.00")

	var published *models.Order
	bus := events.NewBus(zap.NewNop())
	bus.Subscribe(events.TopicOrderPlaced, func(payload any) {
		published = payload.(*models.Order)
	})

	req := CheckoutRequest{
		Items:           []CheckoutItem{{ProductID: 7, Price: dec("10.00"), Quantity: 3}},
		ShippingAddress: "1 Main St",
	}
	result, err := Checkout(context.Background(), store, bus, zap.NewNop(), "user-1", req)
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(dec("30.00")), "total = %s", result.Total)
	assert.True(t, store.creditUsed.Equal(dec("80.00")), "credit used = %s", store.creditUsed)
	assert.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].TotalPrice.Equal(dec("30.00")))
	assert.Regexp(t, `^ORD-\d{1,6}-\d{4}$`, result.OrderNumber)
	assert.Equal(t, 1, store.orderCount())

	require.NotNil(t, published)
	assert.Equal(t, result.OrderID, published.ID)
}

func TestCheckoutDropsInvalidLines(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	req := CheckoutRequest{Items: []CheckoutItem{
		{ProductID: 7, Price: dec("10.00"), Quantity: 2},
		{ProductID: 0, Price: dec("5.00"), Quantity: 1},
		{ProductID: 9, Price: dec("5.00"), Quantity: 0},
		{ProductID: -3, Price: dec("5.00"), Quantity: 1},
	}}

	result, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	require.NoError(t, err)

	assert.Len(t, result.Items, 1)
	assert.True(t, result.Total.Equal(dec("20.00")), "total = %s", result.Total)
}

func TestCheckoutNoValidItems(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 0, Price: dec("5.00"), Quantity: 1}}}

	_, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	assert.ErrorIs(t, err, ErrNoValidItems)
	assert.Equal(t, 0, store.orderCount())
}

func TestCheckoutInsufficientCredit(t *testing.T) {
	store := newStubStore("100.00", "80.00")
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 7, Price: dec("10.00"), Quantity: 3}}}

	_, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	// Rejected before any write.
	assert.Equal(t, 0, store.orderCount())
	assert.True(t, store.creditUsed.Equal(dec("80.00")))
}

func TestCheckoutItemInsertFailureDeletesOrder(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	store.createItemsErr = errors.New("insert failed")
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 7, Price: dec("10.00"), Quantity: 1}}}

	_, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	assert.ErrorIs(t, err, ErrItemInsert)
	assert.Equal(t, 0, store.orderCount())
	assert.True(t, store.creditUsed.IsZero())
}

func TestCheckoutCreditFailureDeletesItemsAndOrder(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	store.reserveErr = errors.New("connection reset")
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 7, Price: dec("10.00"), Quantity: 1}}}

	_, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	assert.ErrorIs(t, err, ErrCreditUpdate)
	assert.Equal(t, 0, store.orderCount())
	assert.Empty(t, store.items)
}

func TestCheckoutDuplicateOrderNumberRetries(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	store.createOrderErrs = []error{ErrDuplicateOrderNum}
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 7, Price: dec("10.00"), Quantity: 1}}}

	result, err := Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, store.orderCount())
	assert.NotEmpty(t, result.OrderNumber)
}

// Two concurrent checkouts that each pass the availability pre-check must not
// jointly overdraw the credit line; the conditional reservation lets exactly
// one through.
func TestCheckoutConcurrentDoesNotOverdraw(t *testing.T) {
	store := newStubStore("100.00", "0.00")
	req := CheckoutRequest{Items: []CheckoutItem{{ProductID: 7, Price: dec("60.00"), Quantity: 1}}}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = Checkout(context.Background(), store, nil, zap.NewNop(), "user-1", req)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientCredit):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.True(t, store.creditUsed.Equal(dec("60.00")), "credit used = %s", store.creditUsed)
	assert.Equal(t, 1, store.orderCount())
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := GenerateOrderNumber()
		assert.Regexp(t, `^ORD-\d{1,6}-\d{4}$`, n)
		seen[n] = true
	}
	// Collisions are possible but should be rare within a single second.
	assert.Greater(t, len(seen), 1)
}

package orderControllers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/models"
	"github.com/creditbazaar/marketplace-api/pricing"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrNoValidItems       = errors.New("no valid items in cart")
	ErrItemInsert         = errors.New("failed to create order items")
	ErrCreditUpdate       = errors.New("failed to update credit")
	ErrDuplicateOrderNum  = errors.New("order number already exists")
)

// CheckoutItem is one cart line as submitted by the storefront.
type CheckoutItem struct {
	ProductID int64           `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" binding:"required"`
	ShippingAddress string         `json:"shipping_address"`
	BillingAddress  string         `json:"billing_address"`
}

// CheckoutResult is what the storefront needs to render the confirmation page.
type CheckoutResult struct {
	OrderID     uint               `json:"id"`
	OrderNumber string             `json:"order_number"`
	Total       decimal.Decimal    `json:"total"`
	Items       []models.OrderItem `json:"items"`
	UserID      string             `json:"user_id"`
}

// Store is the persistence surface the checkout workflow runs against.
// ReserveCredit must be atomic and conditional: it may only take effect when
// credit_used + amount <= credit_limit, and must return ErrInsufficientCredit
// otherwise. That single property is what makes two concurrent checkouts for
// the same user unable to jointly overdraw the credit line.
type Store interface {
	AvailableCredit(ctx context.Context, userID string) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	ReserveCredit(ctx context.Context, userID string, amount decimal.Decimal) error
	DeleteOrderItems(ctx context.Context, orderID uint) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

// Checkout places an order against the user's credit line.
//
// Lines with a non-positive product id or quantity are dropped before any
// write happens. After the Order row exists, every failure compensates by
// deleting what was created, in reverse creation order; compensation failures
// are logged and swallowed, the original error wins.
func Checkout(ctx context.Context, store Store, bus *events.Bus, log *zap.Logger, userID string, req CheckoutRequest) (*CheckoutResult, error) {
	valid := make([]CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			continue
		}
		valid = append(valid, it)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidItems
	}

	total := decimal.Zero
	for _, it := range valid {
		total = total.Add(pricing.LineTotal(it.Price, it.Quantity))
	}

	available, err := store.AvailableCredit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if available.LessThan(total) {
		return nil, ErrInsufficientCredit
	}

	order := &models.Order{
		OrderNumber:     GenerateOrderNumber(),
		UserID:          userID,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	}
	if err := store.CreateOrder(ctx, order); err != nil {
		// Order numbers are timestamp+random; a collision gets one retry.
		if errors.Is(err, ErrDuplicateOrderNum) {
			order.OrderNumber = GenerateOrderNumber()
			err = store.CreateOrder(ctx, order)
		}
		if err != nil {
			return nil, err
		}
	}

	items := make([]models.OrderItem, 0, len(valid))
	for _, it := range valid {
		items = append(items, models.OrderItem{
			OrderID:    order.ID,
			ProductID:  uint(it.ProductID),
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
			TotalPrice: pricing.LineTotal(it.Price, it.Quantity),
		})
	}
	if err := store.CreateOrderItems(ctx, items); err != nil {
		if derr := store.DeleteOrder(ctx, order.ID); derr != nil {
			log.Error("checkout: compensating order delete failed",
				zap.Uint("order_id", order.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("%w: %v", ErrItemInsert, err)
	}

	if err := store.ReserveCredit(ctx, userID, total); err != nil {
		if derr := store.DeleteOrderItems(ctx, order.ID); derr != nil {
			log.Error("checkout: compensating items delete failed",
				zap.Uint("order_id", order.ID), zap.Error(derr))
		}
		if derr := store.DeleteOrder(ctx, order.ID); derr != nil {
			log.Error("checkout: compensating order delete failed",
				zap.Uint("order_id", order.ID), zap.Error(derr))
		}
		if errors.Is(err, ErrInsufficientCredit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCreditUpdate, err)
	}

	order.Items = items
	if bus != nil {
		bus.Publish(events.TopicOrderPlaced, order)
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       total,
		Items:       items,
		UserID:      userID,
	}, nil
}

// GenerateOrderNumber builds ORD-<timestamp-suffix>-<random>. The database
// carries a unique index on the column; Checkout retries once on collision.
func GenerateOrderNumber() string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 10000)
	}
	return fmt.Sprintf("ORD-%s-%04d", ts, n.Int64())
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corregomitas/storefront/internal/catalog"
)

// ProductStore is the slice of the catalog the placement flow needs.
// DecrementStock must be conditional: it fails with
// catalog.ErrNotEnoughStock instead of driving stock negative.
type ProductStore interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

type OrderStore interface {
	Insert(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]OrderWithUser, error)
	UpdateStatus(ctx context.Context, id string, s Status) (*Order, error)
	// GetStatus returns the order's status and owning user id.
	GetStatus(ctx context.Context, id string) (Status, string, error)
}

type Service struct {
	Products ProductStore
	Orders   OrderStore
}

// PlaceOrder converts a cart into a committed order.
//
// Inventory is reserved with conditional decrements BEFORE the order row
// is written, and every applied decrement is compensated if a later step
// fails, so the effects are all-or-nothing per order and stock never
// goes negative under concurrent placements.
//
// The total is recomputed from current catalog prices; a client-supplied
// total that disagrees is rejected rather than trusted.
func (s *Service) PlaceOrder(ctx context.Context, userID string, items []LineItem, claimedTotal decimal.Decimal) (*Order, error) {
	if len(items) == 0 {
		return nil, validationf("order has no items")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, validationf("item is missing a product id")
		}
		if it.Qty < 1 {
			return nil, validationf("quantity for product %s must be at least 1", it.ProductID)
		}
		if seen[it.ProductID] {
			return nil, validationf("product %s appears more than once", it.ProductID)
		}
		seen[it.ProductID] = true
	}

	// Price lookup and first availability check. Nothing is mutated yet,
	// so any failure here leaves every product untouched.
	total := decimal.Zero
	orderItems := make([]OrderItem, 0, len(items))
	for _, it := range items {
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("read product %s: %w", it.ProductID, err)
		}
		if p.Stock < it.Qty {
			return nil, &InsufficientStockError{Product: p.Name, Available: p.Stock}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
		orderItems = append(orderItems, OrderItem{ProductID: it.ProductID, Qty: it.Qty, UnitPrice: p.Price})
	}

	if !claimedTotal.Equal(total) {
		return nil, validationf("total %s does not match priced contents (%s)", claimedTotal, total)
	}

	// Reserve stock. The decrement is conditional at the store, so a
	// race that slipped past the check above fails here instead of
	// overselling; anything already decremented is given back.
	for i, it := range items {
		if err := s.Products.DecrementStock(ctx, it.ProductID, it.Qty); err != nil {
			s.release(ctx, items[:i])
			if errors.Is(err, catalog.ErrNotEnoughStock) {
				name, avail := it.ProductID, 0
				if p, gerr := s.Products.Get(ctx, it.ProductID); gerr == nil {
					name, avail = p.Name, p.Stock
				}
				return nil, &InsufficientStockError{Product: name, Available: avail}
			}
			return nil, fmt.Errorf("reserve stock for %s: %w", it.ProductID, err)
		}
	}

	o := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     orderItems,
		Total:     total,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		s.release(ctx, items)
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// release compensates already-applied decrements.
func (s *Service) release(ctx context.Context, items []LineItem) {
	for _, it := range items {
		if err := s.Products.IncrementStock(ctx, it.ProductID, it.Qty); err != nil {
			log.Printf("release stock for %s: %v", it.ProductID, err)
		}
	}
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]OrderWithUser, error) {
	return s.Orders.ListAll(ctx)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status string) (*Order, error) {
	st := Status(status)
	if !st.Valid() {
		return nil, &InvalidStatusError{Status: status}
	}
	return s.Orders.UpdateStatus(ctx, orderID, st)
}

func (s *Service) GetStatus(ctx context.Context, orderID string) (Status, string, error) {
	return s.Orders.GetStatus(ctx, orderID)
}

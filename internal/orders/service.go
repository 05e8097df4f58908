package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/shopspring/decimal"
)

const maxNoteLen = 500

type Store interface {
	Create(ctx context.Context, o *Order) ([]LowStock, error)
	Confirm(ctx context.Context, orderID int64) (*Order, error)
	Cancel(ctx context.Context, orderID int64) (*Order, error)
	Status(ctx context.Context, orderID int64) (Status, error)
}

type CatalogReader interface {
	ActiveService(ctx context.Context, id int64) (catalog.Service, error)
	ActiveProduct(ctx context.Context, id int64) (catalog.Product, error)
}

type CartStore interface {
	Clear(ctx context.Context, clientID int64) error
}

type Service struct {
	Store   Store
	Catalog CatalogReader
	Carts   CartStore
}

// Finalize turns a cart into a durable order. Prices are snapshotted from
// the catalog (promo price when active), totals computed here, and the
// order, its items and the stock reservations commit as one unit through
// the store. The snapshot stock check is only a fast fail; the reservation
// inside the transaction is authoritative.
func (s *Service) Finalize(ctx context.Context, clientID int64, items cart.Cart, paymentMethod, note string) (*Order, []LowStock, error) {
	if clientID <= 0 {
		return nil, nil, fmt.Errorf("%w: missing client id", ErrValidation)
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: empty cart", ErrValidation)
	}
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	lines := make([]OrderItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		if !it.Kind.Valid() {
			return nil, nil, fmt.Errorf("%w: bad item kind %q", ErrValidation, it.Kind)
		}
		if it.Quantity < 1 || it.Quantity > cart.MaxQuantity {
			return nil, nil, fmt.Errorf("%w: quantity %d out of range for item %d", ErrValidation, it.Quantity, it.ID)
		}

		var (
			name string
			unit decimal.Decimal
		)
		switch it.Kind {
		case catalog.KindService:
			svc, err := s.Catalog.ActiveService(ctx, it.ID)
			if err != nil {
				return nil, nil, err
			}
			name, unit = svc.Name, svc.EffectivePrice()
		case catalog.KindProduct:
			p, err := s.Catalog.ActiveProduct(ctx, it.ID)
			if err != nil {
				return nil, nil, err
			}
			if p.Stock < it.Quantity {
				return nil, nil, &InsufficientStockError{ProductID: it.ID, Requested: it.Quantity, Available: p.Stock}
			}
			name, unit = p.Name, p.EffectivePrice()
		}

		lineTotal := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, OrderItem{
			Kind:      it.Kind,
			ItemID:    it.ID,
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	o := &Order{
		ClientID:      clientID,
		Total:         total,
		Status:        StatusAwaitingConfirmation,
		PaymentMethod: paymentMethod,
		Note:          clipNote(note),
		Items:         lines,
	}
	low, err := s.Store.Create(ctx, o)
	if err != nil {
		return nil, nil, err
	}

	// The order is committed; a stale cart is an inconvenience, not a
	// consistency problem.
	if err := s.Carts.Clear(ctx, clientID); err != nil {
		log.Printf("clear cart for client %d: %v", clientID, err)
	}
	return o, low, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, orderID int64) (*Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: missing order id", ErrValidation)
	}
	return s.Store.Confirm(ctx, orderID)
}

func (s *Service) CancelOrder(ctx context.Context, orderID int64) (*Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: missing order id", ErrValidation)
	}
	return s.Store.Cancel(ctx, orderID)
}

func (s *Service) GetStatus(ctx context.Context, orderID int64) (Status, error) {
	if orderID <= 0 {
		return "", fmt.Errorf("%w: missing order id", ErrValidation)
	}
	return s.Store.Status(ctx, orderID)
}

func clipNote(s string) string {
	if len(s) > maxNoteLen {
		return s[:maxNoteLen]
	}
	return s
}

package orders

import (
	"time"

	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/inventory"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int64
	ClientID      int64
	Total         decimal.Decimal
	Status        Status
	PaymentMethod string
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Items is populated on finalize; reads that only need the status do
	// not carry it.
	Items []OrderItem
}

// OrderItem snapshots name and unit price at finalize time; later catalog
// renames or price changes do not reach back into it.
type OrderItem struct {
	ID        int64
	OrderID   int64
	Kind      catalog.Kind
	ItemID    int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// LowStock marks a product whose reservation pushed it under its minimum.
type LowStock struct {
	ProductID int64
	Level     inventory.Level
}

package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// Appointment rows are never deleted; the only mutation is the status
// transition to cancelled.
type Appointment struct {
	ID        int64
	ClientID  int64
	BarberID  int64
	ServiceID int64
	StartsAt  time.Time
	Status    Status
	Note      string
	// Price is captured at booking time and does not follow later catalog
	// changes.
	Price     decimal.Decimal
	CreatedAt time.Time
}

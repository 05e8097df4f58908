package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeAppointmentBooked = "AppointmentBooked"
	TypeOrderCreated      = "OrderCreated"
	TypeOrderPaid         = "OrderPaid"
	TypeOrderCancelled    = "OrderCancelled"
	TypeStockLow          = "StockLow"
)

const (
	TopicAppointmentBooked = "appointment.booked"
	TopicOrderCreated      = "order.created"
	TopicOrderPaid         = "order.paid"
	TopicOrderCancelled    = "order.cancelled"
	TopicStockLow          = "stock.low"
)

// PartitionKey keeps every event of one aggregate on one partition so
// consumers see them in order.
func PartitionKey(id int64) []byte {
	return strconv.AppendInt(nil, id, 10)
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, traceID, correlationID string, payload json.RawMessage) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

type AppointmentBookedPayload struct {
	AppointmentID int64           `json:"appointment_id"`
	ClientID      int64           `json:"client_id"`
	BarberID      int64           `json:"barber_id"`
	ServiceID     int64           `json:"service_id"`
	StartsAt      time.Time       `json:"starts_at"`
	Price         decimal.Decimal `json:"price"`
}

type OrderItemPayload struct {
	Kind      string          `json:"kind"`
	ItemID    int64           `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID  int64              `json:"order_id"`
	ClientID int64              `json:"client_id"`
	Items    []OrderItemPayload `json:"items"`
	Total    decimal.Decimal    `json:"total"`
}

type OrderPaidPayload struct {
	OrderID       int64           `json:"order_id"`
	ClientID      int64           `json:"client_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
}

type OrderCancelledPayload struct {
	OrderID  int64 `json:"order_id"`
	ClientID int64 `json:"client_id"`
}

type StockLowPayload struct {
	ProductID int64 `json:"product_id"`
	Stock     int   `json:"stock"`
	StockMin  int   `json:"stock_min"`
}

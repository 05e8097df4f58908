// Package notifier turns engine events into admin notification log lines.
// It replaces polling the database for fresh appointments: the api emits,
// this consumes.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/barbearia-premium/engine/internal/events"
	kafkax "github.com/barbearia-premium/engine/internal/kafka"
	"github.com/barbearia-premium/engine/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is the consumer handler for every engine topic.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// at-least-once delivery: drop replays by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case events.TypeAppointmentBooked:
		p, err := kafkax.UnwrapPayload[events.AppointmentBookedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("new appointment %d: barber %d at %s (client %d, %s)",
			p.AppointmentID, p.BarberID, p.StartsAt.Format("2006-01-02 15:04"), p.ClientID, p.Price)
	case events.TypeOrderCreated:
		p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("new order %d awaiting confirmation: client %d, %d lines, total %s",
			p.OrderID, p.ClientID, len(p.Items), p.Total)
	case events.TypeOrderPaid:
		p, err := kafkax.UnwrapPayload[events.OrderPaidPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("order %d paid: %s via %s", p.OrderID, p.Total, p.PaymentMethod)
	case events.TypeOrderCancelled:
		p, err := kafkax.UnwrapPayload[events.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("order %d cancelled, stock returned", p.OrderID)
	case events.TypeStockLow:
		p, err := kafkax.UnwrapPayload[events.StockLowPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("stock alert: product %d at %d (minimum %d)", p.ProductID, p.Stock, p.StockMin)
	}
	return nil
}

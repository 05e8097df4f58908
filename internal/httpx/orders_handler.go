package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/events"
	kafkax "github.com/barbearia-premium/engine/internal/kafka"
	"github.com/barbearia-premium/engine/internal/orders"
	"github.com/barbearia-premium/engine/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersHandler struct {
	Svc   *orders.Service
	Carts *cart.Store
	Redis *redis.Client

	Created   *kafkax.Producer // order.created
	Paid      *kafkax.Producer // order.paid
	Cancelled *kafkax.Producer // order.cancelled
	StockLow  *kafkax.Producer // stock.low

	Service string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.finalize)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/confirm", h.confirm)
	r.Post("/orders/{id}/cancel", h.cancel)
}

type finalizeReq struct {
	ClientID      int64     `json:"client_id"`
	Items         cart.Cart `json:"items"`
	PaymentMethod string    `json:"payment_method"`
	Note          string    `json:"note"`
}

func (h *OrdersHandler) finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Items may be posted directly or left empty to check out the stored
	// cart.
	items := req.Items
	if len(items) == 0 && h.Carts != nil {
		var err error
		items, err = h.Carts.Get(ctx, req.ClientID)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	o, low, err := h.Svc.Finalize(ctx, req.ClientID, items, req.PaymentMethod, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.publishCreated(r, o)
	for _, ls := range low {
		h.publishStockLow(r, ls)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order_id": o.ID, "status": o.Status})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	status, err := h.Svc.GetStatus(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, id, status)
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (h *OrdersHandler) confirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.ConfirmPayment(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	if h.Paid != nil {
		ev := events.NewEnvelope(events.TypeOrderPaid, h.Service,
			r.Header.Get("X-Request-Id"), strconv.FormatInt(o.ID, 10),
			kafkax.MustMarshal(events.OrderPaidPayload{
				OrderID:       o.ID,
				ClientID:      o.ClientID,
				Total:         o.Total,
				PaymentMethod: o.PaymentMethod,
			}))
		h.Paid.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev), eventHeaders(events.TypeOrderPaid)...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": o.Status})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.CancelOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	if h.Cancelled != nil {
		ev := events.NewEnvelope(events.TypeOrderCancelled, h.Service,
			r.Header.Get("X-Request-Id"), strconv.FormatInt(o.ID, 10),
			kafkax.MustMarshal(events.OrderCancelledPayload{OrderID: o.ID, ClientID: o.ClientID}))
		h.Cancelled.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev), eventHeaders(events.TypeOrderCancelled)...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": o.Status})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID int64, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCreated(r *http.Request, o *orders.Order) {
	if h.Created == nil {
		return
	}
	items := make([]events.OrderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderItemPayload{
			Kind:      string(it.Kind),
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	ev := events.NewEnvelope(events.TypeOrderCreated, h.Service,
		r.Header.Get("X-Request-Id"), strconv.FormatInt(o.ID, 10),
		kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:  o.ID,
			ClientID: o.ClientID,
			Items:    items,
			Total:    o.Total,
		}))
	h.Created.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev), eventHeaders(events.TypeOrderCreated)...)
}

func (h *OrdersHandler) publishStockLow(r *http.Request, ls orders.LowStock) {
	if h.StockLow == nil {
		return
	}
	ev := events.NewEnvelope(events.TypeStockLow, h.Service,
		r.Header.Get("X-Request-Id"), strconv.FormatInt(ls.ProductID, 10),
		kafkax.MustMarshal(events.StockLowPayload{
			ProductID: ls.ProductID,
			Stock:     ls.Level.Stock,
			StockMin:  ls.Level.StockMin,
		}))
	h.StockLow.Publish(events.PartitionKey(ls.ProductID), kafkax.MustMarshal(ev), eventHeaders(events.TypeStockLow)...)
}

func eventHeaders(eventType string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "x-event-type", Value: []byte(eventType)},
		{Key: "x-event-version", Value: []byte("1")},
	}
}

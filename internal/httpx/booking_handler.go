package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/barbearia-premium/engine/internal/booking"
	"github.com/barbearia-premium/engine/internal/events"
	kafkax "github.com/barbearia-premium/engine/internal/kafka"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
)

type BookingHandler struct {
	Svc      *booking.Service
	Producer *kafkax.Producer // appointment.booked
	Service  string
}

func (h *BookingHandler) Register(r *chi.Mux) {
	r.Get("/slots", h.freeSlots)
	r.Post("/appointments", h.create)
	r.Post("/appointments/{id}/cancel", h.cancel)
}

type createAppointmentReq struct {
	ClientID  int64  `json:"client_id"`
	BarberID  int64  `json:"barber_id"`
	ServiceID int64  `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Note      string `json:"note"`
}

func (h *BookingHandler) freeSlots(w http.ResponseWriter, r *http.Request) {
	barberID, _ := strconv.ParseInt(r.URL.Query().Get("barber_id"), 10, 64)
	date := r.URL.Query().Get("date")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	slots, err := h.Svc.FreeSlots(ctx, barberID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Svc.Book(ctx, booking.BookingRequest{
		ClientID:  req.ClientID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Time:      req.Time,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Producer != nil {
		ev := events.NewEnvelope(events.TypeAppointmentBooked, h.Service,
			r.Header.Get("X-Request-Id"), strconv.FormatInt(a.ID, 10),
			kafkax.MustMarshal(events.AppointmentBookedPayload{
				AppointmentID: a.ID,
				ClientID:      a.ClientID,
				BarberID:      a.BarberID,
				ServiceID:     a.ServiceID,
				StartsAt:      a.StartsAt,
				Price:         a.Price,
			}))
		h.Producer.Publish(events.PartitionKey(a.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(events.TypeAppointmentBooked)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"appointment_id": a.ID})
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad appointment id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.CancelAppointment(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

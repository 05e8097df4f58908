package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/barbearia-premium/engine/internal/catalog"
)

const maxNoteLen = 500

type Store interface {
	BookedTimes(ctx context.Context, barberID int64, from, to time.Time) ([]time.Time, error)
	ActiveBarber(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, a *Appointment) error
	Cancel(ctx context.Context, id int64) error
}

type CatalogReader interface {
	ActiveService(ctx context.Context, id int64) (catalog.Service, error)
}

type Service struct {
	Store   Store
	Catalog CatalogReader
	Grid    Grid
	Loc     *time.Location
	Now     func() time.Time
}

type BookingRequest struct {
	ClientID  int64
	BarberID  int64
	ServiceID int64
	Date      string // 2006-01-02
	Time      string // 15:04
	Note      string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

// FreeSlots lists the grid times of the day with no active appointment for
// the barber. Pure read.
func (s *Service) FreeSlots(ctx context.Context, barberID int64, date string) ([]string, error) {
	if barberID <= 0 {
		return nil, fmt.Errorf("%w: missing barber id", ErrValidation)
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc())
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrValidation, date)
	}

	booked, err := s.Store.BookedTimes(ctx, barberID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	taken := make(map[int64]struct{}, len(booked))
	for _, t := range booked {
		taken[t.Unix()] = struct{}{}
	}

	slots := s.Grid.Slots(day)
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		if _, ok := taken[t.Unix()]; ok {
			continue
		}
		out = append(out, t.Format("15:04"))
	}
	return out, nil
}

// Book validates the request, captures the service's current effective price
// and inserts the appointment. The conflict rule matches the exact instant
// only; overlap with a longer running service in an earlier slot is not
// checked.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.ClientID <= 0 || req.BarberID <= 0 || req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: missing reference", ErrValidation)
	}
	startsAt, err := s.parseInstant(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if startsAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: slot is in the past", ErrValidation)
	}

	active, err := s.Store.ActiveBarber(ctx, req.BarberID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrBarberNotFound
	}
	svc, err := s.Catalog.ActiveService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		ClientID:  req.ClientID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		StartsAt:  startsAt,
		Status:    StatusScheduled,
		Note:      clipNote(req.Note),
		Price:     svc.EffectivePrice(),
	}
	if err := s.Store.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAppointment frees the slot; the row stays for history.
func (s *Service) CancelAppointment(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: missing appointment id", ErrValidation)
	}
	return s.Store.Cancel(ctx, id)
}

func (s *Service) parseInstant(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrValidation, date)
	}
	tod, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrValidation, clock)
	}
	t := day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute)
	if !s.Grid.Aligned(t) {
		return time.Time{}, fmt.Errorf("%w: %s is not on the booking grid", ErrValidation, clock)
	}
	return t, nil
}

func clipNote(s string) string {
	if len(s) > maxNoteLen {
		return s[:maxNoteLen]
	}
	return s
}

package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrValidation     = errors.New("booking: invalid request")
	ErrBarberNotFound = errors.New("booking: barber not found")
	ErrSlotTaken      = errors.New("booking: slot already booked")
	ErrNotFound       = errors.New("booking: appointment not found")
)

type Repo struct{ DB *pgxpool.Pool }

// BookedTimes lists the instants of non-cancelled appointments for a barber
// inside [from, to).
func (r *Repo) BookedTimes(ctx context.Context, barberID int64, from, to time.Time) ([]time.Time, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT starts_at FROM appointments
		WHERE barber_id = $1 AND starts_at >= $2 AND starts_at < $3
		  AND status <> 'cancelled'
		ORDER BY starts_at`, barberID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) ActiveBarber(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM barbers WHERE id = $1 AND active)`, id).Scan(&ok)
	return ok, err
}

// Insert relies on the partial unique index on (barber_id, starts_at) for
// active rows: the existence check and the insert are a single statement, so
// two racing bookings for the same slot cannot both land.
func (r *Repo) Insert(ctx context.Context, a *Appointment) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO appointments (client_id, barber_id, service_id, starts_at, status, note, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		a.ClientID, a.BarberID, a.ServiceID, a.StartsAt, string(a.Status), a.Note, a.Price).
		Scan(&a.ID, &a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

// Cancel frees the slot. Cancelling an already-cancelled or unknown
// appointment reports ErrNotFound.
func (r *Repo) Cancel(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE appointments SET status = 'cancelled'
		WHERE id = $1 AND status = 'scheduled'`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

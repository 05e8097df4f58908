package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both missing and inactive rows; callers never see the
// difference.
var ErrNotFound = errors.New("catalog: item not found")

// Querier is the slice of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same lookups work inside a transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Reader struct{ DB *pgxpool.Pool }

func (r *Reader) ActiveService(ctx context.Context, id int64) (Service, error) {
	return activeService(ctx, r.DB, id)
}

func (r *Reader) ActiveProduct(ctx context.Context, id int64) (Product, error) {
	return activeProduct(ctx, r.DB, id)
}

func activeService(ctx context.Context, q Querier, id int64) (Service, error) {
	var s Service
	err := q.QueryRow(ctx, `
		SELECT id, name, price, duration_min, on_promotion, promo_price, active
		FROM services WHERE id = $1 AND active`, id).
		Scan(&s.ID, &s.Name, &s.Price, &s.DurationMin, &s.OnPromotion, &s.PromoPrice, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, ErrNotFound
	}
	return s, err
}

func activeProduct(ctx context.Context, q Querier, id int64) (Product, error) {
	var p Product
	err := q.QueryRow(ctx, `
		SELECT id, name, price, stock, stock_min, on_promotion, promo_price, active
		FROM products WHERE id = $1 AND active`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.StockMin, &p.OnPromotion, &p.PromoPrice, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

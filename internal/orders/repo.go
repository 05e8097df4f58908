package orders

import (
	"context"
	"errors"

	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Create persists the order, its items and the stock reservations as one
// transaction. A failed reservation rolls everything back and reports which
// product fell short; no order, item or stock row survives.
func (r *Repo) Create(ctx context.Context, o *Order) ([]LowStock, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (client_id, total, status, payment_method, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		o.ClientID, o.Total, string(o.Status), o.PaymentMethod, o.Note).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var low []LowStock
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, kind, item_id, name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			it.OrderID, string(it.Kind), it.ItemID, it.Name, it.Quantity, it.UnitPrice, it.LineTotal).
			Scan(&it.ID)
		if err != nil {
			return nil, err
		}
		if it.Kind != catalog.KindProduct {
			continue
		}
		lv, ok, err := inventory.Reserve(ctx, tx, it.ItemID, it.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			avail, err := currentStock(ctx, tx, it.ItemID)
			if err != nil {
				return nil, err
			}
			return nil, &InsufficientStockError{ProductID: it.ItemID, Requested: it.Quantity, Available: avail}
		}
		if lv.Low() {
			low = append(low, LowStock{ProductID: it.ItemID, Level: lv})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return low, nil
}

// Confirm moves awaiting_confirmation -> paid and writes one sales ledger
// row per item, all in one transaction.
func (r *Repo) Confirm(ctx context.Context, orderID int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusPaid) {
		return nil, ErrInvalidState
	}

	err = tx.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`, orderID, string(StatusPaid)).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = StatusPaid

	_, err = tx.Exec(ctx, `
		INSERT INTO sales_ledger (order_id, client_id, kind, item_id, quantity, unit_price, total, payment_method)
		SELECT order_id, $2, kind, item_id, quantity, unit_price, line_total, $3
		FROM order_items WHERE order_id = $1`,
		orderID, o.ClientID, o.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel moves awaiting_confirmation -> cancelled and puts every reserved
// product quantity back, all in one transaction. Stock was reserved at
// create time, so confirm never touches it and cancel always returns it.
func (r *Repo) Cancel(ctx context.Context, orderID int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}

	err = tx.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`, orderID, string(StatusCancelled)).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = StatusCancelled

	rows, err := tx.Query(ctx, `
		SELECT item_id, quantity FROM order_items
		WHERE order_id = $1 AND kind = 'product'`, orderID)
	if err != nil {
		return nil, err
	}
	type line struct {
		productID int64
		qty       int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.qty); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if err := inventory.Restore(ctx, tx, l.productID, l.qty); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) Status(ctx context.Context, orderID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return Status(s), err
}

func lockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := tx.QueryRow(ctx, `
		SELECT id, client_id, total, status, payment_method, note, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE`, orderID).
		Scan(&o.ID, &o.ClientID, &o.Total, &status, &o.PaymentMethod, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func currentStock(ctx context.Context, tx pgx.Tx, productID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Package inventory holds the two stock primitives. Both run on whatever
// transaction the caller is inside, so an order finalize or cancel commits
// its stock movement together with its rows or not at all.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by pgx.Tx and *pgxpool.Pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Level is the stock position right after a reservation, used for
// low-stock alerts.
type Level struct {
	Stock    int
	StockMin int
}

func (l Level) Low() bool { return l.Stock < l.StockMin }

// Reserve decrements stock only when enough is available. The check and the
// decrement are one statement; two racing reservations for the last units
// cannot both pass. ok=false means the condition failed (or the product row
// is gone), with nothing changed.
func Reserve(ctx context.Context, tx DBTX, productID int64, qty int) (Level, bool, error) {
	var lv Level
	err := tx.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING stock, stock_min`, productID, qty).
		Scan(&lv.Stock, &lv.StockMin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Level{}, false, nil
	}
	if err != nil {
		return Level{}, false, err
	}
	return lv, true, nil
}

// Restore puts a reserved quantity back. No upper clamp: cancellation
// returns exactly what was taken.
func Restore(ctx context.Context, tx DBTX, productID int64, qty int) error {
	ct, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("restore stock: product %d not found", productID)
	}
	return nil
}

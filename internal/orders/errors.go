package orders

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("orders: invalid request")
	ErrNotFound     = errors.New("orders: order not found")
	ErrInvalidState = errors.New("orders: transition not allowed")
)

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("orders: insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

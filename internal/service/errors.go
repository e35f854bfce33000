package service

import (
	"errors"
	"fmt"
)

// Sentinel errors, wrapped with fmt.Errorf("%w: ...") at the point of
// failure and mapped to HTTP codes by the handlers.
var (
	ErrValidation   = errors.New("validation")      // 400
	ErrBadRequest   = errors.New("bad request")     // 400
	ErrNotFound     = errors.New("not found")       // 404
	ErrConflict     = errors.New("conflict")        // 409
	ErrUnauthorized = errors.New("unauthorized")    // 401
	ErrNoCart       = errors.New("no user cart")    // 400
	ErrEmptyCart    = errors.New("empty user cart") // 400
)

// InsufficientStockError names the first offending product of a failed
// placement or cart pre-check.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d insufficient quantity", e.ProductID)
}

package exception

import "github.com/yanun0323/errors"

var (
	// ErrDuplicateQuote means a quote at the identical price is already
	// resting on that side. Callers treat it as a no-op.
	ErrDuplicateQuote = errors.New("quote: duplicate price on side")

	// ErrSideOccupied means the side already carries a non-terminal order
	// that must be cancelled before a new one can rest.
	ErrSideOccupied = errors.New("quote: side occupied")

	// ErrUnknownOrder means an event referenced an order id never issued
	// or already forgotten.
	ErrUnknownOrder = errors.New("quote: unknown order id")
)

package transport

import "errors"

var (
	ErrOrderNotFound          = errors.New("transport: order not found")
	ErrMissingShippingAddress = errors.New("transport: order has no shipping address")
	ErrWarehouseNotFound      = errors.New("transport: warehouse not found")
	ErrQuoteNotFound          = errors.New("transport: quote not found")
	// ErrQuoteExpired is returned when accepting a quote past its
	// validity deadline.
	ErrQuoteExpired = errors.New("transport: quote expired")
	// ErrQuoteNotPending is returned when accepting a quote that was
	// already rejected.
	ErrQuoteNotPending = errors.New("transport: quote is not pending")
	// ErrAcceptanceFailed wraps infrastructure failures inside the
	// acceptance transaction; the transaction has been rolled back.
	ErrAcceptanceFailed = errors.New("transport: acceptance failed")
)

package orders

import "errors"

var (
	// ErrNotFound reports an unknown order id. It is an expected outcome for
	// lookups and updates, mapped to 404 by the HTTP layer rather than treated
	// as a failure.
	ErrNotFound = errors.New("order not found")

	// ErrHasInvoices rejects deletion of an invoiced order. Terminal: the
	// caller should cancel the order instead.
	ErrHasInvoices = errors.New("order has invoices, cancel it instead")

	// ErrNumberConflict signals a duplicate order number insert. The create
	// path retries on it; it only escapes when retries are exhausted.
	ErrNumberConflict = errors.New("order number conflict")
)

// ValidationError rejects malformed input before any transaction is opened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

package transaction

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidType       = errors.New("transaction type must be take or return")
	ErrInvalidTransition = errors.New("transaction not in a state that can be decided")
	ErrAlreadyDecided    = errors.New("transaction already has this decision")
	ErrNotPending        = errors.New("only pending transactions can be changed")
	ErrConcurrentUpdate  = errors.New("transaction was modified concurrently, retry")
	ErrForbidden         = errors.New("not allowed to access this transaction")
	ErrTakeHasReturns    = errors.New("take transaction has approved returns against it")

	// Validation sentinels. Anything wrapping ErrValidation is user-facing
	// and is returned before any write happens.
	ErrValidation        = errors.New("validation failed")
	ErrMissingWorker     = fmt.Errorf("%w: worker name and id are required", ErrValidation)
	ErrNoMaterials       = fmt.Errorf("%w: at least one material is required", ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: return quantity must be greater than 0", ErrValidation)
	ErrReferenceNotFound = fmt.Errorf("%w: reference number not found", ErrValidation)
	ErrOverReturn        = fmt.Errorf("%w: return exceeds remaining quantity", ErrValidation)
	ErrIncorrectPassword = fmt.Errorf("%w: incorrect password", ErrValidation)
)

// LineError is a per-material validation failure.
type LineError struct {
	Material string
	Reason   string
}

func (e *LineError) Error() string {
	if e.Material == "" {
		return e.Reason
	}
	return e.Material + ": " + e.Reason
}

func (e *LineError) Unwrap() error { return ErrValidation }

// ReferenceError reports a reference number absent from the approved take
// ledger.
type ReferenceError struct {
	ReferenceNumber string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("Reference number %s not found.", e.ReferenceNumber)
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// OverReturnError names the offending material, what was asked for and what
// is still returnable.
type OverReturnError struct {
	Material        string
	Unit            string
	ReferenceNumber string
	Requested       int
	Remaining       int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("%s (#%s): Cannot return %d %s. Only %d %s available.",
		e.Material, e.ReferenceNumber, e.Requested, e.Unit, e.Remaining, e.Unit)
}

func (e *OverReturnError) Unwrap() error { return ErrOverReturn }

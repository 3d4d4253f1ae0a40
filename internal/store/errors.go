package store

import "errors"

// StorageError wraps any failure coming out of the ledger. Callers decide
// whether to retry the cycle or surface the failure; the store never hides
// one behind an empty result.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Invariant violations. These indicate an ordering or programming error in
// the caller, not an I/O failure, and are deliberately distinct from
// StorageError.
var (
	// ErrUnknownVisitor: a visit was recorded for an entity with no ledger
	// row. The visitor must be upserted first.
	ErrUnknownVisitor = errors.New("visit recorded for unknown entity")

	ErrNegativeDuration = errors.New("visit duration must not be negative")

	ErrAlertNotFound = errors.New("alert not found")
)

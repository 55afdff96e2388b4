// internal/domain/catalog/errors.go
package catalog

import "fmt"

// ValidationError reports an input the engine rejects locally, before
// any store call is attempted (empty folder name, deleting a
// non-custom or non-empty folder).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a folder or document that no longer exists,
// typically deleted by another session. Callers respond by refreshing
// so the stale node disappears.
type NotFoundError struct {
	Kind string // "folder" or "document"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// TransientError wraps a network or storage failure on an otherwise
// valid operation. Bulk operations count these per item instead of
// failing the batch.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

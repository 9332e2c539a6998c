package domain

import "fmt"

// ValidationError reports malformed or missing input. Recoverable by the
// caller, never retried by the engine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing lot, pen, record or account.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidStateError reports an operation attempted from a lifecycle state
// that does not permit it.
type InvalidStateError struct {
	Entity   string
	Current  string
	Required string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is %s, operation requires %s", e.Entity, e.Current, e.Required)
}

// CapacityExceededError names the offending pen and the space left so the
// caller can correct the allocation.
type CapacityExceededError struct {
	PenID     int64
	PenCode   string
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("pen %s cannot take %d animals, only %d places available",
		e.PenCode, e.Requested, e.Available)
}

// QuantityMismatchError reports a confinement whose allocations do not add
// up to the lot's current quantity.
type QuantityMismatchError struct {
	Allocated int
	Expected  int
}

func (e *QuantityMismatchError) Error() string {
	return fmt.Sprintf("allocations total %d animals but the lot holds %d",
		e.Allocated, e.Expected)
}

// QuantityExceededError reports a death count larger than the live quantity.
type QuantityExceededError struct {
	Requested int
	Current   int
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("%d deaths exceeds current quantity %d", e.Requested, e.Current)
}

// ConflictError reports a uniqueness violation, e.g. a duplicate DRE row
// for the same (month, cycle) pair.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists for %s", e.Resource, e.Key)
}

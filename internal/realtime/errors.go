package realtime

import (
	"errors"
	"fmt"

	"taskboard/internal/store"
)

// ErrPermissionDenied is wrapped in a StoreError when a principal writes to a project it
// is not a member of.
var ErrPermissionDenied = store.ErrPermissionDenied

// NotFoundError reports a project, task or join code that does not resolve.
type NotFoundError struct {
	Resource string // "project", "task" or "code"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// StoreError is a failed store round-trip. The store is left unchanged and nothing is
// retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SubscriptionError ends a subscription. The subscription is not restarted.
type SubscriptionError struct {
	Selector Selector
	Err      error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s: %v", e.Selector, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// classify turns a store failure into NotFoundError or StoreError.
func classify(op, resource, key string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return &StoreError{Op: op, Err: err}
}

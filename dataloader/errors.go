package dataloader

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Load when the fetch function did not return the key.
	ErrNotFound = errors.New("dataloader: not found")

	// ErrCancelled is returned for every load whose request ended before it was fulfilled.
	ErrCancelled = errors.New("dataloader: cancelled")

	errClosed = errors.New("dispatcher closed")
)

// FetchError is the outcome of every key in a batch whose fetch function failed.
type FetchError struct {
	Loader string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dataloader: fetch %s: %v", e.Loader, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KeyErrors lets a fetch function fail individual keys. It is honoured only when the
// loader runs with ErrorModePerKey, otherwise it fails the whole batch like any error.
type KeyErrors[K comparable] map[K]error

func (e KeyErrors[K]) Error() string {
	return fmt.Sprintf("dataloader: %d keys failed", len(e))
}

type cancelledError struct {
	cause error
}

func cancelled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return &cancelledError{cause: cause}
}

func (e *cancelledError) Error() string {
	return "dataloader: cancelled: " + e.cause.Error()
}

func (e *cancelledError) Is(target error) bool {
	return target == ErrCancelled
}

func (e *cancelledError) Unwrap() error {
	return e.cause
}

package database

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an identifier is not a valid ObjectID.
	// It is detected before the store is contacted.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrNotFound is returned when no document matches a valid identifier.
	ErrNotFound = errors.New("document not found")
)

// StoreError wraps a fault reported by the backend (connectivity, read, write).
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op, collection string, err error) error {
	return &StoreError{Op: op, Collection: collection, Err: err}
}

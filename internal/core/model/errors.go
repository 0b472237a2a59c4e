package model

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// StorageError wraps a failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (err *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", err.Op, err.Err)
}

func (err *StorageError) Unwrap() error {
	return err.Err
}

// NewStorageError wraps cause, or returns nil when cause is nil.
func NewStorageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StorageError{Op: op, Err: cause}
}

// ValidationError reports a malformed caller-supplied argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

// ConfigurationError reports settings rejected before being applied.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", err.Field, err.Reason)
}

// ErrAlreadyFinalized indicates a break record was finalized before.
var ErrAlreadyFinalized = errors.New("break record already finalized")

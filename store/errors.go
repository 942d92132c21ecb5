package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotInitialized means OPTIONS is missing or names an engine this
// build doesn't recognize.
var ErrNotInitialized = errors.New("store: not initialized")

// ErrRootHashNotFound means the named ref has no entry in REFS.
var ErrRootHashNotFound = errors.New("store: root hash not found")

// StorageError wraps a page-store I/O or structural fault.
type StorageError struct {
	Cause error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store: storage error: %v", e.Cause) }
func (e *StorageError) Unwrap() error { return e.Cause }

// TransactionError wraps a begin/commit failure.
type TransactionError struct {
	Cause error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("store: transaction error: %v", e.Cause)
}
func (e *TransactionError) Unwrap() error { return e.Cause }

// CodecError wraps a blob that failed to decode as the expected node shape.
type CodecError struct {
	Cause error
}

func (e *CodecError) Error() string { return fmt.Sprintf("store: codec error: %v", e.Cause) }
func (e *CodecError) Unwrap() error { return e.Cause }

// IoError wraps a filesystem failure during open/create.
type IoError struct {
	Cause error
}

func (e *IoError) Error() string { return fmt.Sprintf("store: io error: %v", e.Cause) }
func (e *IoError) Unwrap() error { return e.Cause }

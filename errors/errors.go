// Package errors provides error handling for the launcher manager core.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrSnapshotNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the launcher manager core.
// Use these with errors.Is() for type-safe error checking.
// Wrap them with errors.Wrap() to add context while preserving the type.
//
// The core favors best-effort semantics: dangling module references degrade
// to omitted edges or unsatisfied flags, and dependency cycles are reported
// as data. The sentinels below cover the only hard failure cases.
var (
	// ErrModuleNotFound indicates a module id is not present in the catalog
	ErrModuleNotFound = New("module not found")

	// ErrSnapshotNotFound indicates a snapshot id is not present in the history
	ErrSnapshotNotFound = New("snapshot not found")

	// ErrSuggestionNotFound indicates a suggestion id is not known to the analyzer
	ErrSuggestionNotFound = New("suggestion not found")

	// ErrInvalidCatalog indicates a catalog document could not be decoded
	ErrInvalidCatalog = New("invalid catalog")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return err != nil && IsAny(err, ErrModuleNotFound, ErrSnapshotNotFound, ErrSuggestionNotFound)
}

// NewModuleNotFound creates a module-not-found error carrying the module id.
func NewModuleNotFound(moduleID string) error {
	return Wrapf(ErrModuleNotFound, "module %q", moduleID)
}

// NewSnapshotNotFound creates a snapshot-not-found error carrying the snapshot id.
func NewSnapshotNotFound(snapshotID string) error {
	return Wrapf(ErrSnapshotNotFound, "snapshot %q", snapshotID)
}

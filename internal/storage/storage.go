// Package storage defines the Storage interface — a contract that any
// record-store backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which backend they are
// talking to. By depending only on this interface:
//
//   - Switching backends (flat file ↔ SQLite) = change one line in
//     main.go. Zero handler changes.
//
//   - Writing tests = pass any implementation that satisfies the
//     interface.
//
// The store is append-only: records are never updated or deleted, so
// the contract deliberately has no update/delete methods.
package storage

import (
	"errors"

	"github.com/anikitin/studentdb/internal/types"
)

// Sentinel errors shared by every backend. Callers match them with
// errors.Is and translate them into their own error surface (the HTTP
// layer maps ErrDuplicateID to 409 and ErrStudentNotFound to 404).
var (
	// ErrDuplicateID is returned by CreateStudent when a record with
	// the same identifier already exists in the store.
	ErrDuplicateID = errors.New("student id already exists")

	// ErrStudentNotFound is returned by GetStudentByID when no record
	// carries the requested identifier.
	ErrStudentNotFound = errors.New("student not found")
)

// Storage is the record-store contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface — Go does this implicitly (no "implements"
// keyword required).
type Storage interface {
	// CreateStudent appends a new record. The identifier is assigned by
	// the caller, not the backend. Returns a validator.ValidationErrors
	// when the record violates a field constraint, ErrDuplicateID on an
	// identifier collision, or a wrapped I/O error when the backend
	// cannot persist.
	CreateStudent(rec types.StudentRecord) error

	// GetStudentByID fetches a single record by its identifier.
	// Returns ErrStudentNotFound (possibly wrapped) if absent.
	GetStudentByID(id int64) (types.StudentRecord, error)

	// GetStudents returns every record in insertion order.
	// Returns an empty slice (not nil) if the store is empty.
	GetStudents() ([]types.StudentRecord, error)

	// Count reports the current number of records.
	Count() (int64, error)
}

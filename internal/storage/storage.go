// Package storage defines the Storage interface — a contract that any
// record backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers should not know or care where tax records live. By depending
// only on this interface:
//
//   - Switching backends (the default CSV file, the embedded SQLite
//     store) = change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass any implementation that satisfies the
//     interface; the contract tests run identically against each.
package storage

import (
	"errors"

	"github.com/amirulhm/tax-api/internal/types"
)

// ErrNotFound is the sentinel for a lookup on an unknown taxpayer ID.
// It is an expected outcome, not a failure: callers branch on it with
// errors.Is rather than treating it as an I/O error.
var ErrNotFound = errors.New("tax record not found")

// UpsertMode selects the write behaviour of Upsert.
type UpsertMode int

const (
	// InsertOnly appends a new row. The store does not enforce key
	// uniqueness on insert — callers must check Exists first, mirroring
	// the duplicate-prevention policy one layer up.
	InsertOnly UpsertMode = iota

	// Replace removes any existing row with the same ID and writes the
	// new row in its place: an update-in-place by key. Every field is
	// rewritten; there are no partial updates.
	Replace
)

// Storage is the record-store contract. All operations work against a
// single logical table of TaxRecord rows keyed by the unique ID field.
type Storage interface {
	// Exists reports whether a record with the given ID is present.
	// On a hit it also returns the stored IC number, left-padded with
	// zeros to 12 characters. An absent table counts as empty, not an
	// error.
	Exists(id string) (bool, string, error)

	// GetByID returns the record for the given ID, or ErrNotFound
	// (wrapped) when no such record exists.
	GetByID(id string) (types.TaxRecord, error)

	// Upsert writes a record according to mode. Storage I/O failures
	// are returned wrapped; the caller's in-memory computation remains
	// valid even when persistence fails.
	Upsert(record types.TaxRecord, mode UpsertMode) error

	// ListAll returns every record in stored order. An absent or empty
	// table yields an empty slice (not nil) and no error.
	ListAll() ([]types.TaxRecord, error)
}

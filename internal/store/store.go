// Package store persists the builder's state under a fixed set of named slots.
//
// The slot names match the keys the browser client keeps in localStorage, so a
// dump of that storage can be loaded into any backend unchanged:
//   - ez_company: the issuer profile
//   - ez_products: the product catalog
//   - ez_invoices: every invoice, newest first
//   - ez_current_invoice_id: id of the invoice being edited
//   - ez_settings: user preferences
//
// Backends:
//   - FileStore: one JSON document per slot inside a directory
//   - RedisStore: one key per slot, with a configurable prefix
//   - MemoryStore: process-local, used by tests and ephemeral servers
//
// Totals are never persisted; they are recomputed from invoices on read.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Slot names.
const (
	SlotCompany          = "ez_company"
	SlotProducts         = "ez_products"
	SlotInvoices         = "ez_invoices"
	SlotCurrentInvoiceID = "ez_current_invoice_id"
	SlotSettings         = "ez_settings"
)

// Slots lists every slot in a stable order.
var Slots = []string{SlotCompany, SlotProducts, SlotInvoices, SlotCurrentInvoiceID, SlotSettings}

// Store is a byte-oriented key/value store.
type Store interface {
	// Get returns the raw value of key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value of key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Common store errors
var (
	// ErrNotFound is returned by Get when the slot has never been written.
	ErrNotFound = errors.New("slot not found")

	// ErrQuotaExceeded is returned when the backend is out of space or memory.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrAccessDenied is returned when the backend refuses the operation.
	ErrAccessDenied = errors.New("access to storage denied")

	// ErrParse is returned when a stored value cannot be decoded.
	ErrParse = errors.New("failed to parse stored data")
)

// ErrorKind classifies persistence failures the way they are reported to users.
type ErrorKind string

const (
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindAccessDenied  ErrorKind = "access_denied"
	KindParse         ErrorKind = "parse_error"
	KindUnknown       ErrorKind = "unknown"
)

// PersistError describes a failed load or save of one slot.
type PersistError struct {
	Op   string // "load" or "save"
	Slot string
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("store: %s %s (%s): %v", e.Op, e.Slot, e.Kind, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error kind.
func (e *PersistError) Is(target error) bool {
	switch e.Kind {
	case KindQuotaExceeded:
		return target == ErrQuotaExceeded
	case KindAccessDenied:
		return target == ErrAccessDenied
	case KindParse:
		return target == ErrParse
	}
	return false
}

// Message is the short, user-facing description of the failure.
func (e *PersistError) Message() string {
	switch e.Kind {
	case KindQuotaExceeded:
		return "Storage quota exceeded. Try reducing image sizes or clearing old data."
	case KindAccessDenied:
		return "Access to storage denied. Check storage permissions."
	case KindParse:
		return "Failed to load saved data"
	}
	return "Failed to save data"
}

// classify maps backend errors onto an ErrorKind.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return KindQuotaExceeded
	case errors.Is(err, ErrAccessDenied), errors.Is(err, os.ErrPermission):
		return KindAccessDenied
	case errors.Is(err, ErrParse):
		return KindParse
	}
	// redis reports these as plain error strings
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "OOM"):
		return KindQuotaExceeded
	case strings.HasPrefix(msg, "NOPERM"), strings.HasPrefix(msg, "NOAUTH"), strings.HasPrefix(msg, "WRONGPASS"):
		return KindAccessDenied
	}
	return KindUnknown
}

func newPersistError(op, slot string, err error) *PersistError {
	return &PersistError{Op: op, Slot: slot, Kind: classify(err), Err: err}
}

package invoice

import (
	"errors"
	"fmt"
)

// Common workbook errors
var (
	// ErrInvoiceNotFound is returned when no invoice has the requested id.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrItemNotFound is returned when an invoice has no line with the requested id.
	ErrItemNotFound = errors.New("invoice item not found")

	// ErrProductNotFound is returned when the catalog has no product with the requested id.
	ErrProductNotFound = errors.New("product not found")
)

// WorkbookError wraps failures of workbook operations with the operation name
// and the id of the record involved.
type WorkbookError struct {
	// Op is the operation that failed (e.g., "Update", "AddItem").
	Op string

	// ID is the invoice or product id the operation targeted (if any).
	ID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WorkbookError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invoice: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("invoice: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *WorkbookError) Unwrap() error {
	return e.Err
}

func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var wbErr *WorkbookError
	if errors.As(err, &wbErr) {
		return err
	}
	return &WorkbookError{Op: op, ID: id, Err: err}
}

// ValidationError represents a rejected field value on input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

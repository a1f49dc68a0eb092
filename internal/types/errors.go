package types

import (
	"errors"
	"fmt"
)

// ErrEmptyIdentifier is returned when a lot identifier normalizes to the
// empty string. Fatal for the row it came from, never for the batch.
var ErrEmptyIdentifier = errors.New("lot identifier is empty after normalization")

// ErrNotFound is returned by lookup paths when no lot exists for the
// requested canonical identifier. Recoverable; the caller decides.
var ErrNotFound = errors.New("not found")

// SchemaError aborts an entire import batch before any row is processed.
type SchemaError struct {
	SourceType     SourceType
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s import: missing required columns %v", e.SourceType, e.MissingColumns)
}

// RowError records a single failed row inside an otherwise continuing batch.
type RowError struct {
	RowNumber int    `json:"row_number"`
	LotID     string `json:"lot_id,omitempty"`
	Message   string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.RowNumber, e.Message)
}

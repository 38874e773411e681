// Package leadimport ingests uploaded lead CSV files and materializes sales
// orders from them. One file is one batch: the header is checked against a
// fixed template, each row is normalized, validated and resolved against
// master data, and every row that survives produces exactly one order header
// with a single line item, assigned to a randomly picked handler.
package leadimport

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Batch-fatal errors. Any of these aborts the whole import with nothing
// persisted; row-level failures never surface through them.
var (
	ErrSchemaMismatch  = errors.New("file header does not match the lead import template")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoHandlers      = errors.New("no eligible handlers provided")
	ErrInvalidHandlers = errors.New("handler set contains unknown or inactive operators")
)

// LeadRow is one CSV record addressed by field name. Rows are converted into
// this shape immediately after header validation so nothing downstream reads
// by column index.
type LeadRow struct {
	FullName     string
	Phone        string
	City         string
	Email        string
	AddressLine1 string
	AddressLine2 string
	ProductCode  string
	TotalAmount  string
	Other        string

	// Amount is the parsed TotalAmount, set by validation.
	Amount decimal.Decimal
}

// RowError records one failed row of a batch.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// ImportOutcome aggregates the per-row results of a batch. It is returned to
// the caller and never persisted.
type ImportOutcome struct {
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Errors       []RowError `json:"errors"`
}

func (o *ImportOutcome) recordSuccess() {
	o.SuccessCount++
}

func (o *ImportOutcome) recordError(row int, message string) {
	o.ErrorCount++
	o.Errors = append(o.Errors, RowError{Row: row, Message: message})
}

// Messages renders the error list as "Row N: <message>" strings, in row order.
func (o *ImportOutcome) Messages() []string {
	msgs := make([]string, 0, len(o.Errors))
	for _, e := range o.Errors {
		msgs = append(msgs, e.String())
	}
	return msgs
}

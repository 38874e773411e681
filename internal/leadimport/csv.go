package leadimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// headerTemplate is the fixed 9-column layout every lead file must carry, in
// this exact order.
var headerTemplate = []string{
	"Full Name",
	"Phone Number",
	"City",
	"Email",
	"Address Line 1",
	"Address Line 2",
	"Product Code",
	"Total Amount",
	"Other",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newLeadReader wraps the uploaded stream in a CSV reader, dropping a UTF-8
// byte order mark if one precedes the header.
func newLeadReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	// Column-count errors are handled per row so one ragged record cannot
	// abort the batch.
	cr.FieldsPerRecord = -1
	return cr
}

// canonicalHeader lowercases a header cell and collapses internal whitespace.
func canonicalHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// validateHeader compares the file's first record against headerTemplate,
// position by position. Case and surrounding whitespace are ignored; any
// missing, extra or reordered column is a schema mismatch.
func validateHeader(header []string) error {
	if len(header) != len(headerTemplate) {
		return ErrSchemaMismatch
	}
	for i, want := range headerTemplate {
		if canonicalHeader(header[i]) != canonicalHeader(want) {
			return ErrSchemaMismatch
		}
	}
	return nil
}

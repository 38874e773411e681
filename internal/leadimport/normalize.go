package leadimport

import (
	"strings"

	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
)

// emailSentinels are values treated as "no email supplied", compared case
// insensitively after trimming.
var emailSentinels = map[string]struct{}{
	"":     {},
	"null": {},
	"n/a":  {},
	"-":    {},
}

// normalizeEmail maps absent-looking email values to the stored placeholder
// and trims everything else.
func normalizeEmail(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if _, ok := emailSentinels[strings.ToLower(trimmed)]; ok {
		return customers.EmailNone
	}
	return trimmed
}

// isBlankRecord reports whether every field of the record is empty after
// trimming. Such rows are skipped without counting as success or failure.
func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// normalizeRecord converts a raw CSV record into a named-field LeadRow. The
// caller has already verified the record has the template's column count.
func normalizeRecord(record []string) LeadRow {
	return LeadRow{
		FullName:     strings.TrimSpace(record[0]),
		Phone:        strings.TrimSpace(record[1]),
		City:         strings.TrimSpace(record[2]),
		Email:        normalizeEmail(record[3]),
		AddressLine1: strings.TrimSpace(record[4]),
		AddressLine2: strings.TrimSpace(record[5]),
		ProductCode:  strings.TrimSpace(record[6]),
		TotalAmount:  strings.TrimSpace(record[7]),
		Other:        strings.TrimSpace(record[8]),
	}
}

// HasEmail reports whether the row carries a usable email address.
func (r LeadRow) HasEmail() bool {
	return r.Email != customers.EmailNone
}

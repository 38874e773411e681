package leadimport

import (
	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
)

// emailEquivalent applies the matching policy for the email column: a row
// without a usable email is compatible with a record whose email is the
// placeholder, empty, or missing; otherwise the addresses must be identical.
func emailEquivalent(row LeadRow, existing customers.Customer) bool {
	if !row.HasEmail() {
		return !existing.HasEmail()
	}
	return row.Email == existing.Email
}

// customerMatches verifies field-for-field equality between an incoming row
// and the existing customer it resolved to. Any divergence is a hard
// conflict; the pipeline never updates an existing customer from a row.
func customerMatches(existing customers.Customer, row LeadRow, cityID int64) bool {
	return existing.Name == row.FullName &&
		existing.Phone == row.Phone &&
		existing.AddressLine1 == row.AddressLine1 &&
		existing.AddressLine2 == row.AddressLine2 &&
		existing.CityID == cityID &&
		emailEquivalent(row, existing)
}

// joinAddress renders the denormalized address copied onto the order header.
func joinAddress(row LeadRow) string {
	if row.AddressLine2 == "" {
		return row.AddressLine1
	}
	return row.AddressLine1 + ", " + row.AddressLine2
}

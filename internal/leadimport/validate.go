package leadimport

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var phonePattern = regexp.MustCompile(`^[0-9\s+\-()]+$`)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRow applies the per-field policy and fills in the parsed amount.
// The returned message is empty when the row is acceptable.
func validateRow(row *LeadRow) string {
	switch {
	case row.FullName == "":
		return "Full Name is required"
	case row.Phone == "":
		return "Phone Number is required"
	case row.City == "":
		return "City is required"
	case row.ProductCode == "":
		return "Product Code is required"
	case row.TotalAmount == "":
		return "Total Amount is required"
	}

	// Loose phone check: allowed characters only, no digit-count rules here.
	if !phonePattern.MatchString(row.Phone) {
		return "Phone Number is invalid"
	}

	if row.HasEmail() {
		if err := validate.Var(row.Email, "email"); err != nil {
			return "Email is invalid"
		}
	}

	amount, err := decimal.NewFromString(row.TotalAmount)
	if err != nil || !amount.IsPositive() {
		return "Total Amount must be a positive number"
	}
	row.Amount = amount

	return ""
}

package customers

import "time"

// EmailNone is the stored placeholder for customers without an email address.
const EmailNone = "-"

type Customer struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email" db:"email"`
	AddressLine1 string    `json:"address_line1" db:"address_line1"`
	AddressLine2 string    `json:"address_line2" db:"address_line2"`
	CityID       int64     `json:"city_id" db:"city_id"`
	CreatedBy    int64     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasEmail reports whether the customer carries a real email address.
func (c Customer) HasEmail() bool {
	return c.Email != "" && c.Email != EmailNone
}

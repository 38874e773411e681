package customers

// CreateCustomerRequest is the payload accepted by the create endpoint.
type CreateCustomerRequest struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	CityID       int64  `json:"city_id" validate:"required,gt=0"`
}

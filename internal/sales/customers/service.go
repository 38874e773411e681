package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) FindByPhoneOrEmail(ctx context.Context, phone, email string) ([]Customer, error) {
	return s.repo.FindByPhoneOrEmail(ctx, phone, email)
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, createdBy int64) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate customer: %w", err)
	}

	email := req.Email
	if email == "" {
		email = EmailNone
	}

	id, err := s.repo.Create(ctx, Customer{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        email,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		CityID:       req.CityID,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

package leadimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
	"github.com/meridian-oms/meridian-oms/internal/sales/orders"
)

// ImportRequest carries one batch: the CSV byte stream, the identity running
// the import, and the operator-selected pool of eligible handlers.
type ImportRequest struct {
	Reader     io.Reader
	ImporterID int64
	HandlerIDs []int64
}

type Service struct {
	repo    Repository
	logger  *slog.Logger
	newRand RandFactory
}

// NewService constructs the import service. A nil RandFactory falls back to a
// time-seeded source.
func NewService(repo Repository, logger *slog.Logger, newRand RandFactory) *Service {
	if newRand == nil {
		newRand = defaultRandFactory
	}
	return &Service{repo: repo, logger: logger, newRand: newRand}
}

// Import consumes one lead file and returns the aggregate outcome. The whole
// file runs inside a single transaction: rows that fail are recorded and
// skipped, rows that succeed are committed together at end of file. Errors
// returned from Import itself are batch fatal and leave nothing persisted.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportOutcome, error) {
	if len(req.HandlerIDs) == 0 {
		return nil, ErrNoHandlers
	}
	handlerIDs := dedupeIDs(req.HandlerIDs)

	reader := newLeadReader(req.Reader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	outcome := &ImportOutcome{}
	rng := s.newRand()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		count, err := tx.CountActiveHandlers(ctx, handlerIDs)
		if err != nil {
			return fmt.Errorf("validate handlers: %w", err)
		}
		if count != len(handlerIDs) {
			return ErrInvalidHandlers
		}

		// Physical line numbering: the header is line 1, so the first
		// data row reports as line 2, matching what the operator sees
		// in a spreadsheet.
		line := 1
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			line++
			if err != nil {
				return fmt.Errorf("read row %d: %w", line, err)
			}

			if isBlankRecord(record) {
				continue
			}
			if len(record) != len(headerTemplate) {
				outcome.recordError(line, "Malformed row: unexpected column count")
				continue
			}

			row := normalizeRecord(record)
			if msg := validateRow(&row); msg != "" {
				outcome.recordError(line, msg)
				continue
			}

			if msg := s.processRow(ctx, tx, rng, row, req.ImporterID, handlerIDs); msg != "" {
				outcome.recordError(line, msg)
				continue
			}
			outcome.recordSuccess()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead import finished",
		slog.Int("succeeded", outcome.SuccessCount),
		slog.Int("failed", outcome.ErrorCount),
	)
	return outcome, nil
}

// processRow resolves the row's references and materializes the order. A
// non-empty return value is the row's failure message; the surrounding
// transaction stays usable either way.
func (s *Service) processRow(ctx context.Context, tx TxRepository, rng *rand.Rand, row LeadRow, importerID int64, handlerIDs []int64) string {
	product, err := tx.GetActiveProductByCode(ctx, row.ProductCode)
	if errors.Is(err, ErrNotFound) {
		return "Product code not found or inactive"
	}
	if err != nil {
		s.logger.Error("resolve product", slog.String("code", row.ProductCode), slog.Any("error", err))
		return "Failed to resolve product"
	}
	// Catalog price is informational only; the declared amount wins.
	s.logger.Debug("product resolved",
		slog.String("code", product.Code),
		slog.String("catalog_price", product.Price.String()),
		slog.String("declared_amount", row.Amount.String()),
	)

	city, err := tx.GetActiveCityByName(ctx, row.City)
	if errors.Is(err, ErrNotFound) {
		return "City not found or inactive"
	}
	if err != nil {
		s.logger.Error("resolve city", slog.String("city", row.City), slog.Any("error", err))
		return "Failed to resolve city"
	}

	matches, err := tx.FindCustomersByPhoneOrEmail(ctx, row.Phone, row.Email)
	if err != nil {
		s.logger.Error("resolve customer", slog.Any("error", err))
		return "Failed to resolve customer"
	}

	var customerID int64
	createCustomer := len(matches) == 0
	if !createCustomer {
		existing := matches[0]
		if !customerMatches(existing, row, city.ID) {
			return "Customer data mismatch with existing record"
		}
		customerID = existing.ID
	}

	// Customer insert, order header and item share one savepoint so a
	// failure rolls all three back together and the batch keeps going.
	err = tx.WithSavepoint(ctx, func(ctx context.Context, tx TxRepository) error {
		if createCustomer {
			id, err := tx.CreateCustomer(ctx, customers.Customer{
				Name:         row.FullName,
				Phone:        row.Phone,
				Email:        row.Email,
				AddressLine1: row.AddressLine1,
				AddressLine2: row.AddressLine2,
				CityID:       city.ID,
				CreatedBy:    importerID,
			})
			if err != nil {
				return fmt.Errorf("create customer: %w", err)
			}
			customerID = id
		}

		notes := row.Other
		if notes == "" {
			notes = DefaultNote
		}

		issueDate := time.Now()
		orderID, err := tx.CreateOrder(ctx, orders.Order{
			CustomerID:    customerID,
			AssignedTo:    pickHandler(rng, handlerIDs),
			CreatedBy:     importerID,
			IssueDate:     issueDate,
			DueDate:       issueDate.AddDate(0, 0, DefaultDueDays),
			Status:        orders.OrderStatusPending,
			PaymentStatus: orders.PaymentStatusUnpaid,
			Currency:      DefaultCurrency,
			Channel:       ChannelLeads,
			Notes:         notes,
			CustomerName:  row.FullName,
			CustomerPhone: row.Phone,
			Address:       joinAddress(row),
			CityName:      city.Name,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if _, err := tx.CreateOrderItem(ctx, orders.OrderItem{
			OrderID:       orderID,
			ProductID:     product.ID,
			Quantity:      DefaultQuantity,
			Price:         row.Amount,
			Discount:      decimal.Zero,
			Total:         row.Amount,
			Status:        orders.OrderStatusPending,
			PaymentStatus: orders.PaymentStatusUnpaid,
		}); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrCustomerConflict) {
		// Lost the race against a concurrent import inserting the same
		// phone; surface it like any other customer conflict.
		return "Customer data mismatch with existing record"
	}
	if err != nil {
		s.logger.Error("materialize order", slog.Any("error", err))
		return "Failed to save order"
	}
	return ""
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

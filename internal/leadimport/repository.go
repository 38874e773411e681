package leadimport

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-oms/meridian-oms/internal/masterdata/cities"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/products"
	"github.com/meridian-oms/meridian-oms/internal/platform/db"
	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
	"github.com/meridian-oms/meridian-oms/internal/sales/orders"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrCustomerConflict is returned when a concurrent import created a
	// customer with the same phone between our lookup and insert.
	ErrCustomerConflict = errors.New("customer already exists")
)

// Repository owns the batch transaction boundary.
type Repository interface {
	// WithTx runs fn inside one transaction spanning the whole file.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the queries and commands the pipeline issues per row,
// all bound to the batch transaction.
type TxRepository interface {
	CountActiveHandlers(ctx context.Context, ids []int64) (int, error)
	GetActiveProductByCode(ctx context.Context, code string) (products.Product, error)
	GetActiveCityByName(ctx context.Context, name string) (cities.City, error)
	FindCustomersByPhoneOrEmail(ctx context.Context, phone, email string) ([]customers.Customer, error)
	CreateCustomer(ctx context.Context, c customers.Customer) (int64, error)
	CreateOrder(ctx context.Context, o orders.Order) (int64, error)
	CreateOrderItem(ctx context.Context, it orders.OrderItem) (int64, error)
	// WithSavepoint runs fn inside a nested transaction so a failing row's
	// writes roll back without poisoning the batch transaction.
	WithSavepoint(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) WithSavepoint(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithSavepoint(ctx, r.tx, func(nested pgx.Tx) error {
		return fn(ctx, &txRepository{tx: nested})
	})
}

func (r *txRepository) CountActiveHandlers(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.tx.QueryRow(ctx,
		`SELECT COUNT(DISTINCT id) FROM users WHERE is_active AND id = ANY($1)`, ids,
	).Scan(&count)
	return count, err
}

func (r *txRepository) GetActiveProductByCode(ctx context.Context, code string) (products.Product, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, code, name, price, is_active, created_at, updated_at
		FROM products WHERE code = $1 AND is_active`, code)
	var p products.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return products.Product{}, ErrNotFound
	}
	return p, err
}

func (r *txRepository) GetActiveCityByName(ctx context.Context, name string) (cities.City, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, name, is_active, created_at, updated_at
		FROM cities WHERE name = $1 AND is_active`, name)
	var c cities.City
	err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return cities.City{}, ErrNotFound
	}
	return c, err
}

func (r *txRepository) FindCustomersByPhoneOrEmail(ctx context.Context, phone, email string) ([]customers.Customer, error) {
	query := `
		SELECT id, name, phone, email, address_line1, address_line2, city_id, created_by, created_at, updated_at
		FROM customers WHERE phone = $1`
	args := []interface{}{phone}
	if email != "" && email != customers.EmailNone {
		query += ` OR email = $2`
		args = append(args, email)
	}
	query += ` ORDER BY id`

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []customers.Customer
	for rows.Next() {
		var c customers.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.AddressLine1, &c.AddressLine2,
			&c.CityID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *txRepository) CreateCustomer(ctx context.Context, c customers.Customer) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address_line1, address_line2, city_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.Name, c.Phone, c.Email, c.AddressLine1, c.AddressLine2, c.CityID, c.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrCustomerConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) CreateOrder(ctx context.Context, o orders.Order) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, assigned_to, created_by, issue_date, due_date,
			status, payment_status, currency, channel, notes,
			customer_name, customer_phone, address, city_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		o.CustomerID, o.AssignedTo, o.CreatedBy, o.IssueDate, o.DueDate,
		o.Status, o.PaymentStatus, o.Currency, o.Channel, o.Notes,
		o.CustomerName, o.CustomerPhone, o.Address, o.CityName,
	).Scan(&id)
	return id, err
}

func (r *txRepository) CreateOrderItem(ctx context.Context, it orders.OrderItem) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price, discount, total, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		it.OrderID, it.ProductID, it.Quantity, it.Price, it.Discount, it.Total, it.Status, it.PaymentStatus,
	).Scan(&id)
	return id, err
}

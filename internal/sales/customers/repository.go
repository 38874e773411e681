package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	FindByPhoneOrEmail(ctx context.Context, phone, email string) ([]Customer, error)
	Create(ctx context.Context, customer Customer) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const customerColumns = `id, name, phone, email, address_line1, address_line2, city_id, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.AddressLine1, &c.AddressLine2,
		&c.CityID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByPhoneOrEmail matches on phone, and additionally on email when a real
// (non placeholder) email is given. Results keep insertion order so the
// oldest match comes first.
func (r *repository) FindByPhoneOrEmail(ctx context.Context, phone, email string) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	args := []interface{}{phone}
	if email != "" && email != EmailNone {
		query += ` OR email = $2`
		args = append(args, email)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.AddressLine1, &c.AddressLine2,
			&c.CityID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, customer Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address_line1, address_line2, city_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		customer.Name, customer.Phone, customer.Email, customer.AddressLine1,
		customer.AddressLine2, customer.CityID, customer.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

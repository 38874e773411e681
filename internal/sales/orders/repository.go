package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("record not found")

// ListFilters narrows the order list screen.
type ListFilters struct {
	AssignedTo *int64
	Status     *OrderStatus
	Channel    string
	Limit      int
	Offset     int
}

type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filters ListFilters) ([]Order, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, customer_id, assigned_to, created_by, issue_date, due_date,
	status, payment_status, currency, channel, notes,
	customer_name, customer_phone, address, city_name, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.AssignedTo, &o.CreatedBy, &o.IssueDate, &o.DueDate,
		&o.Status, &o.PaymentStatus, &o.Currency, &o.Channel, &o.Notes,
		&o.CustomerName, &o.CustomerPhone, &o.Address, &o.CityName, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, discount, total, status, payment_status, created_at
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&it.Discount, &it.Total, &it.Status, &it.PaymentStatus, &it.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM orders WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.AssignedTo != nil {
		argCount++
		clause := ` AND assigned_to = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.AssignedTo)
	}
	if filters.Status != nil {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Status)
	}
	if filters.Channel != "" {
		argCount++
		clause := ` AND channel = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Channel)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.AssignedTo, &o.CreatedBy, &o.IssueDate, &o.DueDate,
			&o.Status, &o.PaymentStatus, &o.Currency, &o.Channel, &o.Notes,
			&o.CustomerName, &o.CustomerPhone, &o.Address, &o.CityName, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, o)
	}
	return result, total, rows.Err()
}

package cities

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-oms/meridian-oms/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]City, int, error)
	Get(ctx context.Context, id int64) (City, error)
	GetActiveByName(ctx context.Context, name string) (City, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const cityColumns = `id, name, is_active, created_at, updated_at`

func scanCity(row pgx.Row) (City, error) {
	var c City
	err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return City{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]City, int, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM cities WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND is_active = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (City, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id)
	return scanCity(row)
}

// GetActiveByName matches the stored name exactly, case sensitive.
func (r *repository) GetActiveByName(ctx context.Context, name string) (City, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE name = $1 AND is_active`, name)
	return scanCity(row)
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE cities SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

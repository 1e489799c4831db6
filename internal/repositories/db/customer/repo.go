package customerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notary/internal/dbs/postgres"
	"notary/internal/entities"
	"notary/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "customerRepo/"

const customerColumns = `
			c.id AS id,
			c.name AS name,
			c.address AS address,
			c.phone AS phone,
			c.email AS email,
			c.type AS type,
			c.national_id AS national_id,
			c.passport_number AS passport_number,
			c.business_registration AS business_registration,
			c.created_at AS created_at,
			c.updated_at AS updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateCustomer(ctx context.Context, c *models.Customer) error {
	op := pkg + "CreateCustomer"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO customers (id, name, address, phone, email, type, national_id, passport_number, business_registration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Name, c.Address, nullable(c.Phone), nullable(c.Email), string(c.Type),
		nullable(c.NationalID), nullable(c.PassportNumber), nullable(c.BusinessRegistration), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &models.UniqueConstraintError{
				Constraint: pgErr.Constraint,
				Err:        models.ErrUNIQUEConstraintFailed,
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	op := pkg + "UpdateCustomer"

	res, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE customers
		SET name = $2, address = $3, phone = $4, email = $5, type = $6,
			national_id = $7, passport_number = $8, business_registration = $9, updated_at = $10
		WHERE id = $1`,
		c.ID, c.Name, c.Address, nullable(c.Phone), nullable(c.Email), string(c.Type),
		nullable(c.NationalID), nullable(c.PassportNumber), nullable(c.BusinessRegistration), c.UpdatedAt)
	if err != nil {
		if postgres.IsInvalidText(err) {
			return fmt.Errorf("%s: %w", op, models.ErrCustomerNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrCustomerNotFound)
	}

	return nil
}

func (r *repository) CustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	op := pkg + "CustomerByID"

	raw := entities.Customer{}

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &raw,
		`SELECT`+customerColumns+`
		FROM customers c
		WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(raw), nil
}

func (r *repository) ListCustomers(ctx context.Context, limit int) ([]*models.Customer, error) {
	op := pkg + "ListCustomers"

	raws := make([]entities.Customer, 0)

	query := `SELECT` + customerColumns + `
		FROM customers c
		ORDER BY c.name ASC`

	args := []any{}

	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	if err := postgres.Conn(ctx, r.db).SelectContext(ctx, &raws, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	customers := make([]*models.Customer, 0, len(raws))
	for _, raw := range raws {
		customers = append(customers, toModel(raw))
	}

	return customers, nil
}

// Exists runs on the transaction carried by ctx, if any, so reconciliation sees its own writes.
func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	op := pkg + "Exists"

	var exists bool

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id)
	if err != nil {
		if postgres.IsInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// Delete relies on the RESTRICT foreign key from party_document_links as the last line of defence.
func (r *repository) Delete(ctx context.Context, id string) error {
	op := pkg + "Delete"

	res, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%s: %w", op, models.ErrCustomerInUse)
		}
		if postgres.IsInvalidText(err) {
			return fmt.Errorf("%s: %w", op, models.ErrCustomerNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrCustomerNotFound)
	}

	return nil
}

func toModel(raw entities.Customer) *models.Customer {
	return &models.Customer{
		ID:                   raw.ID,
		Name:                 raw.Name,
		Address:              raw.Address,
		Phone:                raw.Phone.String,
		Email:                raw.Email.String,
		Type:                 models.CustomerType(raw.Type),
		NationalID:           raw.NationalID.String,
		PassportNumber:       raw.PassportNumber.String,
		BusinessRegistration: raw.BusinessRegistration.String,
		CreatedAt:            raw.CreatedAt,
		UpdatedAt:            raw.UpdatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package partyrepo

import (
	"context"
	"errors"
	"fmt"
	"notary/internal/dbs/postgres"
	"notary/internal/entities"
	"notary/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "partyRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) ListByDocument(ctx context.Context, documentID string) ([]models.PartyLink, error) {
	op := pkg + "ListByDocument"

	raws := make([]entities.PartyLink, 0)

	err := postgres.Conn(ctx, r.db).SelectContext(ctx, &raws,
		`SELECT
			l.document_id AS document_id,
			l.customer_id AS customer_id,
			l.role AS role,
			l.signature_status AS signature_status,
			l.notary_date AS notary_date,
			l.created_at AS created_at,
			l.updated_at AS updated_at
		FROM party_document_links l
		WHERE l.document_id = $1
		ORDER BY l.created_at ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	links := make([]models.PartyLink, 0, len(raws))
	for _, raw := range raws {
		links = append(links, models.PartyLink{
			DocumentID:      raw.DocumentID,
			CustomerID:      raw.CustomerID,
			Role:            models.PartyRole(raw.Role),
			SignatureStatus: models.SignatureStatus(raw.SignatureStatus),
			NotaryDate:      raw.NotaryDate,
			CreatedAt:       raw.CreatedAt,
			UpdatedAt:       raw.UpdatedAt,
		})
	}

	return links, nil
}

func (r *repository) Create(ctx context.Context, link models.PartyLink) error {
	op := pkg + "Create"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO party_document_links (document_id, customer_id, role, signature_status, notary_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.DocumentID, link.CustomerID, string(link.Role), string(link.SignatureStatus), link.NotaryDate, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return &models.UniqueConstraintError{Constraint: pgErr.Constraint, Err: models.ErrDuplicatePartyLink}
			case "23503", "22P02":
				return fmt.Errorf("%s: %w", op, models.ErrCustomerNotExist)
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, link models.PartyLink) error {
	op := pkg + "Update"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE party_document_links
		SET role = $3, signature_status = $4, notary_date = $5, updated_at = $6
		WHERE document_id = $1 AND customer_id = $2`,
		link.DocumentID, link.CustomerID, string(link.Role), string(link.SignatureStatus), link.NotaryDate, link.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, documentID string, customerID string) error {
	op := pkg + "Delete"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM party_document_links WHERE document_id = $1 AND customer_id = $2`,
		documentID, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	op := pkg + "CountByCustomer"

	var count int

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM party_document_links WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

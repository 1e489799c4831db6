package documentrepo

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

const pkg = "documentRepo/"

const documentColumns = `
			d.id AS id,
			d.creation_date AS creation_date,
			d.secretary_name AS secretary_name,
			d.notary_public AS notary_public,
			d.transaction_code AS transaction_code,
			d.description AS description,
			d.document_type AS document_type,
			d.created_at AS created_at,
			d.updated_at AS updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	op := pkg + "CreateDocument"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO documents (id, creation_date, secretary_name, notary_public, transaction_code, description, document_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, doc.CreationDate, doc.SecretaryName, doc.NotaryPublic, doc.TransactionCode, doc.Description, doc.DocumentType, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, uniqueViolation(err))
	}

	return nil
}

func (r *repository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	op := pkg + "UpdateDocument"

	res, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE documents
		SET creation_date = $2, secretary_name = $3, notary_public = $4, transaction_code = $5,
			description = $6, document_type = $7, updated_at = $8
		WHERE id = $1`,
		doc.ID, doc.CreationDate, doc.SecretaryName, doc.NotaryPublic, doc.TransactionCode, doc.Description, doc.DocumentType, doc.UpdatedAt)
	if err != nil {
		if postgres.IsInvalidText(err) {
			return fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return fmt.Errorf("%s: %w", op, uniqueViolation(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
	}

	return nil
}

func (r *repository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "DocumentByID"

	rawDoc := entities.Document{}

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &rawDoc,
		`SELECT`+documentColumns+`
		FROM documents d
		WHERE d.id = $1`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(rawDoc), nil
}

// TransactionCodeTaken reports whether code belongs to a document other than exceptID.
func (r *repository) TransactionCodeTaken(ctx context.Context, code string, exceptID string) (bool, error) {
	op := pkg + "TransactionCodeTaken"

	var taken bool

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE transaction_code = $1 AND id <> $2)`,
		code, exceptID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return taken, nil
}

func (r *repository) ListDocuments(ctx context.Context, limit int) ([]*models.Document, error) {
	op := pkg + "ListDocuments"

	rawDocs := make([]entities.Document, 0)

	query := `SELECT` + documentColumns + `
		FROM documents d
		ORDER BY d.creation_date DESC, d.created_at DESC`

	args := []any{}

	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	err := postgres.Conn(ctx, r.db).SelectContext(ctx, &rawDocs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]*models.Document, 0, len(rawDocs))

	for _, rawDoc := range rawDocs {
		docs = append(docs, toModel(rawDoc))
	}

	return docs, nil
}

func toModel(rawDoc entities.Document) *models.Document {
	return &models.Document{
		ID:              rawDoc.ID,
		CreationDate:    rawDoc.CreationDate,
		SecretaryName:   rawDoc.SecretaryName,
		NotaryPublic:    rawDoc.NotaryPublic,
		TransactionCode: rawDoc.TransactionCode,
		Description:     rawDoc.Description,
		DocumentType:    rawDoc.DocumentType,
		CreatedAt:       rawDoc.CreatedAt,
		UpdatedAt:       rawDoc.UpdatedAt,
	}
}

func uniqueViolation(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &models.UniqueConstraintError{
			Constraint: pgErr.Constraint,
			Err:        models.ErrDuplicateTransactionCode,
		}
	}
	return err
}

package filerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notary/internal/dbs/postgres"
	"notary/internal/entities"
	"notary/internal/models"
	"time"

	"github.com/jmoiron/sqlx"
)

const pkg = "fileRepo/"

const fileColumns = `
			f.id AS id,
			f.document_id AS document_id,
			f.file_name AS file_name,
			f.size AS size,
			f.content_type AS content_type,
			f.blob_key AS blob_key,
			f.bucket AS bucket,
			f.digest AS digest,
			f.signature AS signature,
			f.signed_at AS signed_at,
			f.created_at AS created_at,
			f.updated_at AS updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateFile(ctx context.Context, f *models.DocumentFile) error {
	op := pkg + "CreateFile"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO document_files (id, document_id, file_name, size, content_type, blob_key, bucket, digest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.DocumentID, f.FileName, f.Size, f.ContentType, f.BlobKey, f.Bucket, f.Digest, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) FileByID(ctx context.Context, id string) (*models.DocumentFile, error) {
	op := pkg + "FileByID"

	raw := entities.DocumentFile{}

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &raw,
		`SELECT`+fileColumns+`
		FROM document_files f
		WHERE f.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(raw), nil
}

func (r *repository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentFile, error) {
	op := pkg + "ListByDocument"

	raws := make([]entities.DocumentFile, 0)

	err := postgres.Conn(ctx, r.db).SelectContext(ctx, &raws,
		`SELECT`+fileColumns+`
		FROM document_files f
		WHERE f.document_id = $1
		ORDER BY f.created_at ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	files := make([]models.DocumentFile, 0, len(raws))
	for _, raw := range raws {
		files = append(files, *toModel(raw))
	}

	return files, nil
}

// SaveSignature touches only the signature columns and updated_at.
func (r *repository) SaveSignature(ctx context.Context, id string, signature []byte, signedAt time.Time) error {
	op := pkg + "SaveSignature"

	res, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE document_files SET signature = $2, signed_at = $3, updated_at = $3 WHERE id = $1`,
		id, signature, signedAt)
	if err != nil {
		if postgres.IsInvalidText(err) {
			return fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	op := pkg + "Delete"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM document_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func toModel(raw entities.DocumentFile) *models.DocumentFile {
	f := &models.DocumentFile{
		ID:          raw.ID,
		DocumentID:  raw.DocumentID,
		FileName:    raw.FileName,
		Size:        raw.Size,
		ContentType: raw.ContentType,
		BlobKey:     raw.BlobKey,
		Bucket:      raw.Bucket,
		Digest:      raw.Digest,
		Signature:   raw.Signature,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}

	if raw.SignedAt.Valid {
		signedAt := raw.SignedAt.Time
		f.SignedAt = &signedAt
	}

	return f
}

package entities

import (
	"database/sql"
	"time"
)

type Document struct {
	ID              string    `db:"id"`
	CreationDate    time.Time `db:"creation_date"`
	SecretaryName   string    `db:"secretary_name"`
	NotaryPublic    string    `db:"notary_public"`
	TransactionCode string    `db:"transaction_code"`
	Description     string    `db:"description"`
	DocumentType    string    `db:"document_type"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type DocumentFile struct {
	ID          string       `db:"id"`
	DocumentID  string       `db:"document_id"`
	FileName    string       `db:"file_name"`
	Size        int64        `db:"size"`
	ContentType string       `db:"content_type"`
	BlobKey     string       `db:"blob_key"`
	Bucket      string       `db:"bucket"`
	Digest      string       `db:"digest"`
	Signature   []byte       `db:"signature"`
	SignedAt    sql.NullTime `db:"signed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

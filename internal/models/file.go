package models

import "time"

type DocumentFile struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id"`
	FileName    string     `json:"file_name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	BlobKey     string     `json:"blob_key"`
	Bucket      string     `json:"bucket"`
	Digest      string     `json:"digest"`
	Signature   []byte     `json:"signature,omitempty"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (f *DocumentFile) IsSigned() bool {
	return len(f.Signature) > 0
}

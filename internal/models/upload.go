package models

import "time"

type UploadState string

const (
	UploadNotStarted UploadState = "NotStarted"
	UploadInProgress UploadState = "InProgress"
	UploadCompleted  UploadState = "Completed"
	UploadAborted    UploadState = "Aborted"
)

func (s UploadState) IsTerminal() bool {
	return s == UploadCompleted || s == UploadAborted
}

// UploadSession tracks one multipart upload against a blob key.
type UploadSession struct {
	UploadID    string      `json:"upload_id"`
	Key         string      `json:"key"`
	ContentType string      `json:"content_type"`
	State       UploadState `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type CompletedPart struct {
	PartNumber int32  `json:"part_number"`
	ETag       string `json:"etag"`
}

type PresignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

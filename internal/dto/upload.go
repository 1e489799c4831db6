package dto

import "notary/internal/models"

// UploadKeyPrefix keeps client multipart uploads out of the document file namespace.
const UploadKeyPrefix = "uploads/"

type InitiateUploadRequest struct {
	Key         string `json:"key" validate:"required,max=1024,startswith=uploads/"`
	ContentType string `json:"content_type" validate:"required"`
}

type CompleteUploadRequest struct {
	Key   string                 `json:"key" validate:"required"`
	Parts []models.CompletedPart `json:"parts"`
}

// RegisterFileRequest attaches an object uploaded through the multipart flow to a document.
type RegisterFileRequest struct {
	Key         string `json:"key" validate:"required"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

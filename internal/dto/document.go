package dto

import (
	"notary/internal/models"
	"time"
)

type PartyRequest struct {
	CustomerID      string     `json:"customer_id" validate:"required,uuid"`
	Role            string     `json:"role" validate:"required,oneof=PartyA PartyB PartyC Notary"`
	SignatureStatus string     `json:"signature_status" validate:"omitempty,oneof=Pending Signed Rejected"`
	NotaryDate      *time.Time `json:"notary_date"`
}

// DocumentRequest is the body of document create and update. Parties is the
// full desired party set; an absent list removes every party.
type DocumentRequest struct {
	CreationDate    time.Time      `json:"creation_date" validate:"required"`
	SecretaryName   string         `json:"secretary_name" validate:"required,max=255"`
	NotaryPublic    string         `json:"notary_public" validate:"required,max=255"`
	TransactionCode string         `json:"transaction_code" validate:"required,max=64"`
	Description     string         `json:"description" validate:"max=4096"`
	DocumentType    string         `json:"document_type" validate:"required,max=64"`
	Parties         []PartyRequest `json:"parties" validate:"dive"`
}

func (d DocumentRequest) ToModel(id string) *models.Document {
	return &models.Document{
		ID:              id,
		CreationDate:    d.CreationDate,
		SecretaryName:   d.SecretaryName,
		NotaryPublic:    d.NotaryPublic,
		TransactionCode: d.TransactionCode,
		Description:     d.Description,
		DocumentType:    d.DocumentType,
	}
}

func (d DocumentRequest) DesiredParties() []models.DesiredParty {
	desired := make([]models.DesiredParty, 0, len(d.Parties))

	for _, p := range d.Parties {
		dp := models.DesiredParty{
			CustomerID:      p.CustomerID,
			Role:            models.PartyRole(p.Role),
			SignatureStatus: models.SignatureStatus(p.SignatureStatus),
		}
		if p.NotaryDate != nil {
			dp.NotaryDate = *p.NotaryDate
		}
		desired = append(desired, dp)
	}

	return desired
}

type DocumentResponse struct {
	*models.Document
	Parties []models.PartyLink    `json:"parties"`
	Files   []models.DocumentFile `json:"files"`
}

func NewDocumentResponse(d *models.DocumentDetails) DocumentResponse {
	parties := d.Parties
	if parties == nil {
		parties = []models.PartyLink{}
	}

	files := d.Files
	if files == nil {
		files = []models.DocumentFile{}
	}

	return DocumentResponse{Document: d.Document, Parties: parties, Files: files}
}

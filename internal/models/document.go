package models

import "time"

type Document struct {
	ID              string    `json:"id"`
	CreationDate    time.Time `json:"creation_date"`
	SecretaryName   string    `json:"secretary_name"`
	NotaryPublic    string    `json:"notary_public"`
	TransactionCode string    `json:"transaction_code"`
	Description     string    `json:"description"`
	DocumentType    string    `json:"document_type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DocumentDetails is a document together with its party-links and file records.
type DocumentDetails struct {
	Document *Document
	Parties  []PartyLink
	Files    []DocumentFile
}

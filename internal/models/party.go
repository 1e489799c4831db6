package models

import "time"

type PartyRole string

const (
	RolePartyA PartyRole = "PartyA"
	RolePartyB PartyRole = "PartyB"
	RolePartyC PartyRole = "PartyC"
	RoleNotary PartyRole = "Notary"
)

func (r PartyRole) IsValid() bool {
	switch r {
	case RolePartyA, RolePartyB, RolePartyC, RoleNotary:
		return true
	}
	return false
}

type SignatureStatus string

const (
	SignaturePending  SignatureStatus = "Pending"
	SignatureSigned   SignatureStatus = "Signed"
	SignatureRejected SignatureStatus = "Rejected"
)

func (s SignatureStatus) IsValid() bool {
	return s == SignaturePending || s == SignatureSigned || s == SignatureRejected
}

// PartyLink associates a customer with a document in a signing role.
// (DocumentID, CustomerID) is the identity.
type PartyLink struct {
	DocumentID      string          `json:"document_id"`
	CustomerID      string          `json:"customer_id"`
	Role            PartyRole       `json:"role"`
	SignatureStatus SignatureStatus `json:"signature_status"`
	NotaryDate      time.Time       `json:"notary_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PartyLinkKey struct {
	DocumentID string `json:"document_id"`
	CustomerID string `json:"customer_id"`
}

// DesiredParty is one entry of the party set a caller wants a document to have.
// Zero SignatureStatus and NotaryDate mean "not specified".
type DesiredParty struct {
	CustomerID      string
	Role            PartyRole
	SignatureStatus SignatureStatus
	NotaryDate      time.Time
}

// RoleChange describes an update of an existing link.
type RoleChange struct {
	Link     PartyLink
	FromRole PartyRole
}

// PartyPlan holds the disjoint operation lists of a reconciliation, applied in
// Create, Update, Remove order.
type PartyPlan struct {
	Create []PartyLink
	Update []RoleChange
	Remove []PartyLinkKey
}

func (p PartyPlan) IsEmpty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

package models

import "time"

type CustomerType string

const (
	CustomerIndividual CustomerType = "Individual"
	CustomerBusiness   CustomerType = "Business"
)

func (t CustomerType) IsValid() bool {
	return t == CustomerIndividual || t == CustomerBusiness
}

type Customer struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Address              string       `json:"address"`
	Phone                string       `json:"phone,omitempty"`
	Email                string       `json:"email,omitempty"`
	Type                 CustomerType `json:"type"`
	NationalID           string       `json:"national_id,omitempty"`
	PassportNumber       string       `json:"passport_number,omitempty"`
	BusinessRegistration string       `json:"business_registration,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

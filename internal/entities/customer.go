package entities

import (
	"database/sql"
	"time"
)

type Customer struct {
	ID                   string         `db:"id"`
	Name                 string         `db:"name"`
	Address              string         `db:"address"`
	Phone                sql.NullString `db:"phone"`
	Email                sql.NullString `db:"email"`
	Type                 string         `db:"type"`
	NationalID           sql.NullString `db:"national_id"`
	PassportNumber       sql.NullString `db:"passport_number"`
	BusinessRegistration sql.NullString `db:"business_registration"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type PartyLink struct {
	DocumentID      string    `db:"document_id"`
	CustomerID      string    `db:"customer_id"`
	Role            string    `db:"role"`
	SignatureStatus string    `db:"signature_status"`
	NotaryDate      time.Time `db:"notary_date"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type User struct {
	ID        string    `db:"id"`
	Login     string    `db:"login"`
	PassHash  []byte    `db:"pass_hash"`
	CreatedAt time.Time `db:"created_at"`
}

package models

import "time"

type contextKey string

const UserContextKey contextKey = "user"

// User is a staff account operating the registry (secretary, notary clerk).
type User struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

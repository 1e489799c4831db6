package user

import "context"

const pkg = "userHandler/"

// StaffRegistrar creates staff accounts. token is the admin token gating registration.
type StaffRegistrar interface {
	Register(ctx context.Context, login string, password string, token string) (string, error)
}

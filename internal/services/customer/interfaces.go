package customerservice

import (
	"context"
	"notary/internal/models"
)

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	CustomerByID(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context, limit int) ([]*models.Customer, error)
	Delete(ctx context.Context, id string) error
}

type LinkCounter interface {
	CountByCustomer(ctx context.Context, customerID string) (int, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

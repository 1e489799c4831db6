package customer

import (
	"context"
	"notary/internal/models"
)

const pkg = "customerHandler/"

type CustomerService interface {
	CreateCustomer(ctx context.Context, c *models.Customer) (string, error)
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	CustomerByID(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context, limit int) ([]*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

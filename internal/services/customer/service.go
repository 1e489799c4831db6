package customerservice

import (
	"context"
	"fmt"
	"log/slog"
	"notary/internal/models"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const pkg = "customerService/"

type CustomerService struct {
	log   *slog.Logger
	tx    TxRunner
	repo  CustomerRepository
	links LinkCounter
	now   func() time.Time
}

func New(log *slog.Logger, tx TxRunner, repo CustomerRepository, links LinkCounter) *CustomerService {
	return &CustomerService{
		log:   log,
		tx:    tx,
		repo:  repo,
		links: links,
		now:   time.Now,
	}
}

func (cs *CustomerService) CreateCustomer(ctx context.Context, c *models.Customer) (string, error) {
	op := pkg + "CreateCustomer"

	log := cs.log.With(slog.String("op", op))

	if err := validate(c); err != nil {
		log.Warn("invalid customer", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := cs.now()
	c.ID = uuid.NewV4().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := cs.repo.CreateCustomer(ctx, c); err != nil {
		return "", cs.fail(log, op, "failed to create customer", err)
	}

	log.Info("customer created", slog.String("customer_id", c.ID))

	return c.ID, nil
}

func (cs *CustomerService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	op := pkg + "UpdateCustomer"

	log := cs.log.With(slog.String("op", op), slog.String("customer_id", c.ID))

	if err := validate(c); err != nil {
		log.Warn("invalid customer", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	c.UpdatedAt = cs.now()

	if err := cs.repo.UpdateCustomer(ctx, c); err != nil {
		return cs.fail(log, op, "failed to update customer", err)
	}

	log.Info("customer updated")

	return nil
}

func (cs *CustomerService) CustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	op := pkg + "CustomerByID"

	log := cs.log.With(slog.String("op", op), slog.String("customer_id", id))

	c, err := cs.repo.CustomerByID(ctx, id)
	if err != nil {
		return nil, cs.fail(log, op, "failed to get customer", err)
	}

	return c, nil
}

func (cs *CustomerService) ListCustomers(ctx context.Context, limit int) ([]*models.Customer, error) {
	op := pkg + "ListCustomers"

	log := cs.log.With(slog.String("op", op))

	customers, err := cs.repo.ListCustomers(ctx, limit)
	if err != nil {
		return nil, cs.fail(log, op, "failed to list customers", err)
	}

	return customers, nil
}

// DeleteCustomer refuses to remove a customer that is still a party to any document.
func (cs *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	op := pkg + "DeleteCustomer"

	log := cs.log.With(slog.String("op", op), slog.String("customer_id", id))

	err := cs.tx.RunInTx(ctx, func(ctx context.Context) error {
		count, err := cs.links.CountByCustomer(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%d links: %w", count, models.ErrCustomerInUse)
		}

		return cs.repo.Delete(ctx, id)
	})
	if err != nil {
		return cs.fail(log, op, "failed to delete customer", err)
	}

	log.Info("customer deleted")

	return nil
}

func validate(c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("name and address are required: %w", models.ErrInvalidParams)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("customer type %q: %w", c.Type, models.ErrInvalidParams)
	}
	return nil
}

func (cs *CustomerService) fail(log *slog.Logger, op string, msg string, err error) error {
	if models.KindOf(err) == models.KindInternal {
		log.Error(msg, slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Warn(msg, slog.String("error", err.Error()))

	return fmt.Errorf("%s: %w", op, err)
}

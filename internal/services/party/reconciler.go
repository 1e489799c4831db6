package partyservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"notary/internal/metrics"
	"notary/internal/models"
	"time"
)

const pkg = "partyService/"

// Reconciler brings a document's party-links in line with a desired set.
// It does not open a transaction; callers that need the document update and the
// link changes to commit together run Reconcile inside one.
type Reconciler struct {
	log       *slog.Logger
	customers CustomerChecker
	links     PartyStore
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(log *slog.Logger, customers CustomerChecker, links PartyStore, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		log:       log,
		customers: customers,
		links:     links,
		metrics:   m,
		now:       time.Now,
	}
}

// Plan computes the operations turning current into desired. It performs no I/O.
// For repeated customer ids in desired the last entry wins.
func Plan(documentID string, current []models.PartyLink, desired []models.DesiredParty, defaultNotaryDate time.Time, now time.Time) models.PartyPlan {
	var plan models.PartyPlan

	byCustomer := make(map[string]models.PartyLink, len(current))
	for _, link := range current {
		byCustomer[link.CustomerID] = link
	}

	wanted := make(map[string]models.DesiredParty, len(desired))
	order := make([]string, 0, len(desired))
	for _, d := range desired {
		if _, seen := wanted[d.CustomerID]; !seen {
			order = append(order, d.CustomerID)
		}
		wanted[d.CustomerID] = d
	}

	for _, customerID := range order {
		d := wanted[customerID]

		existing, ok := byCustomer[customerID]
		if !ok {
			notaryDate := d.NotaryDate
			if notaryDate.IsZero() {
				notaryDate = defaultNotaryDate
			}

			plan.Create = append(plan.Create, models.PartyLink{
				DocumentID:      documentID,
				CustomerID:      customerID,
				Role:            d.Role,
				SignatureStatus: models.SignaturePending,
				NotaryDate:      notaryDate,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			continue
		}

		if existing.Role == d.Role {
			continue
		}

		updated := existing
		updated.Role = d.Role
		if d.SignatureStatus != "" {
			updated.SignatureStatus = d.SignatureStatus
		}
		if !d.NotaryDate.IsZero() {
			updated.NotaryDate = d.NotaryDate
		}
		updated.UpdatedAt = now

		plan.Update = append(plan.Update, models.RoleChange{Link: updated, FromRole: existing.Role})
	}

	for _, link := range current {
		if _, keep := wanted[link.CustomerID]; !keep {
			plan.Remove = append(plan.Remove, models.PartyLinkKey{DocumentID: documentID, CustomerID: link.CustomerID})
		}
	}

	return plan
}

// Reconcile validates every desired entry before touching the store, then applies
// creates, updates and removes in that order.
func (r *Reconciler) Reconcile(ctx context.Context, documentID string, desired []models.DesiredParty, defaultNotaryDate time.Time) (models.PartyPlan, error) {
	op := pkg + "Reconcile"

	log := r.log.With(slog.String("op", op), slog.String("document_id", documentID))

	if err := r.validate(ctx, log, desired); err != nil {
		return models.PartyPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	current, err := r.links.ListByDocument(ctx, documentID)
	if err != nil {
		log.Error("failed to list party links", slog.String("error", err.Error()))
		return models.PartyPlan{}, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	plan := Plan(documentID, current, desired, defaultNotaryDate, r.now())
	if plan.IsEmpty() {
		log.Debug("party links already up to date")
		return plan, nil
	}

	if err := r.apply(ctx, log, plan); err != nil {
		return models.PartyPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	if r.metrics != nil {
		r.metrics.ObservePartyPlan(len(plan.Create), len(plan.Update), len(plan.Remove))
	}

	log.Info("party links reconciled",
		slog.Int("created", len(plan.Create)),
		slog.Int("updated", len(plan.Update)),
		slog.Int("removed", len(plan.Remove)),
	)

	return plan, nil
}

func (r *Reconciler) validate(ctx context.Context, log *slog.Logger, desired []models.DesiredParty) error {
	checked := make(map[string]bool, len(desired))

	for _, d := range desired {
		if d.CustomerID == "" {
			return fmt.Errorf("empty customer id: %w", models.ErrInvalidParams)
		}
		if !d.Role.IsValid() {
			log.Warn("unknown party role", slog.String("role", string(d.Role)))
			return fmt.Errorf("%q: %w", d.Role, models.ErrInvalidRole)
		}
		if d.SignatureStatus != "" && !d.SignatureStatus.IsValid() {
			return fmt.Errorf("signature status %q: %w", d.SignatureStatus, models.ErrInvalidParams)
		}

		if checked[d.CustomerID] {
			continue
		}
		checked[d.CustomerID] = true

		ok, err := r.customers.Exists(ctx, d.CustomerID)
		if err != nil {
			log.Error("failed to check customer", slog.String("error", err.Error()))
			return models.ErrInternal
		}
		if !ok {
			log.Warn("customer does not exist", slog.String("customer_id", d.CustomerID))
			return fmt.Errorf("%s: %w", d.CustomerID, models.ErrCustomerNotExist)
		}
	}

	return nil
}

func (r *Reconciler) apply(ctx context.Context, log *slog.Logger, plan models.PartyPlan) error {
	for _, link := range plan.Create {
		if err := r.links.Create(ctx, link); err != nil {
			return storeError(log, "create", err)
		}
	}

	for _, change := range plan.Update {
		if err := r.links.Update(ctx, change.Link); err != nil {
			return storeError(log, "update", err)
		}
	}

	for _, key := range plan.Remove {
		if err := r.links.Delete(ctx, key.DocumentID, key.CustomerID); err != nil {
			return storeError(log, "remove", err)
		}
	}

	return nil
}

func storeError(log *slog.Logger, step string, err error) error {
	if errors.Is(err, models.ErrDuplicateKey) || errors.Is(err, models.ErrValidationFailed) || errors.Is(err, models.ErrNotFound) {
		log.Warn("party link rejected", slog.String("step", step), slog.String("error", err.Error()))
		return err
	}

	log.Error("failed to apply party link", slog.String("step", step), slog.String("error", err.Error()))

	return models.ErrInternal
}

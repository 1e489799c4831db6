package partyservice

import (
	"context"
	"notary/internal/models"
)

type CustomerChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type PartyStore interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.PartyLink, error)
	Create(ctx context.Context, link models.PartyLink) error
	Update(ctx context.Context, link models.PartyLink) error
	Delete(ctx context.Context, documentID string, customerID string) error
}

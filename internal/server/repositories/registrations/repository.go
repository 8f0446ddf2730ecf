package registrations

import (
	"context"

	"github.com/dmitrijs2005/zkpauth/internal/server/models"
)

type Repository interface {
	// Create stores reg unless the user is already registered for the group.
	// It reports whether a row was inserted.
	Create(ctx context.Context, reg *models.Registration) (bool, error)
	// ListByGroup returns every registration for groupID.
	ListByGroup(ctx context.Context, groupID string) ([]models.Registration, error)
}

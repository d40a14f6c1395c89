package apikeys

import (
	"context"

	"github.com/mkovalev/chatvault/internal/server/models"
)

type Repository interface {
	// Upsert inserts the encrypted key or replaces the existing one for the
	// same (user, model) pair.
	Upsert(ctx context.Context, key *models.APIKey) (*models.APIKey, error)

	// GetByUserAndModel returns the encrypted key for one provider model,
	// or common.ErrNotFound.
	GetByUserAndModel(ctx context.Context, userID int64, aiModel string) (*models.APIKey, error)

	// ListModels returns the model names the user stored keys for, in
	// insertion order.
	ListModels(ctx context.Context, userID int64) ([]string, error)
}

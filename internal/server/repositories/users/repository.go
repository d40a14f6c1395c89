package users

import (
	"context"

	"github.com/mkovalev/chatvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and fills in the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns id, email, name and password hash for the given
	// email, or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the profile projection: email, name, avatar and
	// whether a passphrase is set.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetPassphraseByID returns only the passphrase hash and salt columns.
	GetPassphraseByID(ctx context.Context, id int64) (*models.User, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, name, avatar string) error
	UpdatePassphrase(ctx context.Context, id int64, passphraseHash, passphraseSalt string) error
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/cryptox"
	"github.com/mkovalev/chatvault/internal/server/models"
	"github.com/mkovalev/chatvault/internal/server/repositories/repomanager"
)

// UserService handles profile reads and updates for an already
// authenticated user: profile, password change, passphrase setup.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// GetProfile returns the profile projection for the given user.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return user, nil
}

// UpdatePassword replaces the user's password after checking the current
// one. A wrong current password is reported as a credential mismatch, not a
// generic authentication failure: the caller already holds a valid token.
func (s *UserService) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	if !cryptox.VerifyCredential(currentPassword, user.PasswordHash) {
		return common.ErrCredentialMismatch
	}

	passwordHash, err := cryptox.HashCredential(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	if err := repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("error updating password: %v", err)
	}

	return nil
}

// UpdateProfile sets the user's display name and avatar storage key.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, avatar string) error {
	repo := s.repomanager.Users(s.db)

	if err := repo.UpdateProfile(ctx, userID, name, avatar); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error updating profile: %v", err)
	}

	return nil
}

// SetPassphrase stores a hashed passphrase and a fresh random salt for the
// user. Replacing an existing passphrase changes the derived key, so any
// previously sealed API keys must be saved again before they can be opened.
func (s *UserService) SetPassphrase(ctx context.Context, userID int64, passphrase string) error {
	repo := s.repomanager.Users(s.db)

	salt, err := common.MakeRandHexString(cryptox.SaltSize)
	if err != nil {
		return common.ErrInternal
	}

	passphraseHash, err := cryptox.HashCredential(passphrase)
	if err != nil {
		return common.ErrInternal
	}

	if err := repo.UpdatePassphrase(ctx, userID, passphraseHash, salt); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error setting passphrase: %v", err)
	}

	return nil
}

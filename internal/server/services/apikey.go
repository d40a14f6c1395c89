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

// APIKeyService stores and retrieves third-party API keys. Keys are sealed
// with AES-GCM under a key derived from the user's passphrase; every
// operation therefore needs the passphrase and verifies it first.
type APIKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAPIKeyService(db *sql.DB, m repomanager.RepositoryManager) *APIKeyService {
	return &APIKeyService{db: db, repomanager: m}
}

// Save encrypts the API key under the passphrase-derived key and upserts it
// for the (user, model) pair. Saving again for the same model replaces the
// previous key.
func (s *APIKeyService) Save(ctx context.Context, userID int64, aiModel, apiKey, passphrase string) error {
	key, err := derivePassphraseKey(ctx, s.repomanager.Users(s.db), userID, passphrase)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.SealKey(apiKey, key)
	if err != nil {
		return common.ErrInternal
	}

	repo := s.repomanager.APIKeys(s.db)

	if _, err := repo.Upsert(ctx, &models.APIKey{
		UserID:     userID,
		AIModel:    aiModel,
		Ciphertext: ciphertext,
		Nonce:      nonce,
	}); err != nil {
		return fmt.Errorf("error saving api key: %v", err)
	}

	return nil
}

// ListModels returns the model names the user has stored keys for. No
// passphrase is required: the listing reveals nothing sealed.
func (s *APIKeyService) ListModels(ctx context.Context, userID int64) ([]string, error) {
	repo := s.repomanager.APIKeys(s.db)

	aiModels, err := repo.ListModels(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing models: %v", err)
	}

	return aiModels, nil
}

// DecryptKey verifies the passphrase, derives the symmetric key and opens
// the stored ciphertext for the given model. A sealed record that fails to
// open under the correct key means corrupted data, not a user error.
func (s *APIKeyService) DecryptKey(ctx context.Context, userID int64, aiModel, passphrase string) (string, error) {
	key, err := derivePassphraseKey(ctx, s.repomanager.Users(s.db), userID, passphrase)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	repo := s.repomanager.APIKeys(s.db)

	record, err := repo.GetByUserAndModel(ctx, userID, aiModel)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrInternal
	}

	apiKey, err := cryptox.OpenKey(record.Ciphertext, record.Nonce, key)
	if err != nil {
		return "", common.ErrInternal
	}

	return apiKey, nil
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/cryptox"
	"github.com/mkovalev/chatvault/internal/server/models"
)

func passphraseUser(t *testing.T, passphrase string) *models.User {
	t.Helper()
	hash, err := cryptox.HashCredential(passphrase)
	if err != nil {
		t.Fatalf("HashCredential error: %v", err)
	}
	return &models.User{ID: 7, PassphraseHash: hash, PassphraseSalt: "00112233445566778899aabbccddeeff"}
}

func TestSaveAndDecryptKey_RoundTrip(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	keysRepo := &fakeAPIKeysRepo{}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: passphraseUser(t, "open sesame")},
		k: keysRepo,
	}
	s := NewAPIKeyService(db, rm)

	if err := s.Save(context.Background(), 7, "gpt-4o", "sk-secret", "open sesame"); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if keysRepo.upserted == nil || keysRepo.upserted.AIModel != "gpt-4o" {
		t.Fatalf("Upsert got %+v", keysRepo.upserted)
	}
	if len(keysRepo.upserted.Ciphertext) == 0 || len(keysRepo.upserted.Nonce) == 0 {
		t.Fatal("ciphertext and nonce must be populated")
	}
	if string(keysRepo.upserted.Ciphertext) == "sk-secret" {
		t.Fatal("api key stored in plaintext")
	}

	// decrypt what Save stored
	keysRepo.getOut = keysRepo.upserted
	apiKey, err := s.DecryptKey(context.Background(), 7, "gpt-4o", "open sesame")
	if err != nil || apiKey != "sk-secret" {
		t.Fatalf("DecryptKey: key=%q err=%v", apiKey, err)
	}
}

func TestSave_WrongPassphrase(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	keysRepo := &fakeAPIKeysRepo{}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: passphraseUser(t, "open sesame")},
		k: keysRepo,
	}
	s := NewAPIKeyService(db, rm)

	err := s.Save(context.Background(), 7, "gpt-4o", "sk-secret", "wrong")
	if !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("wrong passphrase → ErrCredentialMismatch, got %v", err)
	}
	if keysRepo.upserted != nil {
		t.Fatal("nothing may be stored on a failed passphrase check")
	}
}

func TestDecryptKey_Errors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// no key stored for the model
	rmNF := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: passphraseUser(t, "open sesame")},
		k: &fakeAPIKeysRepo{getErr: common.ErrNotFound},
	}
	sNF := NewAPIKeyService(db, rmNF)
	if _, err := sNF.DecryptKey(context.Background(), 7, "gpt-4o", "open sesame"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("missing key → ErrNotFound, got %v", err)
	}

	// stored blob that does not open under the derived key
	rmBad := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: passphraseUser(t, "open sesame")},
		k: &fakeAPIKeysRepo{getOut: &models.APIKey{
			UserID:     7,
			AIModel:    "gpt-4o",
			Ciphertext: []byte("garbage"),
			Nonce:      make([]byte, 12),
		}},
	}
	sBad := NewAPIKeyService(db, rmBad)
	if _, err := sBad.DecryptKey(context.Background(), 7, "gpt-4o", "open sesame"); !errors.Is(err, common.ErrInternal) {
		t.Fatalf("corrupted blob → ErrInternal, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{k: &fakeAPIKeysRepo{listOut: []string{"gpt-4o", "claude"}}}
	s := NewAPIKeyService(db, rm)

	aiModels, err := s.ListModels(context.Background(), 7)
	if err != nil || len(aiModels) != 2 || aiModels[0] != "gpt-4o" {
		t.Fatalf("ListModels: %v err=%v", aiModels, err)
	}

	rmErr := &fakeRepoManager{k: &fakeAPIKeysRepo{listErr: errBoom{}}}
	if _, err := NewAPIKeyService(db, rmErr).ListModels(context.Background(), 7); err == nil {
		t.Fatal("expected wrapped list error, got nil")
	}
}

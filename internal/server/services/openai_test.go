package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/cryptox"
	"github.com/mkovalev/chatvault/internal/openaix"
	"github.com/mkovalev/chatvault/internal/server/models"
)

type fakeChatCompleter struct {
	gotAPIKey  string
	gotRequest *openaix.ChatRequest

	out *openaix.ChatResponse
	err error
}

func (f *fakeChatCompleter) ChatCompletion(ctx context.Context, apiKey string, request *openaix.ChatRequest) (*openaix.ChatResponse, error) {
	f.gotAPIKey = apiKey
	f.gotRequest = request
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// sealedAPIKey seals apiKey exactly the way Save would for the given user,
// so DecryptKey can open it in tests.
func sealedAPIKey(t *testing.T, user *models.User, passphrase, apiKey string) *models.APIKey {
	t.Helper()

	salt, err := cryptox.HexToBytes(user.PassphraseSalt)
	if err != nil {
		t.Fatalf("HexToBytes error: %v", err)
	}
	key := cryptox.DeriveKey([]byte(passphrase), salt)
	ciphertext, nonce, err := cryptox.SealKey(apiKey, key)
	if err != nil {
		t.Fatalf("SealKey error: %v", err)
	}

	return &models.APIKey{UserID: user.ID, AIModel: "gpt-4o", Ciphertext: ciphertext, Nonce: nonce}
}

func TestChat_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := passphraseUser(t, "open sesame")

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: user},
		k: &fakeAPIKeysRepo{getOut: sealedAPIKey(t, user, "open sesame", "sk-secret")},
	}

	client := &fakeChatCompleter{
		out: &openaix.ChatResponse{
			Model: "gpt-4o",
			Choices: []openaix.ChatChoice{
				{Message: openaix.ChatMessage{Role: "assistant", Content: "hi"}},
			},
		},
	}
	s := NewOpenAIService(NewAPIKeyService(db, rm), client)

	resp, err := s.Chat(context.Background(), 7, "open sesame", &openaix.ChatRequest{
		Model:    "gpt-4o",
		Messages: []openaix.ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if client.gotAPIKey != "sk-secret" {
		t.Fatalf("provider called with key %q", client.gotAPIKey)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "hi" {
		t.Fatalf("Chat response: %+v", resp)
	}
}

func TestChat_WrongPassphrase(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: passphraseUser(t, "open sesame")},
		k: &fakeAPIKeysRepo{},
	}
	client := &fakeChatCompleter{}
	s := NewOpenAIService(NewAPIKeyService(db, rm), client)

	_, err := s.Chat(context.Background(), 7, "wrong", &openaix.ChatRequest{Model: "gpt-4o"})
	if !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("wrong passphrase → ErrCredentialMismatch, got %v", err)
	}
	if client.gotRequest != nil {
		t.Fatal("provider must not be called on a failed passphrase check")
	}
}

func TestChat_ProviderError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := passphraseUser(t, "open sesame")

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{passphraseOut: user},
		k: &fakeAPIKeysRepo{getOut: sealedAPIKey(t, user, "open sesame", "sk-secret")},
	}

	client := &fakeChatCompleter{err: errBoom{}}
	s := NewOpenAIService(NewAPIKeyService(db, rm), client)

	_, err := s.Chat(context.Background(), 7, "open sesame", &openaix.ChatRequest{Model: "gpt-4o"})
	if err == nil {
		t.Fatal("expected wrapped provider error, got nil")
	}
}

func TestModels_DelegatesToKeyStore(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{k: &fakeAPIKeysRepo{listOut: []string{"gpt-4o"}}}
	s := NewOpenAIService(NewAPIKeyService(db, rm), &fakeChatCompleter{})

	aiModels, err := s.Models(context.Background(), 7)
	if err != nil || len(aiModels) != 1 {
		t.Fatalf("Models: %v err=%v", aiModels, err)
	}
}

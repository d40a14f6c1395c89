package services

import (
	"context"
	"fmt"

	"github.com/mkovalev/chatvault/internal/openaix"
)

// ChatCompleter is the slice of the provider client that OpenAIService
// needs; tests substitute a fake.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, apiKey string, request *openaix.ChatRequest) (*openaix.ChatResponse, error)
}

// OpenAIService proxies chat-completion requests to the configured provider.
// It decrypts the user's stored API key for the requested model, forwards
// the conversation, and never retains the plaintext key.
type OpenAIService struct {
	keys   *APIKeyService
	client ChatCompleter
}

func NewOpenAIService(keys *APIKeyService, client ChatCompleter) *OpenAIService {
	return &OpenAIService{keys: keys, client: client}
}

// Models returns the provider models the user can chat with, i.e. the ones
// a key is stored for.
func (s *OpenAIService) Models(ctx context.Context, userID int64) ([]string, error) {
	return s.keys.ListModels(ctx, userID)
}

// Chat decrypts the API key for the requested model and forwards the
// conversation to the provider. Passphrase and key errors surface as-is so
// the boundary can answer precisely; provider failures are wrapped.
func (s *OpenAIService) Chat(ctx context.Context, userID int64, passphrase string, request *openaix.ChatRequest) (*openaix.ChatResponse, error) {
	apiKey, err := s.keys.DecryptKey(ctx, userID, request.Model, passphrase)
	if err != nil {
		return nil, err
	}

	response, err := s.client.ChatCompletion(ctx, apiKey, request)
	if err != nil {
		return nil, fmt.Errorf("error calling provider: %v", err)
	}

	return response, nil
}

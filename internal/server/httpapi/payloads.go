package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/mkovalev/chatvault/internal/openaix"
)

// Request payloads carry their own validation rules; handlers call Validate
// right after binding and pass failures to the error handler unchanged.

type RegisterRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Password2, validation.Required, validation.By(stringEquals(r.Password, "passwords must match"))),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPassword2    string `json:"new_password2"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword,
			validation.Required,
			validation.Length(8, 100),
			validation.By(stringDiffers(r.CurrentPassword, "new password must differ from the current one")),
		),
		validation.Field(&r.NewPassword2, validation.Required, validation.By(stringEquals(r.NewPassword, "passwords must match"))),
	)
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Avatar, validation.Length(0, 255)),
	)
}

type PassphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

func (r PassphraseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Passphrase, validation.Required, validation.Length(8, 100)),
	)
}

type SaveAPIKeyRequest struct {
	AIModel    string `json:"ai_model"`
	APIKey     string `json:"api_key"`
	Passphrase string `json:"passphrase"`
}

func (r SaveAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AIModel, validation.Required, validation.Length(1, 15)),
		validation.Field(&r.APIKey, validation.Required),
		validation.Field(&r.Passphrase, validation.Required),
	)
}

type ChatRequest struct {
	AIModel    string                `json:"ai_model"`
	Passphrase string                `json:"passphrase"`
	Messages   []openaix.ChatMessage `json:"messages"`
}

func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AIModel, validation.Required, validation.Length(1, 15)),
		validation.Field(&r.Passphrase, validation.Required),
		validation.Field(&r.Messages, validation.Required, validation.Length(1, 0)),
	)
}

// Response payloads.

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	HasPassphrase bool   `json:"has_passphrase"`
}

type ModelsResponse struct {
	AIModels []string `json:"ai_models"`
}

type ChatContentResponse struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AvatarUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func stringEquals(other, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != other {
			return errors.New(message)
		}
		return nil
	}
}

func stringDiffers(other, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == other {
			return errors.New(message)
		}
		return nil
	}
}

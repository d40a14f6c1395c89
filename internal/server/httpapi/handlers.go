package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/openaix"
	"github.com/mkovalev/chatvault/internal/server/models"
)

// handleRegister answers with the exact same body whether the account was
// created or the email was already taken, so registration cannot be used to
// probe for existing accounts.
func (s *Server) handleRegister(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if _, err := s.auth.Register(c.Context(), payload.Email, payload.Name, payload.Password); err != nil {
		if !errors.Is(err, common.ErrAlreadyExists) {
			return err
		}
		s.logger.Warn(c.Context(), "registration for taken email")
	}

	return c.JSON(MessageResponse{Message: "registration accepted, you can log in now"})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	_, token, err := s.auth.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(s.userResponse(c, user))
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := s.users.GetProfile(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(s.userResponse(c, profile))
}

// userResponse builds the profile DTO. A stored avatar key is exchanged for
// a presigned download URL; if signing fails the profile still renders,
// just without the avatar.
func (s *Server) userResponse(c *fiber.Ctx, user *models.User) UserResponse {
	resp := UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		HasPassphrase: user.HasPassphrase(),
	}

	if user.Avatar != "" {
		url, err := s.avatars.GetDownloadURL(c.Context(), user.Avatar)
		if err != nil {
			s.logger.Warn(c.Context(), "error signing avatar url", "error", err)
		} else {
			resp.AvatarURL = url
		}
	}

	return resp
}

func (s *Server) handleUpdatePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	payload := new(UpdatePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := s.users.UpdatePassword(c.Context(), user.Email, payload.CurrentPassword, payload.NewPassword); err != nil {
		return err
	}

	return c.JSON(StatusResponse{Status: "ok"})
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	payload := new(UpdateProfileRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := s.users.UpdateProfile(c.Context(), user.ID, payload.Name, payload.Avatar); err != nil {
		return err
	}

	return c.JSON(StatusResponse{Status: "ok"})
}

func (s *Server) handleSetPassphrase(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	payload := new(PassphraseRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := s.users.SetPassphrase(c.Context(), user.ID, payload.Passphrase); err != nil {
		return err
	}

	return c.JSON(StatusResponse{Status: "ok"})
}

func (s *Server) handleAvatarUploadURL(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	key, url, err := s.avatars.GetUploadURL(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(AvatarUploadResponse{Key: key, URL: url})
}

func (s *Server) handleSaveAPIKey(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	payload := new(SaveAPIKeyRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := s.keys.Save(c.Context(), user.ID, payload.AIModel, payload.APIKey, payload.Passphrase); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(StatusResponse{Status: "ok"})
}

func (s *Server) handleListAPIKeys(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	aiModels, err := s.keys.ListModels(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(ModelsResponse{AIModels: aiModels})
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	aiModels, err := s.chat.Models(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(ModelsResponse{AIModels: aiModels})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	payload := new(ChatRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	response, err := s.chat.Chat(c.Context(), user.ID, payload.Passphrase, &openaix.ChatRequest{
		Model:    payload.AIModel,
		Messages: payload.Messages,
	})
	if err != nil {
		return err
	}

	var content string
	if len(response.Choices) > 0 {
		content = response.Choices[0].Message.Content
	}

	return c.JSON(ChatContentResponse{Content: content})
}

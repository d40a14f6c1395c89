// Package httpapi is the HTTP boundary of the server: route registration,
// bearer-token middleware, request validation and the mapping from service
// errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/logging"
	"github.com/mkovalev/chatvault/internal/openaix"
	"github.com/mkovalev/chatvault/internal/server/models"
)

// The interfaces below are the slices of the service layer the handlers
// use; tests substitute fakes.

type AuthProvider interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ResolveCurrentUser(ctx context.Context, token string) (*models.User, error)
}

type UserManager interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, name, avatar string) error
	SetPassphrase(ctx context.Context, userID int64, passphrase string) error
}

type KeyStore interface {
	Save(ctx context.Context, userID int64, aiModel, apiKey, passphrase string) error
	ListModels(ctx context.Context, userID int64) ([]string, error)
}

type ChatProxy interface {
	Models(ctx context.Context, userID int64) ([]string, error)
	Chat(ctx context.Context, userID int64, passphrase string, request *openaix.ChatRequest) (*openaix.ChatResponse, error)
}

type AvatarSigner interface {
	GetUploadURL(ctx context.Context, userID int64) (string, string, error)
	GetDownloadURL(ctx context.Context, key string) (string, error)
}

// Server owns the fiber app and its route handlers.
type Server struct {
	addr   string
	app    *fiber.App
	logger logging.Logger

	auth    AuthProvider
	users   UserManager
	keys    KeyStore
	chat    ChatProxy
	avatars AvatarSigner
}

func NewServer(addr string, logger logging.Logger, auth AuthProvider, users UserManager,
	keys KeyStore, chat ChatProxy, avatars AvatarSigner) *Server {

	s := &Server{
		addr:    addr,
		logger:  logger,
		auth:    auth,
		users:   users,
		keys:    keys,
		chat:    chat,
		avatars: avatars,
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Use(s.logRequests)

	api := s.app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Get("/me", s.requireAuth, s.handleMe)

	user := api.Group("/user", s.requireAuth)
	user.Get("/profile", s.handleGetProfile)
	user.Post("/update-password", s.handleUpdatePassword)
	user.Post("/update-profile", s.handleUpdateProfile)
	user.Post("/passphrase", s.handleSetPassphrase)
	user.Post("/avatar-upload-url", s.handleAvatarUploadURL)

	keys := api.Group("/api-keys", s.requireAuth)
	keys.Post("/", s.handleSaveAPIKey)
	keys.Get("/", s.handleListAPIKeys)

	openai := api.Group("/openai", s.requireAuth)
	openai.Get("/models", s.handleModels)
	openai.Post("/chat", s.handleChat)
}

// errorHandler translates service errors into status codes. All
// authentication failures collapse into one generic 401 so the response
// never reveals whether the email, the password or the token was wrong.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation error",
			"fields": validationErrs,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	switch {
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})

	case errors.Is(err, common.ErrCredentialMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "credential mismatch"})

	case errors.Is(err, common.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already exists"})

	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})

	case errors.Is(err, common.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation error"})
	}

	s.logger.Error(c.Context(), "request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// Run blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Run() error {
	return s.app.Listen(s.addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

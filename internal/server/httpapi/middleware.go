package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mkovalev/chatvault/internal/common"
	"github.com/mkovalev/chatvault/internal/server/models"
)

const currentUserKey = "currentUser"

// requireAuth extracts the bearer token, resolves it to a user and stores
// the user in the request locals. Missing or malformed headers fail the same
// way a bad token does.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	const prefix = "Bearer "

	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, prefix) {
		return common.ErrUnauthorized
	}

	user, err := s.auth.ResolveCurrentUser(c.Context(), strings.TrimPrefix(header, prefix))
	if err != nil {
		return err
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// currentUser returns the user stored by requireAuth. Calling it outside a
// protected route is a programming error, reported as unauthorized rather
// than a panic.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	if !ok || user == nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info(c.Context(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)

	return err
}

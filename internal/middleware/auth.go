package middleware

import (
	"context"
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/services"
)

const (
	tokenKey = "jwt"
	userKey  = "user"
)

// Authenticator resolves the subject of a verified token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CurrentUser returns the caller resolved by Auth or OptionalAuth, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(userKey).(*models.User)
	return u
}

// Auth rejects requests without a valid bearer token for an existing,
// unbanned user.
func Auth(cfg *config.Config, auth Authenticator) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			user, err := resolve(c, auth)
			if err != nil {
				return deny(c, err)
			}
			c.Locals(userKey, user)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return deny(c, services.ErrTokenExpired)
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
				return deny(c, services.ErrTokenRequired)
			default:
				return deny(c, services.ErrInvalidToken)
			}
		},
	})
}

// OptionalAuth attaches the caller when a usable token is present and
// otherwise continues anonymously.
func OptionalAuth(cfg *config.Config, auth Authenticator) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			if user, err := resolve(c, auth); err == nil {
				c.Locals(userKey, user)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Next()
		},
	})
}

func resolve(c *fiber.Ctx, auth Authenticator) (*models.User, error) {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return nil, services.ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, services.ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, services.ErrInvalidToken
	}
	return auth.Authenticate(c.UserContext(), id)
}

// deny writes an authentication or authorization failure.
func deny(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	switch services.KindOf(err) {
	case services.KindForbidden:
		status = fiber.StatusForbidden
	case services.KindInternal:
		return err
	}
	body := dto.ErrorResponse{Error: true, Message: err.Error()}
	var se *services.Error
	if errors.As(err, &se) {
		body.Message = se.Message
		body.Fields = se.Fields
	}
	return c.Status(status).JSON(body)
}

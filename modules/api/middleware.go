package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/auth"
)

const (
	// UserContextKey is the key used to store the resolved user in the Fiber context.
	UserContextKey = "user"
	// ClaimsContextKey is the key used to store token claims in the Fiber context.
	ClaimsContextKey = "claims"
)

// Gate error messages.
const (
	MsgMissingToken = "missing token"
	MsgInvalidToken = "invalid or expired token"
	MsgUserNotFound = "user not found"
	MsgAuthRequired = "authentication required"
	MsgForbidden    = "insufficient permissions"
)

// AuthMiddleware requires a valid bearer token that resolves to a stored
// user. The user and claims are stored in the context for handlers.
func AuthMiddleware(gate auth.GatePort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return apperr.Auth(MsgMissingToken)
		}

		user, claims, err := authenticate(c, gate, token)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		c.Locals(ClaimsContextKey, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and
// otherwise lets the request through without an identity.
func OptionalAuth(gate auth.GatePort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if user, claims, err := authenticate(c, gate, token); err == nil {
				c.Locals(UserContextKey, user)
				c.Locals(ClaimsContextKey, claims)
			}
		}
		return c.Next()
	}
}

// Authorize allows the request only when the current user holds one of
// roles. An empty role set allows everyone.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(roles) == 0 {
			return c.Next()
		}

		user := CurrentUser(c)
		if user == nil {
			return apperr.Auth(MsgAuthRequired)
		}
		if !user.HasRole(roles...) {
			return apperr.Forbidden(MsgForbidden)
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by the gate, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(UserContextKey).(*domain.User)
	return user
}

// CurrentClaims returns the token claims stored by the gate, or nil.
func CurrentClaims(c *fiber.Ctx) *domain.Claims {
	claims, _ := c.Locals(ClaimsContextKey).(*domain.Claims)
	return claims
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	token, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func authenticate(c *fiber.Ctx, gate auth.GatePort, token string) (*domain.User, *domain.Claims, error) {
	claims, err := gate.ValidateToken(c.UserContext(), token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindToken {
			return nil, nil, apperr.Auth(MsgInvalidToken)
		}
		return nil, nil, err
	}

	user, err := gate.ResolveUser(c.UserContext(), claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, nil, apperr.Auth(MsgUserNotFound)
		}
		return nil, nil, err
	}
	return user, claims, nil
}

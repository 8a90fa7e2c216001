package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// mockGate implements auth.GatePort for testing
type mockGate struct {
	validateTokenFunc func(ctx context.Context, token string) (*domain.Claims, error)
	resolveUserFunc   func(ctx context.Context, userID string) (*domain.User, error)
}

func (m *mockGate) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGate) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.resolveUserFunc != nil {
		return m.resolveUserFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func validGate(role string) *mockGate {
	return &mockGate{
		validateTokenFunc: func(_ context.Context, token string) (*domain.Claims, error) {
			if token != "valid-token" {
				return nil, apperr.Token(errors.New("bad signature"))
			}
			return &domain.Claims{UserID: "user-123", Email: "test@example.com"}, nil
		},
		resolveUserFunc: func(_ context.Context, userID string) (*domain.User, error) {
			u := &domain.User{ID: userID, Email: "test@example.com", Role: role}
			return u, nil
		},
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(&mockLogger{}, false),
	})
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name            string
		authHeader      string
		gate            *mockGate
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "missing authorization header",
			gate:            validGate(domain.RoleMember),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MsgMissingToken,
		},
		{
			name:            "other scheme",
			authHeader:      "Basic dXNlcjpwYXNz",
			gate:            validGate(domain.RoleMember),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MsgMissingToken,
		},
		{
			name:            "bearer without token",
			authHeader:      "Bearer ",
			gate:            validGate(domain.RoleMember),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MsgMissingToken,
		},
		{
			name:            "invalid token",
			authHeader:      "Bearer invalid-token",
			gate:            validGate(domain.RoleMember),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MsgInvalidToken,
		},
		{
			name:       "token check unavailable",
			authHeader: "Bearer valid-token",
			gate: &mockGate{
				validateTokenFunc: func(context.Context, string) (*domain.Claims, error) {
					return nil, apperr.Internal("auth service unavailable", errors.New("no responders"))
				},
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgInternal,
		},
		{
			name:       "stale user",
			authHeader: "Bearer valid-token",
			gate: &mockGate{
				validateTokenFunc: validGate("").validateTokenFunc,
				resolveUserFunc: func(context.Context, string) (*domain.User, error) {
					return nil, apperr.NotFound("user not found")
				},
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: MsgUserNotFound,
		},
		{
			name:       "store failure",
			authHeader: "Bearer valid-token",
			gate: &mockGate{
				validateTokenFunc: validGate("").validateTokenFunc,
				resolveUserFunc: func(context.Context, string) (*domain.User, error) {
					return nil, apperr.Internal("failed to find user", errors.New("disk full"))
				},
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Use(AuthMiddleware(tt.gate))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"status": "authenticated"})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedMessage, body.Message)
			assert.Empty(t, body.Error, "detail is hidden outside development")
		})
	}
}

func TestAuthMiddleware_StoresUserAndClaims(t *testing.T) {
	app := newTestApp()
	app.Use(AuthMiddleware(validGate(domain.RoleMember)))
	app.Get("/test", func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		claims := CurrentClaims(c)
		if user == nil || claims == nil {
			return errors.New("identity missing")
		}
		return c.JSON(fiber.Map{"id": user.ID, "email": claims.Email})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"id":"user-123","email":"test@example.com"}`, string(body))
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		want       string
	}{
		{"no header", "", "anonymous"},
		{"invalid token", "Bearer broken", "anonymous"},
		{"valid token", "Bearer valid-token", "user-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Use(OptionalAuth(validGate(domain.RoleMember)))
			app.Get("/test", func(c *fiber.Ctx) error {
				if user := CurrentUser(c); user != nil {
					return c.SendString(user.ID)
				}
				return c.SendString("anonymous")
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		authenticated  bool
		roles          []string
		expectedStatus int
	}{
		{"admin allowed", domain.RoleAdmin, true, []string{domain.RoleAdmin}, http.StatusOK},
		{"member forbidden", domain.RoleMember, true, []string{domain.RoleAdmin}, http.StatusForbidden},
		{"empty role set", domain.RoleMember, true, nil, http.StatusOK},
		{"no identity", "", false, []string{domain.RoleAdmin}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			if tt.authenticated {
				app.Use(AuthMiddleware(validGate(tt.role)))
			}
			app.Use(Authorize(tt.roles...))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer valid-token")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestErrorHandler_DevelopmentDetail(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(&mockLogger{}, true),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection refused")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, msgInternal, body.Message)
	assert.Equal(t, "connection refused", body.Error)
}

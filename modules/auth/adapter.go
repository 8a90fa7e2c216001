package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
)

// GatePort is what the access gate needs to authenticate a request.
type GatePort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	GatePort
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error
	Logout(ctx context.Context) error
	RecordWorkout(ctx context.Context, userID string, minutes int) (*domain.Stats, error)
	ListUsers(ctx context.Context, limit, offset int) (*UserPage, error)
}

// Both the in-process service and the request-reply adapter satisfy AuthPort.
var (
	_ AuthPort = (*AuthService)(nil)
	_ AuthPort = (*AuthAdapter)(nil)
)

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// call invokes a request-reply service and unwraps its Reply.
func call[Req, T any](ctx context.Context, container mono.ServiceContainer, service string, req Req) (T, error) {
	var resp Reply[T]
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		var zero T
		return zero, apperr.Internal(fmt.Sprintf("%s request failed", service), err)
	}
	if resp.Failure != nil {
		var zero T
		return zero, resp.Failure
	}
	return resp.Data, nil
}

// Register creates a new account.
func (a *AuthAdapter) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	return call[RegisterInput, *AuthResult](ctx, a.container, ServiceRegister, in)
}

// Login verifies credentials and returns a token.
func (a *AuthAdapter) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	return call[LoginInput, *AuthResult](ctx, a.container, ServiceLogin, in)
}

// GetProfile retrieves a user's profile.
func (a *AuthAdapter) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return call[UserIDRequest, *domain.User](ctx, a.container, ServiceGetProfile, UserIDRequest{UserID: userID})
}

// UpdateProfile applies a profile patch.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	return call[UpdateProfileRequest, *domain.User](ctx, a.container, ServiceUpdateProfile, UpdateProfileRequest{UserID: userID, Patch: patch})
}

// ChangePassword changes a user's password.
func (a *AuthAdapter) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	_, err := call[ChangePasswordRequest, struct{}](ctx, a.container, ServiceChangePassword, ChangePasswordRequest{UserID: userID, Input: in})
	return err
}

// Logout is stateless and needs no round trip.
func (a *AuthAdapter) Logout(_ context.Context) error {
	return nil
}

// RecordWorkout logs a workout and returns the updated stats.
func (a *AuthAdapter) RecordWorkout(ctx context.Context, userID string, minutes int) (*domain.Stats, error) {
	return call[RecordWorkoutRequest, *domain.Stats](ctx, a.container, ServiceRecordWorkout, RecordWorkoutRequest{UserID: userID, Minutes: minutes})
}

// ListUsers returns a page of users.
func (a *AuthAdapter) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	return call[ListUsersRequest, *UserPage](ctx, a.container, ServiceListUsers, ListUsersRequest{Limit: limit, Offset: offset})
}

// ValidateToken validates a session token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	return call[ValidateTokenRequest, *domain.Claims](ctx, a.container, ServiceValidateToken, ValidateTokenRequest{Token: token})
}

// ResolveUser loads the user a token refers to.
func (a *AuthAdapter) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	return call[UserIDRequest, *domain.User](ctx, a.container, ServiceResolveUser, UserIDRequest{UserID: userID})
}

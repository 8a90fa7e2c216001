package auth

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
)

// RegisterInput represents a user registration request.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Normalize trims the name and lowercases the email.
func (in RegisterInput) Normalize() RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return in
}

// Validate checks field formats and that both passwords match.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(2, 50)),
		validation.Field(&in.Email, validation.Required, validation.Length(0, 255), is.EmailFormat),
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.ConfirmPassword,
			validation.Required,
			validation.By(matches(in.Password, "passwords do not match")),
		),
	)
}

// LoginInput represents a user login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required),
	)
}

// ChangePasswordInput represents a password change request.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// Validate checks the new password and its confirmation.
func (in ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CurrentPassword, validation.Required),
		validation.Field(&in.NewPassword, passwordRules...),
		validation.Field(&in.ConfirmNewPassword,
			validation.Required,
			validation.By(matches(in.NewPassword, "passwords do not match")),
		),
	)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// UserPage is a page of users for the admin listing.
type UserPage struct {
	Users  []domain.User `json:"users"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Paging bounds for ListUsers.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var passwordRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(MinPasswordLength, MaxPasswordBytes),
	validation.By(maxBytes(MaxPasswordBytes)),
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func matches(want, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); s != want {
			return validation.NewError("validation_mismatch", message)
		}
		return nil
	}
}

func maxBytes(n int) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); len(s) > n {
			return validation.NewError("validation_too_long", fmt.Sprintf("must be at most %d bytes", n))
		}
		return nil
	}
}

// Request-reply payloads exchanged with the auth module's services.

// Reply wraps a service result. Failure is set instead of returning an
// error so the error kind survives the request-reply hop.
type Reply[T any] struct {
	Data    T             `json:"data"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// UserIDRequest addresses a single user.
type UserIDRequest struct {
	UserID string `json:"user_id"`
}

// UpdateProfileRequest carries a profile patch for a user.
type UpdateProfileRequest struct {
	UserID string              `json:"user_id"`
	Patch  domain.ProfilePatch `json:"patch"`
}

// ChangePasswordRequest carries a password change for a user.
type ChangePasswordRequest struct {
	UserID string              `json:"user_id"`
	Input  ChangePasswordInput `json:"input"`
}

// RecordWorkoutRequest logs a completed workout.
type RecordWorkoutRequest struct {
	UserID  string `json:"user_id"`
	Minutes int    `json:"minutes"`
}

// Validate checks the workout duration.
func (r RecordWorkoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Minutes, validation.Required, validation.Min(1), validation.Max(24*60)),
	)
}

// ListUsersRequest asks for a page of users.
type ListUsersRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/loveroseeeeeeeeee/projetogym5/events"
)

// Messages returned to clients. Login uses one message for unknown email
// and wrong password so responses do not reveal which accounts exist.
const (
	MsgInvalidCredentials = "invalid email or password"
	MsgEmailTaken         = "email already registered"
	MsgWrongPassword      = "current password is incorrect"
	MsgUserNotFound       = "user not found"
)

// AuthService handles authentication business logic.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	cache  UserCache
	bus    mono.EventBus
	logger types.Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService. cache and bus may be nil.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager, cache UserCache, bus mono.EventBus, logger types.Logger) *AuthService {
	if cache == nil {
		cache = noopCache{}
	}
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		cache:  cache,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a new member account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check email existence", err)
	}
	if exists {
		return nil, emailTaken()
	}

	user := domain.New(uuid.New().String(), in.Name, in.Email, s.now())
	if err := user.SetPassword(s.hasher, in.Password); err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, emailTaken()
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	token, err := s.jwt.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	s.publish("UserRegistered", user.ID, func() error {
		return events.UserRegisteredV1.Publish(s.bus, events.UserRegisteredEvent{
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.Name,
			RegisteredAt: user.CreatedAt,
		}, nil)
	})

	s.logger.Info("User registered", "userID", user.ID)
	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.VerifyNothing(in.Password)
			return nil, apperr.Auth(MsgInvalidCredentials)
		}
		return nil, apperr.Internal("failed to find user", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, apperr.Auth(MsgInvalidCredentials)
	}

	token, err := s.jwt.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

// GetProfile returns the sanitized user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfile validates and merges patch into the stored user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(user, s.now())
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.publish("ProfileUpdated", user.ID, func() error {
		return events.ProfileUpdatedV1.Publish(s.bus, events.ProfileUpdatedEvent{
			UserID:    user.ID,
			UpdatedAt: user.UpdatedAt,
		}, nil)
	})

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// ChangePassword re-hashes the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return apperr.FromValidation(err)
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return apperr.Auth(MsgWrongPassword)
	}

	if err := user.SetPassword(s.hasher, in.NewPassword); err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	user.UpdatedAt = s.now()
	if err := s.save(ctx, user); err != nil {
		return err
	}

	s.publish("PasswordChanged", user.ID, func() error {
		return events.PasswordChangedV1.Publish(s.bus, events.PasswordChangedEvent{
			UserID:    user.ID,
			ChangedAt: user.UpdatedAt,
		}, nil)
	})

	s.logger.Info("Password changed", "userID", user.ID)
	return nil
}

// Logout always succeeds. Tokens are not tracked server side.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// RecordWorkout adds a completed workout to the user's stats.
func (s *AuthService) RecordWorkout(ctx context.Context, userID string, minutes int) (*domain.Stats, error) {
	req := RecordWorkoutRequest{UserID: userID, Minutes: minutes}
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.RecordWorkout(minutes, s.now())
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.publish("WorkoutRecorded", user.ID, func() error {
		return events.WorkoutRecordedV1.Publish(s.bus, events.WorkoutRecordedEvent{
			UserID:     user.ID,
			Minutes:    minutes,
			Streak:     user.Stats.Streak,
			RecordedAt: *user.Stats.LastWorkout,
		}, nil)
	})

	stats := user.Stats
	return &stats, nil
}

// ListUsers returns a page of sanitized users, newest first.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}

	page := &UserPage{
		Users:  make([]domain.User, 0, len(users)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, u := range users {
		page.Users = append(page.Users, u.Sanitized())
	}
	return page, nil
}

// ValidateToken verifies a session token and returns its claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		return nil, apperr.Token(err)
	}
	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// ResolveUser loads the user a token refers to, reading through the cache.
// A cached user is only trusted after the store confirms the row still
// exists, and the stored role always wins over the cached one.
func (s *AuthService) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		role, err := s.repo.FindRole(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				s.cache.Delete(ctx, userID)
				return nil, apperr.NotFound(MsgUserNotFound)
			}
			return nil, apperr.Internal("failed to find user", err)
		}
		if cached.Role != role {
			cached.Role = role
			s.cache.Delete(ctx, userID)
		}
		return cached, nil
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, user)

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// CacheStats reports user cache counters.
func (s *AuthService) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *AuthService) find(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal("failed to find user", err)
	}
	return user, nil
}

func (s *AuthService) save(ctx context.Context, user *domain.User) error {
	defer s.cache.Delete(ctx, user.ID)
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.NotFound(MsgUserNotFound)
		}
		return apperr.Internal("failed to update user", err)
	}
	return nil
}

// publish is best effort: failures are logged and never fail the operation.
func (s *AuthService) publish(event, userID string, fn func() error) {
	if s.bus == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "userID", userID, "error", err)
	}
}

func emailTaken() error {
	return apperr.Validation(MsgEmailTaken, map[string]string{"email": MsgEmailTaken})
}

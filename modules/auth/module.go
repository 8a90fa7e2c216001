package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/loveroseeeeeeeeee/projetogym5/config"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/loveroseeeeeeeeee/projetogym5/events"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Request-reply service names exposed by the auth module.
const (
	ServiceRegister       = "register"
	ServiceLogin          = "login"
	ServiceGetProfile     = "get-profile"
	ServiceUpdateProfile  = "update-profile"
	ServiceChangePassword = "change-password"
	ServiceRecordWorkout  = "record-workout"
	ServiceListUsers      = "list-users"
	ServiceValidateToken  = "validate-token"
	ServiceResolveUser    = "resolve-user"
)

const userCachePrefix = "nexon:user:"

// AuthModule provides authentication services.
type AuthModule struct {
	cfg      config.Config
	db       *gorm.DB
	redis    *redis.Client
	service  *AuthService
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*AuthModule)(nil)
	_ mono.ServiceProviderModule = (*AuthModule)(nil)
	_ mono.HealthCheckableModule = (*AuthModule)(nil)
	_ mono.EventBusAwareModule   = (*AuthModule)(nil)
	_ mono.EventEmitterModule    = (*AuthModule)(nil)
)

// NewModule creates a new AuthModule.
func NewModule(cfg config.Config, logger types.Logger) *AuthModule {
	return &AuthModule{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// SetEventBus receives the EventBus from the framework.
func (m *AuthModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *AuthModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserRegisteredV1.ToBase(),
		events.ProfileUpdatedV1.ToBase(),
		events.PasswordChangedV1.ToBase(),
		events.WorkoutRecordedV1.ToBase(),
	}
}

// Start opens the credential store and the optional user cache.
func (m *AuthModule) Start(ctx context.Context) error {
	db, err := OpenDatabase(m.cfg.Database)
	if err != nil {
		return err
	}
	m.db = db

	var cache UserCache
	if addr := m.cfg.Cache.RedisAddr; addr != "" {
		client, err := ConnectRedis(ctx, addr)
		if err != nil {
			m.logger.Warn("User cache disabled", "error", err)
		} else {
			m.redis = client
			cache = NewRedisUserCache(client, userCachePrefix, m.cfg.Cache.TTL)
			m.logger.Info("User cache enabled", "addr", addr, "ttl", m.cfg.Cache.TTL)
		}
	}

	m.service = NewAuthService(
		NewUserRepository(db),
		NewPasswordHasher(m.cfg.Auth.BcryptCost),
		NewJWTManager(JWTConfigFrom(m.cfg.Auth)),
		cache,
		m.eventBus,
		m.logger,
	)

	m.logger.Info("Auth module started", "driver", m.cfg.Database.Driver)
	return nil
}

// Stop closes the database and cache connections.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			m.logger.Warn("Failed to close Redis client", "error", err)
		}
	}
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				m.logger.Warn("Failed to close database", "error", err)
			}
		}
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := m.service.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.cfg.Database.Driver,
			"cache":    m.service.CacheStats(),
		},
	}
}

// Service returns the auth service instance.
func (m *AuthModule) Service() *AuthService {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func(mono.ServiceContainer, string) error
	}{
		{ServiceRegister, typed(m.handleRegister)},
		{ServiceLogin, typed(m.handleLogin)},
		{ServiceGetProfile, typed(m.handleGetProfile)},
		{ServiceUpdateProfile, typed(m.handleUpdateProfile)},
		{ServiceChangePassword, typed(m.handleChangePassword)},
		{ServiceRecordWorkout, typed(m.handleRecordWorkout)},
		{ServiceListUsers, typed(m.handleListUsers)},
		{ServiceValidateToken, typed(m.handleValidateToken)},
		{ServiceResolveUser, typed(m.handleResolveUser)},
	}

	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		if err := r.register(container, r.name); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
		names = append(names, r.name)
	}

	m.logger.Info("Registered auth services", "services", names)
	return nil
}

// typed binds a handler to helper.RegisterTypedRequestReplyService with JSON codecs.
func typed[Req, Resp any](handler func(context.Context, Req, *mono.Msg) (Resp, error)) func(mono.ServiceContainer, string) error {
	return func(container mono.ServiceContainer, name string) error {
		return helper.RegisterTypedRequestReplyService(container, name, json.Unmarshal, json.Marshal, handler)
	}
}

// reply converts a service result into a Reply. Service errors travel in
// Failure so the caller sees the same error kind.
func reply[T any](data T, err error) (Reply[T], error) {
	if err != nil {
		return Reply[T]{Failure: apperr.As(err)}, nil
	}
	return Reply[T]{Data: data}, nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterInput, _ *mono.Msg) (Reply[*AuthResult], error) {
	return reply(m.service.Register(ctx, req))
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginInput, _ *mono.Msg) (Reply[*AuthResult], error) {
	return reply(m.service.Login(ctx, req))
}

func (m *AuthModule) handleGetProfile(ctx context.Context, req UserIDRequest, _ *mono.Msg) (Reply[*domain.User], error) {
	return reply(m.service.GetProfile(ctx, req.UserID))
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (Reply[*domain.User], error) {
	return reply(m.service.UpdateProfile(ctx, req.UserID, req.Patch))
}

func (m *AuthModule) handleChangePassword(ctx context.Context, req ChangePasswordRequest, _ *mono.Msg) (Reply[struct{}], error) {
	return reply(struct{}{}, m.service.ChangePassword(ctx, req.UserID, req.Input))
}

func (m *AuthModule) handleRecordWorkout(ctx context.Context, req RecordWorkoutRequest, _ *mono.Msg) (Reply[*domain.Stats], error) {
	return reply(m.service.RecordWorkout(ctx, req.UserID, req.Minutes))
}

func (m *AuthModule) handleListUsers(ctx context.Context, req ListUsersRequest, _ *mono.Msg) (Reply[*UserPage], error) {
	return reply(m.service.ListUsers(ctx, req.Limit, req.Offset))
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (Reply[*domain.Claims], error) {
	return reply(m.service.ValidateToken(ctx, req.Token))
}

func (m *AuthModule) handleResolveUser(ctx context.Context, req UserIDRequest, _ *mono.Msg) (Reply[*domain.User], error) {
	return reply(m.service.ResolveUser(ctx, req.UserID))
}

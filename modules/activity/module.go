package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/loveroseeeeeeeeee/projetogym5/events"
)

// ServiceRecentActivity is the request-reply service listing recent entries.
const ServiceRecentActivity = "recent-activity"

// Module keeps an in-memory audit trail of account events.
type Module struct {
	log    *Log
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new activity module.
func NewModule(capacity int, logger types.Logger) *Module {
	return &Module{
		log:    NewLog(capacity),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// RegisterEventConsumers subscribes to the auth module's events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.UserRegisteredV1, m.handleUserRegistered, m); err != nil {
		return fmt.Errorf("failed to register UserRegistered consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProfileUpdatedV1, m.handleProfileUpdated, m); err != nil {
		return fmt.Errorf("failed to register ProfileUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.PasswordChangedV1, m.handlePasswordChanged, m); err != nil {
		return fmt.Errorf("failed to register PasswordChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.WorkoutRecordedV1, m.handleWorkoutRecorded, m); err != nil {
		return fmt.Errorf("failed to register WorkoutRecorded consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"UserRegistered.v1", "ProfileUpdated.v1", "PasswordChanged.v1", "WorkoutRecorded.v1"})
	return nil
}

func (m *Module) handleUserRegistered(_ context.Context, event events.UserRegisteredEvent, _ *mono.Msg) error {
	m.log.Add(Entry{
		Event:  "UserRegistered",
		UserID: event.UserID,
		Detail: event.Email,
		At:     event.RegisteredAt,
	})
	m.logger.Info("Recorded registration", "userID", event.UserID)
	return nil
}

func (m *Module) handleProfileUpdated(_ context.Context, event events.ProfileUpdatedEvent, _ *mono.Msg) error {
	m.log.Add(Entry{
		Event:  "ProfileUpdated",
		UserID: event.UserID,
		At:     event.UpdatedAt,
	})
	m.logger.Debug("Recorded profile update", "userID", event.UserID)
	return nil
}

func (m *Module) handlePasswordChanged(_ context.Context, event events.PasswordChangedEvent, _ *mono.Msg) error {
	m.log.Add(Entry{
		Event:  "PasswordChanged",
		UserID: event.UserID,
		At:     event.ChangedAt,
	})
	m.logger.Info("Recorded password change", "userID", event.UserID)
	return nil
}

func (m *Module) handleWorkoutRecorded(_ context.Context, event events.WorkoutRecordedEvent, _ *mono.Msg) error {
	m.log.Add(Entry{
		Event:  "WorkoutRecorded",
		UserID: event.UserID,
		Detail: fmt.Sprintf("%d min, streak %d", event.Minutes, event.Streak),
		At:     event.RecordedAt,
	})
	m.logger.Debug("Recorded workout", "userID", event.UserID, "streak", event.Streak)
	return nil
}

// RecentRequest asks for recent entries.
type RecentRequest struct {
	Limit  int    `json:"limit"`
	UserID string `json:"user_id,omitempty"`
}

// RecentResponse lists recent entries, newest first.
type RecentResponse struct {
	Entries []Entry        `json:"entries"`
	Counts  map[string]int `json:"counts"`
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRecentActivity,
		json.Unmarshal,
		json.Marshal,
		m.handleRecent,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRecentActivity, err)
	}

	m.logger.Info("Registered activity services", "services", []string{ServiceRecentActivity})
	return nil
}

func (m *Module) handleRecent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	return m.Recent(req), nil
}

// Recent returns the entries selected by req.
func (m *Module) Recent(req RecentRequest) RecentResponse {
	return RecentResponse{
		Entries: m.log.Recent(req.Limit, req.UserID),
		Counts:  m.log.Counts(),
	}
}

// Start initializes the activity module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped", "entries", m.log.Len())
	return nil
}

// Health reports the number of retained entries.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries": m.log.Len(),
		},
	}
}

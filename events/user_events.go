package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserRegisteredEvent is emitted when a new account is created.
type UserRegisteredEvent struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserRegisteredV1 is the typed event definition for registrations.
// Subject: events.auth.v1.user-registered
var UserRegisteredV1 = helper.EventDefinition[UserRegisteredEvent](
	"auth", "UserRegistered", "v1",
)

// ProfileUpdatedEvent is emitted after a profile patch is persisted.
type ProfileUpdatedEvent struct {
	UserID    string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdatedV1 is the typed event definition for profile updates.
// Subject: events.auth.v1.profile-updated
var ProfileUpdatedV1 = helper.EventDefinition[ProfileUpdatedEvent](
	"auth", "ProfileUpdated", "v1",
)

// PasswordChangedEvent is emitted after a password is re-hashed.
type PasswordChangedEvent struct {
	UserID    string    `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// PasswordChangedV1 is the typed event definition for password changes.
// Subject: events.auth.v1.password-changed
var PasswordChangedV1 = helper.EventDefinition[PasswordChangedEvent](
	"auth", "PasswordChanged", "v1",
)

// WorkoutRecordedEvent is emitted when a member logs a workout.
type WorkoutRecordedEvent struct {
	UserID     string    `json:"user_id"`
	Minutes    int       `json:"minutes"`
	Streak     int       `json:"streak"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WorkoutRecordedV1 is the typed event definition for workouts.
// Subject: events.auth.v1.workout-recorded
var WorkoutRecordedV1 = helper.EventDefinition[WorkoutRecordedEvent](
	"auth", "WorkoutRecorded", "v1",
)

package user

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// Roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Fitness levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Fitness goals.
const (
	GoalWeightLoss   = "weight-loss"
	GoalMuscleGain   = "muscle-gain"
	GoalConditioning = "conditioning"
	GoalHealth       = "health"
	GoalStrength     = "strength"
)

// Subscription plans and statuses.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
	PlanBlack   = "black"

	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Measurement units.
const (
	UnitKg  = "kg"
	UnitLbs = "lbs"
	UnitCm  = "cm"
	UnitFt  = "ft"
)

// Fitness measurement bounds.
const (
	MinHeightCm = 50
	MaxHeightCm = 250
	MinWeightKg = 20
	MaxWeightKg = 300
)

var (
	Levels = []any{LevelBeginner, LevelIntermediate, LevelAdvanced}
	Goals  = []any{GoalWeightLoss, GoalMuscleGain, GoalConditioning, GoalHealth, GoalStrength}
)

// ErrMissingPasswordHash is returned when persisting a user without a hash.
var ErrMissingPasswordHash = errors.New("password hash is required")

// User represents a registered member of the platform.
type User struct {
	ID           string       `gorm:"primaryKey;type:text" json:"id"`
	Name         string       `gorm:"size:50;not null" json:"name"`
	Email        string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string       `gorm:"not null;type:text" json:"-"`
	Role         string       `gorm:"size:20;not null;index" json:"role"`
	Profile      Profile      `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Fitness      Fitness      `gorm:"embedded;embeddedPrefix:fitness_" json:"fitness"`
	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
	Stats        Stats        `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	Preferences  Preferences  `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	CreatedAt    time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Profile holds free-form public profile text.
type Profile struct {
	Avatar   string `gorm:"type:text" json:"avatar"`
	Bio      string `gorm:"size:500" json:"bio"`
	Location string `gorm:"type:text" json:"location"`
	Website  string `gorm:"type:text" json:"website"`
}

// Fitness holds training attributes. Height is in cm and weight in kg.
type Fitness struct {
	Level     string     `gorm:"size:20;index" json:"level"`
	Goals     []string   `gorm:"serializer:json" json:"goals"`
	Height    *float64   `json:"height,omitempty"`
	Weight    *float64   `json:"weight,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
}

// Subscription describes the member's plan.
type Subscription struct {
	Plan      string     `gorm:"size:20" json:"plan"`
	Status    string     `gorm:"size:20;index" json:"status"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	AutoRenew bool       `json:"autoRenew"`
}

// Stats aggregates workout activity.
type Stats struct {
	WorkoutsCompleted int        `json:"workoutsCompleted"`
	TotalMinutes      int        `json:"totalMinutes"`
	Streak            int        `json:"streak"`
	LastWorkout       *time.Time `json:"lastWorkout,omitempty"`
}

// Preferences holds notification, privacy and unit settings.
type Preferences struct {
	Notifications NotificationPreferences `gorm:"embedded;embeddedPrefix:notify_" json:"notifications"`
	Privacy       PrivacyPreferences      `gorm:"embedded;embeddedPrefix:privacy_" json:"privacy"`
	Units         UnitPreferences         `gorm:"embedded;embeddedPrefix:units_" json:"units"`
}

type NotificationPreferences struct {
	Email            bool `json:"email"`
	Push             bool `json:"push"`
	WorkoutReminders bool `json:"workoutReminders"`
}

type PrivacyPreferences struct {
	ProfileVisible bool `json:"profileVisible"`
	ShowStats      bool `json:"showStats"`
}

type UnitPreferences struct {
	Weight string `gorm:"size:5" json:"weight"`
	Height string `gorm:"size:5" json:"height"`
}

// Hasher turns a plaintext password into a stored hash.
type Hasher interface {
	Hash(password string) (string, error)
}

// New returns a member with default fitness, subscription and preference values.
func New(id, name, email string, now time.Time) *User {
	return &User{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  RoleMember,
		Fitness: Fitness{
			Level: LevelBeginner,
			Goals: []string{},
		},
		Subscription: Subscription{
			Plan:      PlanBasic,
			Status:    SubscriptionInactive,
			AutoRenew: true,
		},
		Preferences: Preferences{
			Notifications: NotificationPreferences{Email: true, Push: true, WorkoutReminders: true},
			Privacy:       PrivacyPreferences{ProfileVisible: true, ShowStats: true},
			Units:         UnitPreferences{Weight: UnitKg, Height: UnitCm},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// BeforeCreate rejects rows that would be stored without a password hash.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.PasswordHash == "" {
		return ErrMissingPasswordHash
	}
	return nil
}

// BeforeUpdate rejects full-row writes that would clear the password hash.
// Column updates through Model(&User{}).Update never touch password_hash
// and pass through.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	target := u
	if tx != nil && tx.Statement != nil {
		dest, ok := tx.Statement.Dest.(*User)
		if !ok {
			return nil
		}
		target = dest
	}
	if target.PasswordHash == "" {
		return ErrMissingPasswordHash
	}
	return nil
}

// SetPassword hashes password and stores the result. The plaintext is never kept.
func (u *User) SetPassword(h Hasher, password string) error {
	hash, err := h.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// Sanitized returns a copy of the user without the password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.Fitness.Goals = append([]string{}, u.Fitness.Goals...)
	return u
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Age returns the age in whole years at now, or nil without a birth date.
func (u *User) Age(now time.Time) *int {
	if u.Fitness.BirthDate == nil {
		return nil
	}
	b := u.Fitness.BirthDate.UTC()
	now = now.UTC()
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}

// BMI returns the body mass index rounded to one decimal, or nil when
// height or weight is unknown.
func (u *User) BMI() *float64 {
	if u.Fitness.Height == nil || u.Fitness.Weight == nil || *u.Fitness.Height <= 0 {
		return nil
	}
	m := *u.Fitness.Height / 100
	bmi := math.Round(*u.Fitness.Weight/(m*m)*10) / 10
	return &bmi
}

// RecordWorkout adds a completed workout and updates the daily streak.
// A workout on the calendar day after the last one extends the streak, a
// workout on the same day keeps it, and a longer gap restarts it at one.
func (u *User) RecordWorkout(minutes int, now time.Time) {
	today := truncateDay(now)
	switch {
	case u.Stats.LastWorkout == nil:
		u.Stats.Streak = 1
	default:
		days := int(today.Sub(truncateDay(*u.Stats.LastWorkout)).Hours() / 24)
		switch {
		case days == 1:
			u.Stats.Streak++
		case days > 1:
			u.Stats.Streak = 1
		case u.Stats.Streak == 0:
			u.Stats.Streak = 1
		}
	}

	u.Stats.WorkoutsCompleted++
	u.Stats.TotalMinutes += minutes
	last := now
	u.Stats.LastWorkout = &last
	u.UpdatedAt = now
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON adds the derived age and bmi fields.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		Age *int     `json:"age"`
		BMI *float64 `json:"bmi"`
	}{
		plain: plain(u),
		Age:   u.Age(time.Now()),
		BMI:   u.BMI(),
	})
}

// Claims represents the identity carried by a session token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

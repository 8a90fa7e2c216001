package user

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type upperHasher struct{}

func (upperHasher) Hash(password string) (string, error) {
	return "hashed:" + strings.ToUpper(password), nil
}

func TestNew_Defaults(t *testing.T) {
	now := time.Now()
	u := New("id-1", "Ana", "ana@x.com", now)

	assert.Equal(t, RoleMember, u.Role)
	assert.Equal(t, LevelBeginner, u.Fitness.Level)
	assert.Equal(t, PlanBasic, u.Subscription.Plan)
	assert.Equal(t, SubscriptionInactive, u.Subscription.Status)
	assert.True(t, u.Subscription.AutoRenew)
	assert.True(t, u.Preferences.Notifications.Email)
	assert.True(t, u.Preferences.Privacy.ProfileVisible)
	assert.Equal(t, UnitKg, u.Preferences.Units.Weight)
	assert.Equal(t, UnitCm, u.Preferences.Units.Height)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUser_SetPassword(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	require.NoError(t, u.SetPassword(upperHasher{}, "secret1"))

	assert.Equal(t, "hashed:SECRET1", u.PasswordHash)
	assert.NoError(t, u.BeforeCreate(nil))
	assert.NoError(t, u.BeforeUpdate(nil))
}

func TestUser_HooksRejectMissingHash(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	assert.ErrorIs(t, u.BeforeCreate(nil), ErrMissingPasswordHash)
	assert.ErrorIs(t, u.BeforeUpdate(nil), ErrMissingPasswordHash)
}

func TestUser_BeforeUpdate_ColumnUpdate(t *testing.T) {
	u := &User{}
	tx := &gorm.DB{Statement: &gorm.Statement{Dest: map[string]any{"role": RoleAdmin}}}
	assert.NoError(t, u.BeforeUpdate(tx))

	tx.Statement.Dest = u
	assert.ErrorIs(t, u.BeforeUpdate(tx), ErrMissingPasswordHash)
}

func TestUser_JSONNeverContainsHash(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	u.PasswordHash = "$2a$12$abcdefghijklmnopqrstuv"

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), u.PasswordHash)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"email":"ana@x.com"`)
	assert.Contains(t, string(data), `"age":null`)
	assert.Contains(t, string(data), `"bmi":null`)
}

func TestUser_Sanitized(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	u.PasswordHash = "hash"
	u.Fitness.Goals = []string{GoalHealth}

	s := u.Sanitized()
	s.Fitness.Goals[0] = GoalStrength

	assert.Empty(t, s.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, GoalHealth, u.Fitness.Goals[0])
}

func TestUser_HasRole(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())

	assert.True(t, u.HasRole(RoleMember))
	assert.True(t, u.HasRole(RoleAdmin, RoleMember))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.HasRole())
}

func TestUser_Age(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	assert.Nil(t, u.Age(time.Now()))

	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	u.Fitness.BirthDate = &birth

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2020, time.June, 14, 12, 0, 0, 0, time.UTC), 29},
		{"on birthday", time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), 30},
		{"month after", time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := u.Age(tt.now)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestUser_BMI(t *testing.T) {
	u := New("id-1", "Ana", "ana@x.com", time.Now())
	assert.Nil(t, u.BMI())

	h, w := 180.0, 81.0
	u.Fitness.Height = &h
	u.Fitness.Weight = &w

	got := u.BMI()
	require.NotNil(t, got)
	assert.Equal(t, 25.0, *got)
}

func TestUser_RecordWorkout(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
	}

	u := New("id-1", "Ana", "ana@x.com", day(1, 8))

	u.RecordWorkout(30, day(1, 9))
	assert.Equal(t, 1, u.Stats.Streak, "first workout starts the streak")

	u.RecordWorkout(20, day(1, 20))
	assert.Equal(t, 1, u.Stats.Streak, "same day keeps the streak")

	u.RecordWorkout(45, day(2, 7))
	assert.Equal(t, 2, u.Stats.Streak, "next day extends the streak")

	u.RecordWorkout(10, day(5, 7))
	assert.Equal(t, 1, u.Stats.Streak, "a gap resets the streak")

	assert.Equal(t, 4, u.Stats.WorkoutsCompleted)
	assert.Equal(t, 105, u.Stats.TotalMinutes)
	require.NotNil(t, u.Stats.LastWorkout)
	assert.Equal(t, day(5, 7), *u.Stats.LastWorkout)
}

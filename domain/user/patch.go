package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DateLayout is the accepted layout for date-only inputs.
const DateLayout = "2006-01-02"

// ProfilePatch is the allow-listed set of fields a member may change on
// their own profile. Nil fields are left untouched. Any other key in the
// request body is ignored, so role, email, stats and subscription cannot be
// changed through it.
type ProfilePatch struct {
	Name        *string           `json:"name,omitempty"`
	Profile     *ProfileFields    `json:"profile,omitempty"`
	Fitness     *FitnessFields    `json:"fitness,omitempty"`
	Preferences *PreferencesPatch `json:"preferences,omitempty"`
}

type ProfileFields struct {
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
	Website  *string `json:"website,omitempty"`
}

type FitnessFields struct {
	Level     *string   `json:"level,omitempty"`
	Goals     *[]string `json:"goals,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	BirthDate *string   `json:"birthDate,omitempty"`
}

type PreferencesPatch struct {
	Notifications *NotificationsPatch `json:"notifications,omitempty"`
	Privacy       *PrivacyPatch       `json:"privacy,omitempty"`
	Units         *UnitsPatch         `json:"units,omitempty"`
}

type NotificationsPatch struct {
	Email            *bool `json:"email,omitempty"`
	Push             *bool `json:"push,omitempty"`
	WorkoutReminders *bool `json:"workoutReminders,omitempty"`
}

type PrivacyPatch struct {
	ProfileVisible *bool `json:"profileVisible,omitempty"`
	ShowStats      *bool `json:"showStats,omitempty"`
}

type UnitsPatch struct {
	Weight *string `json:"weight,omitempty"`
	Height *string `json:"height,omitempty"`
}

// UnmarshalJSON accepts both nested objects ({"profile":{"bio":".."}})
// and dotted keys ({"profile.bio":".."}). Dotted keys win over the same
// field given in a nested object.
func (p *ProfilePatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	dotted := map[string]map[string]json.RawMessage{}
	for key, value := range raw {
		parent, child, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		delete(raw, key)
		if dotted[parent] == nil {
			dotted[parent] = map[string]json.RawMessage{}
		}
		dotted[parent][child] = value
	}

	for parent, children := range dotted {
		group := map[string]json.RawMessage{}
		if existing, ok := raw[parent]; ok {
			// a non-object value for the group is dropped in favour of the dotted keys
			_ = json.Unmarshal(existing, &group)
		}
		for k, v := range children {
			group[k] = v
		}
		merged, err := json.Marshal(group)
		if err != nil {
			return err
		}
		raw[parent] = merged
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	type plain ProfilePatch
	return json.Unmarshal(normalized, (*plain)(p))
}

// Validate checks every field that is present in the patch.
func (p ProfilePatch) Validate() error {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(2, 50)),
		validation.Field(&p.Profile),
		validation.Field(&p.Fitness),
		validation.Field(&p.Preferences),
	)
}

func (f ProfileFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Bio, validation.Length(0, 500)),
		validation.Field(&f.Location, validation.Length(0, 100)),
		validation.Field(&f.Website, validation.Length(0, 255), is.URL),
	)
}

func (f FitnessFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Level, validation.NilOrNotEmpty, validation.In(Levels...)),
		validation.Field(&f.Goals, validation.By(eachIn(Goals...))),
		validation.Field(&f.Height, validation.By(between(MinHeightCm, MaxHeightCm))),
		validation.Field(&f.Weight, validation.By(between(MinWeightKg, MaxWeightKg))),
		validation.Field(&f.BirthDate, validation.By(pastDate)),
	)
}

func (p PreferencesPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Units),
	)
}

func (u UnitsPatch) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Weight, validation.NilOrNotEmpty, validation.In(UnitKg, UnitLbs)),
		validation.Field(&u.Height, validation.NilOrNotEmpty, validation.In(UnitCm, UnitFt)),
	)
}

// Apply merges the patch into u field by field. It assumes Validate passed.
func (p ProfilePatch) Apply(u *User, now time.Time) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if pf := p.Profile; pf != nil {
		setString(&u.Profile.Bio, pf.Bio)
		setString(&u.Profile.Location, pf.Location)
		setString(&u.Profile.Website, pf.Website)
	}
	if ff := p.Fitness; ff != nil {
		setString(&u.Fitness.Level, ff.Level)
		if ff.Goals != nil {
			u.Fitness.Goals = dedupe(*ff.Goals)
		}
		if ff.Height != nil {
			h := *ff.Height
			u.Fitness.Height = &h
		}
		if ff.Weight != nil {
			w := *ff.Weight
			u.Fitness.Weight = &w
		}
		if ff.BirthDate != nil {
			if d, err := ParseDate(*ff.BirthDate); err == nil {
				u.Fitness.BirthDate = &d
			}
		}
	}
	if pp := p.Preferences; pp != nil {
		if n := pp.Notifications; n != nil {
			setBool(&u.Preferences.Notifications.Email, n.Email)
			setBool(&u.Preferences.Notifications.Push, n.Push)
			setBool(&u.Preferences.Notifications.WorkoutReminders, n.WorkoutReminders)
		}
		if pr := pp.Privacy; pr != nil {
			setBool(&u.Preferences.Privacy.ProfileVisible, pr.ProfileVisible)
			setBool(&u.Preferences.Privacy.ShowStats, pr.ShowStats)
		}
		if un := pp.Units; un != nil {
			setString(&u.Preferences.Units.Weight, un.Weight)
			setString(&u.Preferences.Units.Height, un.Height)
		}
	}
	u.UpdatedAt = now
}

// ParseDate accepts a date-only value or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func between(min, max float64) validation.RuleFunc {
	return func(value any) error {
		v, ok := value.(*float64)
		if !ok || v == nil {
			return nil
		}
		if *v < min || *v > max {
			return fmt.Errorf("must be between %g and %g", min, max)
		}
		return nil
	}
}

func eachIn(allowed ...any) validation.RuleFunc {
	return func(value any) error {
		v, ok := value.(*[]string)
		if !ok || v == nil {
			return nil
		}
		for _, item := range *v {
			if err := validation.Validate(item, validation.Required, validation.In(allowed...)); err != nil {
				return fmt.Errorf("%q: %w", item, err)
			}
		}
		return nil
	}
}

func pastDate(value any) error {
	v, ok := value.(*string)
	if !ok || v == nil {
		return nil
	}
	d, err := ParseDate(*v)
	if err != nil {
		return errors.New("must be a valid date (YYYY-MM-DD)")
	}
	if d.After(time.Now()) {
		return errors.New("must not be in the future")
	}
	return nil
}

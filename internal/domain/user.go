package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
)

// User represents a user in the system (either a Coach or an Athlete).
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`    // Should be unique
	PasswordHash string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	// Empty means no preference was stored.
	WeightUnitPreference UnitPreference   `bson:"weightUnitPreference,omitempty" json:"weightUnitPreference,omitempty"`
	CustomExercises      []CustomExercise `bson:"customExercises,omitempty" json:"customExercises,omitempty"`

	// --- Coach-specific ---
	AthleteIDs []string `bson:"athleteIds,omitempty" json:"athleteIds,omitempty"`

	// --- Athlete-specific ---
	CoachID *string `bson:"coachId,omitempty" json:"coachId,omitempty"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}

// UnitPreference returns nil when the user never stored a preference.
func (u *User) UnitPreference() *UnitPreference {
	if u.WeightUnitPreference == "" {
		return nil
	}
	p := u.WeightUnitPreference
	return &p
}

// HasCustomExercise matches names case-insensitively.
func (u *User) HasCustomExercise(name string) bool {
	for _, c := range u.CustomExercises {
		if normalizeExerciseName(c.Name) == normalizeExerciseName(name) {
			return true
		}
	}
	return false
}

// Coaches reports whether athleteID is on this coach's roster.
func (u *User) Coaches(athleteID string) bool {
	if !u.IsCoach() {
		return false
	}
	for _, id := range u.AthleteIDs {
		if id == athleteID {
			return true
		}
	}
	return false
}

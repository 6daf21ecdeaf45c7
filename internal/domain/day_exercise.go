package domain

import (
	"strings"
	"time"
)

// DayExercise is a planned movement attached to a day template. It carries no live
// set tracking; workouts created from the day copy it into an Exercise.
type DayExercise struct {
	ID               string           `bson:"_id" json:"id"`
	DayID            string           `bson:"dayId" json:"dayId"`
	ExerciseType     string           `bson:"exerciseType" json:"exerciseType"`
	ExerciseCategory ExerciseCategory `bson:"exerciseCategory" json:"exerciseCategory"`
	IsPredefined     bool             `bson:"isPredefined" json:"isPredefined"`
	Sets             int              `bson:"sets" json:"sets"`
	Reps             int              `bson:"reps" json:"reps"`
	Weight           float64          `bson:"weight" json:"weight"`
	RPE              *float64         `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Notes            string           `bson:"notes,omitempty" json:"notes,omitempty"`
	Order            *int             `bson:"order,omitempty" json:"order,omitempty"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updatedAt"`
}

type DayExerciseParams struct {
	ID           string
	DayID        string
	ExerciseType ExerciseType
	Sets         int
	Reps         int
	Weight       float64
	RPE          *float64
	Notes        string
	Order        *int
}

// NewDayExercise validates a template exercise. Unlike workout exercises the
// planned weight must be strictly positive.
func NewDayExercise(p DayExerciseParams) (*DayExercise, error) {
	if p.ID == "" {
		return nil, newValidationError("exerciseId", "is required")
	}
	if p.DayID == "" {
		return nil, newValidationError("dayId", "is required")
	}
	if strings.TrimSpace(p.ExerciseType.Name) == "" {
		return nil, newValidationError("exerciseType", "is required")
	}
	if p.Sets <= 0 {
		return nil, newValidationError("sets", "must be greater than 0")
	}
	if p.Reps <= 0 {
		return nil, newValidationError("reps", "must be greater than 0")
	}
	if p.Weight <= 0 {
		return nil, newValidationError("weight", "must be greater than 0")
	}
	if err := validateRPE(p.RPE); err != nil {
		return nil, err
	}
	if p.Order != nil && *p.Order < 0 {
		return nil, newValidationError("order", "cannot be negative")
	}
	return &DayExercise{
		ID:               p.ID,
		DayID:            p.DayID,
		ExerciseType:     p.ExerciseType.Name,
		ExerciseCategory: p.ExerciseType.Category,
		IsPredefined:     p.ExerciseType.IsPredefined,
		Sets:             p.Sets,
		Reps:             p.Reps,
		Weight:           p.Weight,
		RPE:              p.RPE,
		Notes:            p.Notes,
		Order:            p.Order,
	}, nil
}

func (d *DayExercise) Type() ExerciseType {
	return ExerciseType{Name: d.ExerciseType, Category: d.ExerciseCategory, IsPredefined: d.IsPredefined}
}

// DayExerciseUpdate holds optional template changes.
type DayExerciseUpdate struct {
	ExerciseType *string
	Sets         *int
	Reps         *int
	Weight       *float64
	RPE          *float64
	Notes        *string
	Order        *int
}

// ApplyUpdate validates all present fields, then writes them.
func (d *DayExercise) ApplyUpdate(u DayExerciseUpdate) error {
	if u.ExerciseType != nil && strings.TrimSpace(*u.ExerciseType) == "" {
		return newValidationError("exerciseType", "cannot be empty")
	}
	if u.Sets != nil && *u.Sets <= 0 {
		return newValidationError("sets", "must be greater than 0")
	}
	if u.Reps != nil && *u.Reps <= 0 {
		return newValidationError("reps", "must be greater than 0")
	}
	if u.Weight != nil && *u.Weight <= 0 {
		return newValidationError("weight", "must be greater than 0")
	}
	if err := validateRPE(u.RPE); err != nil {
		return err
	}
	if u.Order != nil && *u.Order < 0 {
		return newValidationError("order", "cannot be negative")
	}

	if u.ExerciseType != nil {
		t := NewExerciseType(*u.ExerciseType)
		d.ExerciseType, d.ExerciseCategory, d.IsPredefined = t.Name, t.Category, t.IsPredefined
	}
	if u.Sets != nil {
		d.Sets = *u.Sets
	}
	if u.Reps != nil {
		d.Reps = *u.Reps
	}
	if u.Weight != nil {
		d.Weight = *u.Weight
	}
	if u.RPE != nil {
		rpe := *u.RPE
		d.RPE = &rpe
	}
	if u.Notes != nil {
		d.Notes = *u.Notes
	}
	if u.Order != nil {
		order := *u.Order
		d.Order = &order
	}
	return nil
}

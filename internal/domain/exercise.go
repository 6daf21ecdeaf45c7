// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"
)

// ExerciseStatus tracks a workout exercise through a session.
type ExerciseStatus string

const (
	ExerciseStatusPlanned    ExerciseStatus = "planned"
	ExerciseStatusInProgress ExerciseStatus = "in_progress"
	ExerciseStatusCompleted  ExerciseStatus = "completed"
	ExerciseStatusSkipped    ExerciseStatus = "skipped"
)

// ParseExerciseStatus validates an exercise status value.
func ParseExerciseStatus(s string) (ExerciseStatus, error) {
	switch st := ExerciseStatus(s); st {
	case ExerciseStatusPlanned, ExerciseStatusInProgress, ExerciseStatusCompleted, ExerciseStatusSkipped:
		return st, nil
	}
	return "", newValidationError("status", "invalid exercise status %q, must be one of planned, in_progress, completed, skipped", s)
}

// Exercise is a workout-scoped exercise with live per-set tracking.
type Exercise struct {
	ID               string           `bson:"_id" json:"id"`
	WorkoutID        string           `bson:"workoutId" json:"workoutId"`
	ExerciseType     string           `bson:"exerciseType" json:"exerciseType"`
	ExerciseCategory ExerciseCategory `bson:"exerciseCategory" json:"exerciseCategory"`
	IsPredefined     bool             `bson:"isPredefined" json:"isPredefined"`
	Sets             int              `bson:"sets" json:"sets"` // displayed count, see RecomputeSetCount
	Reps             int              `bson:"reps" json:"reps"`
	Weight           WeightData       `bson:"weight" json:"weight"`
	RPE              *float64         `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Status           ExerciseStatus   `bson:"status" json:"status"`
	Notes            string           `bson:"notes,omitempty" json:"notes,omitempty"`
	Order            *int             `bson:"order,omitempty" json:"order,omitempty"`
	SetsData         []SetRecord      `bson:"setsData" json:"setsData"`
	// PlannedSetsData is nil until the first actual set is recorded, then frozen.
	PlannedSetsData []SetRecord `bson:"plannedSetsData" json:"plannedSetsData"`
	CreatedAt       time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// NewExerciseParams carries construction input for NewExercise.
type NewExerciseParams struct {
	ID           string
	WorkoutID    string
	ExerciseType ExerciseType
	Sets         int
	Reps         int
	Weight       WeightData
	RPE          *float64
	Notes        string
	Order        *int
	Status       ExerciseStatus // defaults to planned
}

// NewExercise validates the construction invariants and returns a planned exercise.
func NewExercise(p NewExerciseParams) (*Exercise, error) {
	if p.ID == "" {
		return nil, newValidationError("exerciseId", "is required")
	}
	if p.WorkoutID == "" {
		return nil, newValidationError("workoutId", "is required")
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
	if p.Weight.Value < 0 {
		return nil, newValidationError("weight", "cannot be negative")
	}
	if _, ok := ParseExplicitUnit(string(p.Weight.Unit)); !ok {
		return nil, newValidationError("unit", "must be kg or lb, got %q", p.Weight.Unit)
	}
	if err := validateRPE(p.RPE); err != nil {
		return nil, err
	}
	if p.Order != nil && *p.Order < 0 {
		return nil, newValidationError("order", "cannot be negative")
	}
	status := p.Status
	if status == "" {
		status = ExerciseStatusPlanned
	}
	if _, err := ParseExerciseStatus(string(status)); err != nil {
		return nil, err
	}

	return &Exercise{
		ID:               p.ID,
		WorkoutID:        p.WorkoutID,
		ExerciseType:     p.ExerciseType.Name,
		ExerciseCategory: p.ExerciseType.Category,
		IsPredefined:     p.ExerciseType.IsPredefined,
		Sets:             p.Sets,
		Reps:             p.Reps,
		Weight:           p.Weight,
		RPE:              p.RPE,
		Status:           status,
		Notes:            p.Notes,
		Order:            p.Order,
		SetsData:         []SetRecord{},
	}, nil
}

// Type returns the embedded exercise type.
func (e *Exercise) Type() ExerciseType {
	return ExerciseType{Name: e.ExerciseType, Category: e.ExerciseCategory, IsPredefined: e.IsPredefined}
}

// HasPlannedSnapshot reports whether the plan snapshot was captured.
func (e *Exercise) HasPlannedSnapshot() bool {
	return e.PlannedSetsData != nil
}

// FindSet returns the record with the given set number.
func (e *Exercise) FindSet(setNumber int) (SetRecord, bool) {
	for _, r := range e.SetsData {
		if r.SetNumber == setNumber {
			return r, true
		}
	}
	return SetRecord{}, false
}

// TrackSet upserts record into SetsData. The first call captures a deep copy of
// SetsData, as it was before the write, into PlannedSetsData and reports true.
// A completed set moves a planned exercise to in_progress; no other transition
// happens here.
func (e *Exercise) TrackSet(record SetRecord) (snapshotCaptured bool, err error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	if e.PlannedSetsData == nil {
		e.PlannedSetsData = cloneSetRecords(e.SetsData)
		snapshotCaptured = true
	}

	replaced := false
	for i := range e.SetsData {
		if e.SetsData[i].SetNumber == record.SetNumber {
			e.SetsData[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		e.SetsData = append(e.SetsData, record)
	}
	sortSetRecords(e.SetsData)
	e.RecomputeSetCount()

	if record.Completed && e.Status == ExerciseStatusPlanned {
		e.Status = ExerciseStatusInProgress
	}
	return snapshotCaptured, nil
}

// DeleteSet removes a set, renumbers the survivors 1..N in their existing order and
// recomputes the status from what remains, overriding any explicit status.
// Sets follows the survivors, so deleting the last set leaves Sets at 0.
// Returns false (and changes nothing) when the set number does not exist.
func (e *Exercise) DeleteSet(setNumber int) bool {
	idx := -1
	for i, r := range e.SetsData {
		if r.SetNumber == setNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	remaining := make([]SetRecord, 0, len(e.SetsData)-1)
	remaining = append(remaining, e.SetsData[:idx]...)
	remaining = append(remaining, e.SetsData[idx+1:]...)
	sortSetRecords(remaining)
	for i := range remaining {
		remaining[i].SetNumber = i + 1
	}
	e.SetsData = remaining

	e.RecomputeSetCount()
	e.Status = statusFromSets(e.SetsData)
	return true
}

func statusFromSets(records []SetRecord) ExerciseStatus {
	if len(records) == 0 {
		return ExerciseStatusPlanned
	}
	for _, r := range records {
		if !r.Completed {
			return ExerciseStatusInProgress
		}
	}
	return ExerciseStatusCompleted
}

// ReorderSets renumbers SetsData so that the set currently numbered newOrder[i]
// becomes set i+1. newOrder must be a permutation of the existing set numbers.
func (e *Exercise) ReorderSets(newOrder []int) error {
	if len(newOrder) != len(e.SetsData) {
		return newValidationError("newOrder", "must contain all existing set numbers")
	}
	byNumber := make(map[int]SetRecord, len(e.SetsData))
	for _, r := range e.SetsData {
		byNumber[r.SetNumber] = r
	}
	seen := make(map[int]bool, len(newOrder))
	for _, n := range newOrder {
		if _, ok := byNumber[n]; !ok || seen[n] {
			return newValidationError("newOrder", "must contain all existing set numbers")
		}
		seen[n] = true
	}
	if len(newOrder) <= 1 {
		return nil
	}

	reordered := make([]SetRecord, len(newOrder))
	for i, n := range newOrder {
		r := byNumber[n]
		r.SetNumber = i + 1
		reordered[i] = r
	}
	e.SetsData = reordered
	return nil
}

// RecomputeSetCount sets Sets = max(completed records, highest set number).
func (e *Exercise) RecomputeSetCount() {
	completed, highest := 0, 0
	for _, r := range e.SetsData {
		if r.Completed {
			completed++
		}
		if r.SetNumber > highest {
			highest = r.SetNumber
		}
	}
	if completed > highest {
		e.Sets = completed
	} else {
		e.Sets = highest
	}
}

// CompletedSetCount counts completed records.
func (e *Exercise) CompletedSetCount() int {
	n := 0
	for _, r := range e.SetsData {
		if r.Completed {
			n++
		}
	}
	return n
}

// Volume sums reps x weight over completed sets.
func (e *Exercise) Volume() float64 {
	var v float64
	for _, r := range e.SetsData {
		v += r.Volume()
	}
	return v
}

// MaxCompletedWeight returns the heaviest completed set, or false when nothing is completed.
func (e *Exercise) MaxCompletedWeight() (float64, bool) {
	var best float64
	found := false
	for _, r := range e.SetsData {
		if r.Completed && (!found || r.Weight.Value > best) {
			best = r.Weight.Value
			found = true
		}
	}
	return best, found
}

// SetStatus assigns an explicit exercise status.
func (e *Exercise) SetStatus(status string) error {
	st, err := ParseExerciseStatus(status)
	if err != nil {
		return err
	}
	e.Status = st
	return nil
}

// ExerciseUpdate lists the fields that may change after creation. Nil means "leave as is".
type ExerciseUpdate struct {
	ExerciseType *string
	Sets         *int
	Reps         *int
	Weight       *float64
	Unit         *string
	RPE          *float64
	Notes        *string
	Order        *int
	Status       *string
}

// ApplyUpdate validates every present field first and only then writes them.
func (e *Exercise) ApplyUpdate(u ExerciseUpdate) error {
	var exType ExerciseType
	if u.ExerciseType != nil {
		if strings.TrimSpace(*u.ExerciseType) == "" {
			return newValidationError("exerciseType", "cannot be empty")
		}
		exType = NewExerciseType(*u.ExerciseType)
	}
	if u.Sets != nil && *u.Sets <= 0 {
		return newValidationError("sets", "must be greater than 0")
	}
	if u.Reps != nil && *u.Reps <= 0 {
		return newValidationError("reps", "must be greater than 0")
	}
	if u.Weight != nil && *u.Weight < 0 {
		return newValidationError("weight", "cannot be negative")
	}
	var unit WeightUnit
	if u.Unit != nil {
		var ok bool
		if unit, ok = ParseExplicitUnit(*u.Unit); !ok {
			return newValidationError("unit", "must be kg or lb, got %q", *u.Unit)
		}
	}
	if err := validateRPE(u.RPE); err != nil {
		return err
	}
	if u.Order != nil && *u.Order < 0 {
		return newValidationError("order", "cannot be negative")
	}
	var status ExerciseStatus
	if u.Status != nil {
		var err error
		if status, err = ParseExerciseStatus(*u.Status); err != nil {
			return err
		}
	}

	if u.ExerciseType != nil {
		e.ExerciseType = exType.Name
		e.ExerciseCategory = exType.Category
		e.IsPredefined = exType.IsPredefined
	}
	if u.Sets != nil {
		e.Sets = *u.Sets
	}
	if u.Reps != nil {
		e.Reps = *u.Reps
	}
	if u.Weight != nil {
		e.Weight.Value = *u.Weight
	}
	if u.Unit != nil {
		e.Weight.Unit = unit
	}
	if u.RPE != nil {
		rpe := *u.RPE
		e.RPE = &rpe
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	if u.Order != nil {
		order := *u.Order
		e.Order = &order
	}
	if u.Status != nil {
		e.Status = status
	}
	return nil
}

package domain

import (
	"strings"
	"time"
)

// WorkoutKind selects which exercise representation a workout carries.
type WorkoutKind string

const (
	// WorkoutKindTracked workouts own Exercise documents with live set tracking.
	WorkoutKindTracked WorkoutKind = "tracked"
	// WorkoutKindLogged workouts embed CompletedExercise entries logged after the fact.
	WorkoutKindLogged WorkoutKind = "logged"
)

type WorkoutStatus string

const (
	WorkoutStatusNotStarted WorkoutStatus = "not_started"
	WorkoutStatusInProgress WorkoutStatus = "in_progress"
	WorkoutStatusCompleted  WorkoutStatus = "completed"
	WorkoutStatusSkipped    WorkoutStatus = "skipped"
	WorkoutStatusPartial    WorkoutStatus = "partial"
)

var allowedWorkoutStatuses = map[WorkoutKind][]WorkoutStatus{
	WorkoutKindTracked: {WorkoutStatusNotStarted, WorkoutStatusInProgress, WorkoutStatusCompleted, WorkoutStatusSkipped},
	WorkoutKindLogged:  {WorkoutStatusCompleted, WorkoutStatusPartial, WorkoutStatusSkipped},
}

// Workout is one athlete's session for a scheduled day. At most one exists per
// (athlete, day); the repository enforces that.
type Workout struct {
	ID        string      `bson:"_id" json:"id"`
	AthleteID string      `bson:"athleteId" json:"athleteId"`
	DayID     string      `bson:"dayId" json:"dayId"`
	Date      string      `bson:"date" json:"date"` // YYYY-MM-DD
	Notes     string      `bson:"notes,omitempty" json:"notes,omitempty"`
	Kind      WorkoutKind `bson:"kind" json:"kind"`

	// ExplicitStatus is nil until someone assigns a status. Once set it always wins
	// over the derived value.
	ExplicitStatus *WorkoutStatus `bson:"status,omitempty" json:"-"`

	// Exercises are stored in their own collection and loaded by the service.
	Exercises          []Exercise          `bson:"-" json:"exercises,omitempty"`
	CompletedExercises []CompletedExercise `bson:"completedExercises,omitempty" json:"completedExercises,omitempty"`

	StartTime  *time.Time `bson:"startTime,omitempty" json:"startTime,omitempty"`
	FinishTime *time.Time `bson:"finishTime,omitempty" json:"finishTime,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// NewWorkout validates the identifying fields of a workout.
func NewWorkout(id, athleteID, dayID, date string, kind WorkoutKind) (*Workout, error) {
	if id == "" {
		return nil, newValidationError("workoutId", "is required")
	}
	if athleteID == "" {
		return nil, newValidationError("athleteId", "is required")
	}
	if dayID == "" {
		return nil, newValidationError("dayId", "is required")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	if _, ok := allowedWorkoutStatuses[kind]; !ok {
		return nil, newValidationError("kind", "must be tracked or logged, got %q", kind)
	}
	return &Workout{ID: id, AthleteID: athleteID, DayID: dayID, Date: date, Kind: kind}, nil
}

// Status returns the explicit status if one was assigned, otherwise the derived one.
func (w *Workout) Status() WorkoutStatus {
	if w.ExplicitStatus != nil {
		return *w.ExplicitStatus
	}
	return w.DeriveStatus()
}

// HasExplicitStatus reports whether the status was assigned rather than derived.
func (w *Workout) HasExplicitStatus() bool {
	return w.ExplicitStatus != nil
}

func (w *Workout) exerciseStatuses() []ExerciseStatus {
	if w.Kind == WorkoutKindLogged {
		out := make([]ExerciseStatus, len(w.CompletedExercises))
		for i := range w.CompletedExercises {
			out[i] = w.CompletedExercises[i].Status()
		}
		return out
	}
	out := make([]ExerciseStatus, len(w.Exercises))
	for i := range w.Exercises {
		out[i] = w.Exercises[i].Status
	}
	return out
}

// DeriveStatus computes the status from the exercises, ignoring any explicit value.
// Skipped exercises count towards "completed" only alongside at least one completed one.
func (w *Workout) DeriveStatus() WorkoutStatus {
	statuses := w.exerciseStatuses()
	planned, completed, skipped := 0, 0, 0
	for _, s := range statuses {
		switch s {
		case ExerciseStatusPlanned:
			planned++
		case ExerciseStatusCompleted:
			completed++
		case ExerciseStatusSkipped:
			skipped++
		}
	}
	switch {
	case len(statuses) == planned:
		return WorkoutStatusNotStarted
	case completed > 0 && completed+skipped == len(statuses):
		return WorkoutStatusCompleted
	}
	return WorkoutStatusInProgress
}

// ParseWorkoutStatus validates s against the values allowed for kind.
func ParseWorkoutStatus(kind WorkoutKind, s string) (WorkoutStatus, error) {
	allowed := allowedWorkoutStatuses[kind]
	for _, st := range allowed {
		if string(st) == s {
			return st, nil
		}
	}
	names := make([]string, len(allowed))
	for i, st := range allowed {
		names[i] = string(st)
	}
	return "", newValidationError("status", "invalid workout status %q, must be one of %s", s, strings.Join(names, ", "))
}

// SetStatus assigns an explicit status. Invalid values leave the workout untouched.
func (w *Workout) SetStatus(s string) error {
	st, err := ParseWorkoutStatus(w.Kind, s)
	if err != nil {
		return err
	}
	w.ExplicitStatus = &st
	return nil
}

// StartSession records the start time once.
func (w *Workout) StartSession(now time.Time) error {
	if w.StartTime != nil {
		return newValidationError("startTime", "session already started")
	}
	t := SessionTimestamp(now)
	w.StartTime = &t
	return nil
}

// FinishSession records the finish time once, after a start.
func (w *Workout) FinishSession(now time.Time) error {
	if w.StartTime == nil {
		return newValidationError("finishTime", "session has not been started")
	}
	if w.FinishTime != nil {
		return newValidationError("finishTime", "session already finished")
	}
	t := SessionTimestamp(now)
	if t.Before(*w.StartTime) {
		return newValidationError("finishTime", "cannot be before start time")
	}
	w.FinishTime = &t
	return nil
}

// CalculateVolume sums reps x weight over completed sets of both representations.
func (w *Workout) CalculateVolume() float64 {
	var v float64
	for i := range w.Exercises {
		v += w.Exercises[i].Volume()
	}
	for i := range w.CompletedExercises {
		v += w.CompletedExercises[i].Volume()
	}
	return v
}

// WorkoutUpdate holds optional workout changes.
type WorkoutUpdate struct {
	Notes  *string
	Date   *string
	Status *string
}

// ApplyUpdate validates the present fields before writing any of them.
func (w *Workout) ApplyUpdate(u WorkoutUpdate) error {
	if u.Date != nil {
		if _, err := ParseDate(*u.Date); err != nil {
			return err
		}
	}
	var st WorkoutStatus
	if u.Status != nil {
		var err error
		if st, err = ParseWorkoutStatus(w.Kind, *u.Status); err != nil {
			return err
		}
	}
	if u.Notes != nil {
		w.Notes = *u.Notes
	}
	if u.Date != nil {
		w.Date = *u.Date
	}
	if u.Status != nil {
		w.ExplicitStatus = &st
	}
	return nil
}

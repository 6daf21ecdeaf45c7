package domain

import (
	"sort"
	"strings"
)

// CompletedExercise is the per-set logging variant: an exercise owned by one workout
// holding independently validated Set records ordered by set number.
type CompletedExercise struct {
	ID               string           `bson:"_id" json:"id"`
	ExerciseType     string           `bson:"exerciseType" json:"exerciseType"`
	ExerciseCategory ExerciseCategory `bson:"exerciseCategory" json:"exerciseCategory"`
	Notes            string           `bson:"notes,omitempty" json:"notes,omitempty"`
	Sets             []Set            `bson:"sets" json:"sets"`
}

func NewCompletedExercise(id string, exerciseType ExerciseType, notes string) (*CompletedExercise, error) {
	if id == "" {
		return nil, newValidationError("completedExerciseId", "is required")
	}
	if strings.TrimSpace(exerciseType.Name) == "" {
		return nil, newValidationError("exerciseType", "is required")
	}
	return &CompletedExercise{
		ID:               id,
		ExerciseType:     exerciseType.Name,
		ExerciseCategory: exerciseType.Category,
		Notes:            notes,
		Sets:             []Set{},
	}, nil
}

// AddSet inserts s keeping Sets ordered. Duplicate set numbers are rejected.
func (c *CompletedExercise) AddSet(s Set) error {
	for _, existing := range c.Sets {
		if existing.SetNumber == s.SetNumber {
			return newValidationError("setNumber", "set %d already exists", s.SetNumber)
		}
	}
	c.Sets = append(c.Sets, s)
	sort.SliceStable(c.Sets, func(i, j int) bool {
		return c.Sets[i].SetNumber < c.Sets[j].SetNumber
	})
	return nil
}

func (c *CompletedExercise) Volume() float64 {
	var v float64
	for _, s := range c.Sets {
		v += s.Volume()
	}
	return v
}

// Status maps the set completion onto the exercise status scale.
func (c *CompletedExercise) Status() ExerciseStatus {
	if len(c.Sets) == 0 {
		return ExerciseStatusPlanned
	}
	completed := 0
	for _, s := range c.Sets {
		if s.Completed {
			completed++
		}
	}
	switch completed {
	case 0:
		return ExerciseStatusPlanned
	case len(c.Sets):
		return ExerciseStatusCompleted
	}
	return ExerciseStatusInProgress
}

// MaxCompletedWeight returns the heaviest completed set.
func (c *CompletedExercise) MaxCompletedWeight() (float64, bool) {
	var best float64
	found := false
	for _, s := range c.Sets {
		if s.Completed && (!found || s.Weight > best) {
			best, found = s.Weight, true
		}
	}
	return best, found
}

func (c *CompletedExercise) CompletedSetCount() int {
	n := 0
	for _, s := range c.Sets {
		if s.Completed {
			n++
		}
	}
	return n
}

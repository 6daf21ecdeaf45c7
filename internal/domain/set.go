package domain

import "sort"

const maxRPE = 10.0

// SetRecord is one actual-performance entry inside Exercise.SetsData.
type SetRecord struct {
	SetNumber int        `bson:"setNumber" json:"setNumber"` // 1-based, unique within the exercise
	Reps      int        `bson:"reps" json:"reps"`
	Weight    WeightData `bson:"weight" json:"weight"`
	Completed bool       `bson:"completed" json:"completed"`
	RPE       *float64   `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Validate checks the per-record rules applied on every write.
func (s SetRecord) Validate() error {
	if s.SetNumber <= 0 {
		return newValidationError("setNumber", "must be greater than 0")
	}
	if s.Reps < 0 {
		return newValidationError("reps", "cannot be negative")
	}
	if s.Weight.Value < 0 {
		return newValidationError("weight", "cannot be negative")
	}
	if _, ok := ParseExplicitUnit(string(s.Weight.Unit)); !ok {
		return newValidationError("unit", "must be kg or lb, got %q", s.Weight.Unit)
	}
	return validateRPE(s.RPE)
}

// Volume is reps x weight for completed records, zero otherwise.
func (s SetRecord) Volume() float64 {
	if !s.Completed {
		return 0
	}
	return float64(s.Reps) * s.Weight.Value
}

func (s SetRecord) clone() SetRecord {
	c := s
	if s.RPE != nil {
		v := *s.RPE
		c.RPE = &v
	}
	return c
}

func cloneSetRecords(records []SetRecord) []SetRecord {
	out := make([]SetRecord, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}

func sortSetRecords(records []SetRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SetNumber < records[j].SetNumber
	})
}

func validateRPE(rpe *float64) error {
	if rpe != nil && (*rpe < 0 || *rpe > maxRPE) {
		return newValidationError("rpe", "must be between 0 and 10")
	}
	return nil
}

// Set is a single logged set in the per-set workout variant.
type Set struct {
	ID        string     `bson:"_id" json:"id"`
	SetNumber int        `bson:"setNumber" json:"setNumber"`
	Reps      int        `bson:"reps" json:"reps"`
	Weight    float64    `bson:"weight" json:"weight"`
	Unit      WeightUnit `bson:"unit" json:"unit"`
	RPE       *float64   `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Completed bool       `bson:"completed" json:"completed"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// NewSet validates and builds a logged set.
func NewSet(id string, setNumber, reps int, weight float64, unit WeightUnit, rpe *float64, completed bool, notes string) (*Set, error) {
	if id == "" {
		return nil, newValidationError("setId", "is required")
	}
	if setNumber <= 0 {
		return nil, newValidationError("setNumber", "must be positive")
	}
	if reps <= 0 {
		return nil, newValidationError("reps", "must be positive")
	}
	if weight <= 0 {
		return nil, newValidationError("weight", "must be positive")
	}
	if _, ok := ParseExplicitUnit(string(unit)); !ok {
		return nil, newValidationError("unit", "must be kg or lb, got %q", unit)
	}
	if err := validateRPE(rpe); err != nil {
		return nil, err
	}
	return &Set{
		ID:        id,
		SetNumber: setNumber,
		Reps:      reps,
		Weight:    weight,
		Unit:      unit,
		RPE:       rpe,
		Completed: completed,
		Notes:     notes,
	}, nil
}

// Volume is reps x weight for completed sets.
func (s Set) Volume() float64 {
	if !s.Completed {
		return 0
	}
	return float64(s.Reps) * s.Weight
}

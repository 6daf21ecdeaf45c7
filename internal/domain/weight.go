package domain

import "strings"

// WeightUnit is the unit a weight was recorded in.
type WeightUnit string

const (
	UnitKg WeightUnit = "kg"
	UnitLb WeightUnit = "lb"
)

// UnitPreference is the athlete's global setting used when a new record has no explicit unit.
type UnitPreference string

const (
	PreferenceAuto UnitPreference = "auto"
	PreferenceKg   UnitPreference = "kg"
	PreferenceLb   UnitPreference = "lb"
)

// ParseUnitPreference validates a preference value.
func ParseUnitPreference(s string) (UnitPreference, error) {
	switch p := UnitPreference(strings.ToLower(strings.TrimSpace(s))); p {
	case PreferenceAuto, PreferenceKg, PreferenceLb:
		return p, nil
	}
	return "", newValidationError("weightUnitPreference", "must be one of auto, kg, lb, got %q", s)
}

// WeightData is a value with the unit it was recorded in. Units are never converted
// after the fact.
type WeightData struct {
	Value float64    `bson:"value" json:"value"`
	Unit  WeightUnit `bson:"unit" json:"unit"`
}

// defaultUnits maps a preference to the natural unit per category. Under "auto",
// barbell work defaults to kg (calibrated plates) and everything else to lb.
var defaultUnits = map[UnitPreference]map[ExerciseCategory]WeightUnit{
	PreferenceAuto: {
		CategoryBarbell:    UnitKg,
		CategoryDumbbell:   UnitLb,
		CategoryBodyweight: UnitLb,
		CategoryMachine:    UnitLb,
		CategoryCable:      UnitLb,
		CategoryCustom:     UnitLb,
	},
	PreferenceKg: {
		CategoryBarbell:    UnitKg,
		CategoryDumbbell:   UnitKg,
		CategoryBodyweight: UnitKg,
		CategoryMachine:    UnitKg,
		CategoryCable:      UnitKg,
		CategoryCustom:     UnitKg,
	},
	PreferenceLb: {
		CategoryBarbell:    UnitLb,
		CategoryDumbbell:   UnitLb,
		CategoryBodyweight: UnitLb,
		CategoryMachine:    UnitLb,
		CategoryCable:      UnitLb,
		CategoryCustom:     UnitLb,
	},
}

// ParseExplicitUnit returns the unit only if s is exactly "kg" or "lb".
func ParseExplicitUnit(s string) (WeightUnit, bool) {
	switch WeightUnit(s) {
	case UnitKg, UnitLb:
		return WeightUnit(s), true
	}
	return "", false
}

// ResolveUnit picks the unit for a new record: an explicit "kg"/"lb" wins, then the
// athlete preference combined with the category table, then lb.
func ResolveUnit(category ExerciseCategory, explicit string, preference *UnitPreference) WeightUnit {
	if u, ok := ParseExplicitUnit(explicit); ok {
		return u
	}
	if preference != nil {
		if byCategory, ok := defaultUnits[*preference]; ok {
			if u, ok := byCategory[category]; ok {
				return u
			}
		}
	}
	return UnitLb
}

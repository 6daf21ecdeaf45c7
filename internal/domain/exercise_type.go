// internal/domain/exercise_type.go
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ExerciseCategory groups exercises by the equipment they use.
type ExerciseCategory string

const (
	CategoryBarbell    ExerciseCategory = "BARBELL"
	CategoryDumbbell   ExerciseCategory = "DUMBBELL"
	CategoryBodyweight ExerciseCategory = "BODYWEIGHT"
	CategoryMachine    ExerciseCategory = "MACHINE"
	CategoryCable      ExerciseCategory = "CABLE"
	CategoryCustom     ExerciseCategory = "CUSTOM"
)

var allCategories = []ExerciseCategory{
	CategoryBarbell,
	CategoryDumbbell,
	CategoryBodyweight,
	CategoryMachine,
	CategoryCable,
	CategoryCustom,
}

// predefinedExercises is keyed by the normalized (trimmed, lower-cased) name.
// Never mutated after init.
var predefinedExercises = map[string]ExerciseCategory{
	// Barbell
	"squat":               CategoryBarbell,
	"front squat":         CategoryBarbell,
	"bench press":         CategoryBarbell,
	"incline bench press": CategoryBarbell,
	"deadlift":            CategoryBarbell,
	"sumo deadlift":       CategoryBarbell,
	"romanian deadlift":   CategoryBarbell,
	"overhead press":      CategoryBarbell,
	"barbell row":         CategoryBarbell,
	"hip thrust":          CategoryBarbell,
	"good morning":        CategoryBarbell,

	// Dumbbell
	"dumbbell bench press":    CategoryDumbbell,
	"dumbbell shoulder press": CategoryDumbbell,
	"dumbbell row":            CategoryDumbbell,
	"dumbbell curl":           CategoryDumbbell,
	"hammer curl":             CategoryDumbbell,
	"lateral raise":           CategoryDumbbell,
	"dumbbell lunge":          CategoryDumbbell,
	"goblet squat":            CategoryDumbbell,

	// Bodyweight
	"pull-up":      CategoryBodyweight,
	"chin-up":      CategoryBodyweight,
	"push-up":      CategoryBodyweight,
	"dip":          CategoryBodyweight,
	"plank":        CategoryBodyweight,
	"inverted row": CategoryBodyweight,

	// Machine
	"leg press":     CategoryMachine,
	"leg extension": CategoryMachine,
	"leg curl":      CategoryMachine,
	"hack squat":    CategoryMachine,
	"chest press":   CategoryMachine,
	"calf raise":    CategoryMachine,

	// Cable
	"lat pulldown":     CategoryCable,
	"seated cable row": CategoryCable,
	"cable fly":        CategoryCable,
	"tricep pushdown":  CategoryCable,
	"face pull":        CategoryCable,
}

func normalizeExerciseName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LookupPredefined returns the category of a predefined exercise.
func LookupPredefined(name string) (ExerciseCategory, bool) {
	c, ok := predefinedExercises[normalizeExerciseName(name)]
	return c, ok
}

// IsPredefinedName reports whether name (case-insensitive, trimmed) is in the predefined table.
func IsPredefinedName(name string) bool {
	_, ok := LookupPredefined(name)
	return ok
}

// PredefinedExerciseNames returns the predefined names sorted alphabetically.
func PredefinedExerciseNames() []string {
	names := make([]string, 0, len(predefinedExercises))
	for n := range predefinedExercises {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidCategoryNames lists the enum values, in declaration order.
func ValidCategoryNames() []string {
	names := make([]string, len(allCategories))
	for i, c := range allCategories {
		names[i] = string(c)
	}
	return names
}

// ParseCategory validates a category string case-insensitively.
func ParseCategory(s string) (ExerciseCategory, error) {
	upper := ExerciseCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range allCategories {
		if c == upper {
			return c, nil
		}
	}
	return "", newValidationError("category", "invalid category %q, valid categories are: %s",
		s, strings.Join(ValidCategoryNames(), ", "))
}

// ExerciseType is never stored on its own; it is embedded on exercises as
// (exerciseType, exerciseCategory, isPredefined).
type ExerciseType struct {
	Name         string           `json:"name"`
	Category     ExerciseCategory `json:"category"`
	IsPredefined bool             `json:"isPredefined"`
}

// NewExerciseType resolves the category from the predefined table.
// Unknown names become CUSTOM.
func NewExerciseType(name string) ExerciseType {
	name = strings.TrimSpace(name)
	if c, ok := LookupPredefined(name); ok {
		return ExerciseType{Name: name, Category: c, IsPredefined: true}
	}
	return ExerciseType{Name: name, Category: CategoryCustom}
}

// NewExerciseTypeWithCategory builds a type with an explicit category. The result
// is never marked predefined, even when the name matches the table.
func NewExerciseTypeWithCategory(name string, category ExerciseCategory) ExerciseType {
	return ExerciseType{Name: strings.TrimSpace(name), Category: category}
}

// Equal compares names only.
func (t ExerciseType) Equal(other ExerciseType) bool {
	return normalizeExerciseName(t.Name) == normalizeExerciseName(other.Name)
}

// Matches reports whether name refers to this exercise type.
func (t ExerciseType) Matches(name string) bool {
	return normalizeExerciseName(t.Name) == normalizeExerciseName(name)
}

func (t ExerciseType) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Category)
}

// CustomExercise is a user-defined catalog entry stored on the user document.
type CustomExercise struct {
	Name     string           `bson:"name" json:"name"`
	Category ExerciseCategory `bson:"category" json:"category"`
}

// ExerciseType converts the custom entry into an ExerciseType.
func (c CustomExercise) ExerciseType() ExerciseType {
	return NewExerciseTypeWithCategory(c.Name, c.Category)
}

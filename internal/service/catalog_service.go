package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

type CatalogService interface {
	CreateCustomExercise(ctx context.Context, userID, name, category string) (*domain.CustomExercise, error)
	ListExerciseTypes(ctx context.Context, userID string) ([]domain.ExerciseType, error)
	ResolveExerciseType(ctx context.Context, userID, name string, category *string) (domain.ExerciseType, error)
}

type catalogService struct {
	userRepo repository.UserRepository
}

func NewCatalogService(userRepo repository.UserRepository) CatalogService {
	return &catalogService{userRepo: userRepo}
}

// CreateCustomExercise validates and appends a custom exercise to the user's list.
// The list is written back whole, so concurrent registrations race (last writer wins).
func (s *catalogService) CreateCustomExercise(ctx context.Context, userID, name, category string) (*domain.CustomExercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	cat, err := domain.ParseCategory(category)
	if err != nil {
		return nil, ErrInvalidCategory
	}
	if cat == domain.CategoryCustom {
		return nil, ErrCustomCategoryNotAllowed
	}
	if domain.IsPredefinedName(name) {
		return nil, ErrPredefinedNameConflict
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if user.HasCustomExercise(name) {
		return nil, ErrCustomNameConflict
	}

	created := domain.CustomExercise{Name: name, Category: cat}
	updated := append(append([]domain.CustomExercise{}, user.CustomExercises...), created)
	if err := s.userRepo.UpdateCustomExercises(ctx, userID, updated); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	log.Debugf("user %s registered custom exercise %q (%s)", userID, name, cat)
	return &created, nil
}

// ListExerciseTypes returns the predefined catalog followed by the user's custom entries.
func (s *catalogService) ListExerciseTypes(ctx context.Context, userID string) ([]domain.ExerciseType, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	names := domain.PredefinedExerciseNames()
	out := make([]domain.ExerciseType, 0, len(names)+len(user.CustomExercises))
	for _, n := range names {
		out = append(out, domain.NewExerciseType(n))
	}
	for _, c := range user.CustomExercises {
		out = append(out, c.ExerciseType())
	}
	return out, nil
}

// ResolveExerciseType builds the embedded type for a new exercise. An explicit
// category wins, then the predefined table, then the user's custom entries.
func (s *catalogService) ResolveExerciseType(ctx context.Context, userID, name string, category *string) (domain.ExerciseType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ExerciseType{}, &domain.ValidationError{Field: "exerciseType", Reason: "is required"}
	}
	if category != nil && *category != "" {
		cat, err := domain.ParseCategory(*category)
		if err != nil {
			return domain.ExerciseType{}, ErrInvalidCategory
		}
		return domain.NewExerciseTypeWithCategory(name, cat), nil
	}
	t := domain.NewExerciseType(name)
	if t.IsPredefined || userID == "" {
		return t, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.ExerciseType{}, mapNotFound(err, ErrUserNotFound)
	}
	for _, c := range user.CustomExercises {
		if t.Matches(c.Name) {
			return c.ExerciseType(), nil
		}
	}
	return t, nil
}

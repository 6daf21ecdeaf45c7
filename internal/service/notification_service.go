package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type NotificationService interface {
	// NotifyWorkoutCompleted creates one notification per coach of the workout's
	// athlete, skipping coaches that were already notified for it.
	NotifyWorkoutCompleted(ctx context.Context, workout *domain.Workout) (int, error)
	ListForCoach(ctx context.Context, coachID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, coachID, notificationID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	dayRepo          repository.DayRepository
	metrics          *metrics.Manager
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	dayRepo repository.DayRepository,
	metricsManager *metrics.Manager,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		dayRepo:          dayRepo,
		metrics:          metricsManager,
		now:              time.Now,
	}
}

func (s *notificationService) NotifyWorkoutCompleted(ctx context.Context, workout *domain.Workout) (int, error) {
	athlete, err := s.userRepo.GetByID(ctx, workout.AthleteID)
	if err != nil {
		return 0, mapNotFound(err, ErrUserNotFound)
	}
	if athlete.CoachID == nil || *athlete.CoachID == "" {
		return 0, nil
	}
	coaches := []string{*athlete.CoachID}

	day, err := s.dayRepo.GetByID(ctx, workout.DayID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("load day %s: %w", workout.DayID, err)
		}
		day = nil
	}

	created := 0
	for _, coachID := range coaches {
		exists, err := s.notificationRepo.ExistsForWorkout(ctx, workout.ID, coachID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		n := domain.NewWorkoutCompletedNotification(uuid.NewString(), coachID, athlete, workout, day, s.now())
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			// The unique index caught a concurrent completion event.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
		if s.metrics != nil {
			s.metrics.CounterNotificationsCreated.Inc()
		}
		log.Debugf("notified coach %s about workout %s", coachID, workout.ID)
	}
	return created, nil
}

func (s *notificationService) ListForCoach(ctx context.Context, coachID string, unreadOnly bool) ([]domain.Notification, error) {
	return s.notificationRepo.GetByCoachID(ctx, coachID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, coachID, notificationID string) error {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return mapNotFound(err, ErrNotificationNotFound)
	}
	if n.CoachID != coachID {
		return ErrAccessDenied
	}
	return mapNotFound(s.notificationRepo.MarkRead(ctx, notificationID), ErrNotificationNotFound)
}

package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type CreateBlockInput struct {
	AthleteID     string
	Title         string
	Description   string
	StartDate     string
	NumberOfWeeks int
	DaysPerWeek   int
}

type DayExerciseInput struct {
	ExerciseType string
	Category     *string
	Sets         int
	Reps         int
	Weight       float64
	RPE          *float64
	Notes        string
	Order        *int
}

// WeekSchedule is a week with its days, ordered by day number.
type WeekSchedule struct {
	domain.Week
	Days []domain.Day `json:"days"`
}

// BlockSchedule is a block with its weeks, ordered by week number.
type BlockSchedule struct {
	Block *domain.Block   `json:"block"`
	Weeks []WeekSchedule `json:"weeks"`
}

type BlockService interface {
	CreateBlock(ctx context.Context, coachID string, in CreateBlockInput) (*BlockSchedule, error)
	GetBlock(ctx context.Context, blockID string) (*domain.Block, error)
	ListAthleteBlocks(ctx context.Context, athleteID string) ([]domain.Block, error)
	GetSchedule(ctx context.Context, blockID string) (*BlockSchedule, error)
	// DeleteBlock removes the block and, best effort, its weeks, days and day
	// exercises. It returns how many child records were deleted.
	DeleteBlock(ctx context.Context, blockID string) (int, error)

	UpdateDay(ctx context.Context, dayID string, focus, notes *string) (*domain.Day, error)
	AddDayExercise(ctx context.Context, dayID string, in DayExerciseInput) (*domain.DayExercise, error)
	ListDayExercises(ctx context.Context, dayID string) ([]domain.DayExercise, error)
	UpdateDayExercise(ctx context.Context, dayExerciseID string, update domain.DayExerciseUpdate) (*domain.DayExercise, error)
	DeleteDayExercise(ctx context.Context, dayExerciseID string) error

	AuthorizeBlock(ctx context.Context, requesterID, blockID string) (*domain.Block, error)
	// AuthorizeDay also returns the block the day belongs to.
	AuthorizeDay(ctx context.Context, requesterID, dayID string) (*domain.Day, *domain.Block, error)
	AuthorizeDayExercise(ctx context.Context, requesterID, dayExerciseID string) (*domain.DayExercise, error)
}

type blockService struct {
	blockRepo       repository.BlockRepository
	weekRepo        repository.WeekRepository
	dayRepo         repository.DayRepository
	dayExerciseRepo repository.DayExerciseRepository
	catalog         CatalogService
	access          AccessChecker
}

func NewBlockService(
	blockRepo repository.BlockRepository,
	weekRepo repository.WeekRepository,
	dayRepo repository.DayRepository,
	dayExerciseRepo repository.DayExerciseRepository,
	catalog CatalogService,
	access AccessChecker,
) BlockService {
	return &blockService{
		blockRepo:       blockRepo,
		weekRepo:        weekRepo,
		dayRepo:         dayRepo,
		dayExerciseRepo: dayExerciseRepo,
		catalog:         catalog,
		access:          access,
	}
}

// CreateBlock stores the block together with its generated weeks and days.
func (s *blockService) CreateBlock(ctx context.Context, coachID string, in CreateBlockInput) (*BlockSchedule, error) {
	if in.AthleteID == "" {
		return nil, fmt.Errorf("%w: athleteId", ErrMissingParameter)
	}
	if err := requireAccess(ctx, s.access, coachID, in.AthleteID); err != nil {
		return nil, err
	}

	block, err := domain.NewBlock(domain.BlockParams{
		ID:            uuid.NewString(),
		AthleteID:     in.AthleteID,
		CoachID:       coachID,
		Title:         in.Title,
		Description:   in.Description,
		StartDate:     in.StartDate,
		NumberOfWeeks: in.NumberOfWeeks,
	})
	if err != nil {
		return nil, err
	}
	weeks, days, err := block.GenerateSchedule(in.DaysPerWeek, uuid.NewString)
	if err != nil {
		return nil, err
	}

	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	for i := range weeks {
		if err := s.weekRepo.Create(ctx, &weeks[i]); err != nil {
			return nil, fmt.Errorf("create week %d: %w", weeks[i].WeekNumber, err)
		}
	}
	for i := range days {
		if err := s.dayRepo.Create(ctx, &days[i]); err != nil {
			return nil, fmt.Errorf("create day %s: %w", days[i].Date, err)
		}
	}
	log.Infof("coach %s created block %s for athlete %s (%d weeks, %d days)",
		coachID, block.ID, block.AthleteID, len(weeks), len(days))

	return assembleSchedule(block, weeks, days), nil
}

func assembleSchedule(block *domain.Block, weeks []domain.Week, days []domain.Day) *BlockSchedule {
	byWeek := make(map[string][]domain.Day, len(weeks))
	for _, d := range days {
		byWeek[d.WeekID] = append(byWeek[d.WeekID], d)
	}
	sched := &BlockSchedule{Block: block, Weeks: make([]WeekSchedule, 0, len(weeks))}
	for _, w := range weeks {
		wd := byWeek[w.ID]
		sort.Slice(wd, func(i, j int) bool { return wd[i].DayNumber < wd[j].DayNumber })
		sched.Weeks = append(sched.Weeks, WeekSchedule{Week: w, Days: wd})
	}
	sort.Slice(sched.Weeks, func(i, j int) bool {
		return sched.Weeks[i].WeekNumber < sched.Weeks[j].WeekNumber
	})
	return sched
}

func (s *blockService) GetBlock(ctx context.Context, blockID string) (*domain.Block, error) {
	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, mapNotFound(err, ErrBlockNotFound)
	}
	return block, nil
}

func (s *blockService) ListAthleteBlocks(ctx context.Context, athleteID string) ([]domain.Block, error) {
	return s.blockRepo.GetByAthleteID(ctx, athleteID)
}

func (s *blockService) GetSchedule(ctx context.Context, blockID string) (*BlockSchedule, error) {
	block, err := s.GetBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	weeks, err := s.weekRepo.GetByBlockID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	var days []domain.Day
	for _, w := range weeks {
		wd, err := s.dayRepo.GetByWeekID(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		days = append(days, wd...)
	}
	return assembleSchedule(block, weeks, days), nil
}

func (s *blockService) DeleteBlock(ctx context.Context, blockID string) (int, error) {
	sched, err := s.GetSchedule(ctx, blockID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var errs error
	for _, w := range sched.Weeks {
		for _, d := range w.Days {
			exercises, err := s.dayExerciseRepo.GetByDayID(ctx, d.ID)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("list exercises of day %s: %w", d.ID, err))
			}
			for _, e := range exercises {
				if err := s.dayExerciseRepo.Delete(ctx, e.ID); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("day exercise %s: %w", e.ID, err))
					continue
				}
				deleted++
			}
			if err := s.dayRepo.Delete(ctx, d.ID); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("day %s: %w", d.ID, err))
				continue
			}
			deleted++
		}
		if err := s.weekRepo.Delete(ctx, w.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("week %s: %w", w.ID, err))
			continue
		}
		deleted++
	}
	if errs != nil {
		log.Warnf("block %s: %d child records not deleted: %s", blockID, len(multierr.Errors(errs)), errs)
	}

	if err := s.blockRepo.Delete(ctx, blockID); err != nil {
		return deleted, mapNotFound(err, ErrBlockNotFound)
	}
	return deleted, nil
}

func (s *blockService) UpdateDay(ctx context.Context, dayID string, focus, notes *string) (*domain.Day, error) {
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	if focus != nil {
		day.Focus = *focus
	}
	if notes != nil {
		day.Notes = *notes
	}
	if err := s.dayRepo.Update(ctx, day); err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	return day, nil
}

func (s *blockService) AddDayExercise(ctx context.Context, dayID string, in DayExerciseInput) (*domain.DayExercise, error) {
	block, err := s.blockForDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	exType, err := s.catalog.ResolveExerciseType(ctx, block.AthleteID, in.ExerciseType, in.Category)
	if err != nil {
		return nil, err
	}
	exercise, err := domain.NewDayExercise(domain.DayExerciseParams{
		ID:           uuid.NewString(),
		DayID:        dayID,
		ExerciseType: exType,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
		RPE:          in.RPE,
		Notes:        in.Notes,
		Order:        in.Order,
	})
	if err != nil {
		return nil, err
	}
	if err := s.dayExerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("create day exercise: %w", err)
	}
	return exercise, nil
}

func (s *blockService) ListDayExercises(ctx context.Context, dayID string) ([]domain.DayExercise, error) {
	return s.dayExerciseRepo.GetByDayID(ctx, dayID)
}

func (s *blockService) UpdateDayExercise(ctx context.Context, dayExerciseID string, update domain.DayExerciseUpdate) (*domain.DayExercise, error) {
	exercise, err := s.dayExerciseRepo.GetByID(ctx, dayExerciseID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayExerciseNotFound)
	}
	if err := exercise.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := s.dayExerciseRepo.Update(ctx, exercise); err != nil {
		return nil, mapNotFound(err, ErrDayExerciseNotFound)
	}
	return exercise, nil
}

func (s *blockService) DeleteDayExercise(ctx context.Context, dayExerciseID string) error {
	return mapNotFound(s.dayExerciseRepo.Delete(ctx, dayExerciseID), ErrDayExerciseNotFound)
}

// blockForDay walks day -> week -> block.
func (s *blockService) blockForDay(ctx context.Context, dayID string) (*domain.Block, error) {
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	week, err := s.weekRepo.GetByID(ctx, day.WeekID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayNotFound)
	}
	return s.GetBlock(ctx, week.BlockID)
}

func (s *blockService) AuthorizeBlock(ctx context.Context, requesterID, blockID string) (*domain.Block, error) {
	block, err := s.GetBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, block.AthleteID); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *blockService) AuthorizeDay(ctx context.Context, requesterID, dayID string) (*domain.Day, *domain.Block, error) {
	block, err := s.blockForDay(ctx, dayID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, block.AthleteID); err != nil {
		return nil, nil, err
	}
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrDayNotFound)
	}
	return day, block, nil
}

func (s *blockService) AuthorizeDayExercise(ctx context.Context, requesterID, dayExerciseID string) (*domain.DayExercise, error) {
	exercise, err := s.dayExerciseRepo.GetByID(ctx, dayExerciseID)
	if err != nil {
		return nil, mapNotFound(err, ErrDayExerciseNotFound)
	}
	if _, _, err := s.AuthorizeDay(ctx, requesterID, exercise.DayID); err != nil {
		return nil, err
	}
	return exercise, nil
}

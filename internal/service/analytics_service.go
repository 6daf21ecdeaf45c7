package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository"
	"context"
	"fmt"
	"strings"
)

// MaxWeightQuery and friends carry raw query parameters; validation happens in the service.
type MaxWeightQuery struct {
	AthleteID    string
	ExerciseType string
	StartDate    string
	EndDate      string
}

type VolumeQuery struct {
	AthleteID    string
	TimePeriod   string
	ExerciseType string // optional
	StartDate    string
	EndDate      string
}

type FrequencyQuery struct {
	AthleteID    string
	ExerciseType string
	TimePeriod   string
}

type CompareBlocksQuery struct {
	AthleteID string
	BlockID1  string
	BlockID2  string
}

// AnalyticsService checks every query in the same order before reading any data:
// missing parameters, then malformed dates, then access.
type AnalyticsService interface {
	MaxWeightHistory(ctx context.Context, requesterID string, q MaxWeightQuery) ([]MaxWeightPoint, error)
	VolumeOverTime(ctx context.Context, requesterID string, q VolumeQuery) ([]VolumePoint, error)
	ExerciseFrequency(ctx context.Context, requesterID string, q FrequencyQuery) (*ExerciseFrequency, error)
	AllTimeMaxWeight(ctx context.Context, requesterID, athleteID, exerciseType string) (float64, error)
	BlockVolume(ctx context.Context, requesterID, blockID string) (*BlockVolume, error)
	CompareBlocks(ctx context.Context, requesterID string, q CompareBlocksQuery) (*BlockComparison, error)
}

type analyticsService struct {
	engine    *AnalyticsEngine
	blockRepo repository.BlockRepository
	access    AccessChecker
	metrics   *metrics.Manager
}

func NewAnalyticsService(engine *AnalyticsEngine, blockRepo repository.BlockRepository, access AccessChecker, metricsManager *metrics.Manager) AnalyticsService {
	return &analyticsService{
		engine:    engine,
		blockRepo: blockRepo,
		access:    access,
		metrics:   metricsManager,
	}
}

func missing(params ...string) error {
	for i := 0; i+1 < len(params); i += 2 {
		if strings.TrimSpace(params[i+1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingParameter, params[i])
		}
	}
	return nil
}

func validDates(dates ...string) error {
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	return nil
}

func (s *analyticsService) count(kind string) {
	if s.metrics != nil {
		s.metrics.CounterAnalyticsQueries.WithLabelValues(kind).Inc()
	}
}

func (s *analyticsService) MaxWeightHistory(ctx context.Context, requesterID string, q MaxWeightQuery) ([]MaxWeightPoint, error) {
	if err := missing("athleteId", q.AthleteID, "exerciseType", q.ExerciseType); err != nil {
		return nil, err
	}
	if err := validDates(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, q.AthleteID); err != nil {
		return nil, err
	}
	s.count("max_weight")
	return s.engine.MaxWeightHistory(ctx, q.AthleteID, q.ExerciseType, DateRange{Start: q.StartDate, End: q.EndDate})
}

func (s *analyticsService) VolumeOverTime(ctx context.Context, requesterID string, q VolumeQuery) ([]VolumePoint, error) {
	if err := missing("athleteId", q.AthleteID); err != nil {
		return nil, err
	}
	if err := validDates(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	if err := ValidateTimePeriod(q.TimePeriod); err != nil {
		return nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, q.AthleteID); err != nil {
		return nil, err
	}
	s.count("volume")
	return s.engine.VolumeOverTime(ctx, q.AthleteID, q.TimePeriod, q.ExerciseType, DateRange{Start: q.StartDate, End: q.EndDate})
}

func (s *analyticsService) ExerciseFrequency(ctx context.Context, requesterID string, q FrequencyQuery) (*ExerciseFrequency, error) {
	if err := missing("athleteId", q.AthleteID, "exerciseType", q.ExerciseType); err != nil {
		return nil, err
	}
	if err := ValidateTimePeriod(q.TimePeriod); err != nil {
		return nil, err
	}
	if err := requireAccess(ctx, s.access, requesterID, q.AthleteID); err != nil {
		return nil, err
	}
	s.count("frequency")
	return s.engine.ExerciseFrequency(ctx, q.AthleteID, q.ExerciseType, q.TimePeriod)
}

func (s *analyticsService) AllTimeMaxWeight(ctx context.Context, requesterID, athleteID, exerciseType string) (float64, error) {
	if err := missing("athleteId", athleteID, "exerciseType", exerciseType); err != nil {
		return 0, err
	}
	if err := requireAccess(ctx, s.access, requesterID, athleteID); err != nil {
		return 0, err
	}
	s.count("all_time_max")
	return s.engine.AllTimeMaxWeight(ctx, athleteID, exerciseType)
}

func (s *analyticsService) BlockVolume(ctx context.Context, requesterID, blockID string) (*BlockVolume, error) {
	if err := missing("blockId", blockID); err != nil {
		return nil, err
	}
	// Ownership lookup: the block is the only source of the athlete to check access
	// against. Nothing else is read until requireAccess passes.
	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, mapNotFound(err, ErrBlockNotFound)
	}
	if err := requireAccess(ctx, s.access, requesterID, block.AthleteID); err != nil {
		return nil, err
	}
	s.count("block_volume")
	return s.engine.BlockVolume(ctx, blockID)
}

// CompareBlocks only compares two different blocks of the same athlete.
func (s *analyticsService) CompareBlocks(ctx context.Context, requesterID string, q CompareBlocksQuery) (*BlockComparison, error) {
	if err := missing("athleteId", q.AthleteID, "blockId1", q.BlockID1, "blockId2", q.BlockID2); err != nil {
		return nil, err
	}
	if q.BlockID1 == q.BlockID2 {
		return nil, ErrSameBlock
	}
	if err := requireAccess(ctx, s.access, requesterID, q.AthleteID); err != nil {
		return nil, err
	}
	for _, id := range []string{q.BlockID1, q.BlockID2} {
		block, err := s.blockRepo.GetByID(ctx, id)
		if err != nil {
			return nil, mapNotFound(err, ErrBlockNotFound)
		}
		if block.AthleteID != q.AthleteID {
			return nil, ErrAccessDenied
		}
	}
	s.count("compare_blocks")
	return s.engine.CompareBlocks(ctx, q.BlockID1, q.BlockID2)
}

package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"fmt"
	"sort"
)

// HistorySet is one set as seen by analytics, regardless of which workout
// representation it came from.
type HistorySet struct {
	SetNumber int               `json:"setNumber"`
	Reps      int               `json:"reps"`
	Weight    float64           `json:"weight"`
	Unit      domain.WeightUnit `json:"unit"`
	Completed bool              `json:"completed"`
	RPE       *float64          `json:"rpe,omitempty"`
}

// HistoryRecord is an exercise enriched with its parent workout's date and status.
type HistoryRecord struct {
	WorkoutID     string                  `json:"workoutId"`
	DayID         string                  `json:"dayId"`
	Date          string                  `json:"date"`
	WorkoutStatus domain.WorkoutStatus    `json:"workoutStatus"`
	ExerciseType  string                  `json:"exerciseType"`
	Category      domain.ExerciseCategory `json:"category"`
	Sets          []HistorySet            `json:"sets"`
}

func (r HistoryRecord) Volume() float64 {
	var v float64
	for _, s := range r.Sets {
		if s.Completed {
			v += float64(s.Reps) * s.Weight
		}
	}
	return v
}

func (r HistoryRecord) CompletedSets() int {
	n := 0
	for _, s := range r.Sets {
		if s.Completed {
			n++
		}
	}
	return n
}

// MaxCompletedWeight returns false when no set was completed.
func (r HistoryRecord) MaxCompletedWeight() (float64, bool) {
	var best float64
	found := false
	for _, s := range r.Sets {
		if s.Completed && (!found || s.Weight > best) {
			best, found = s.Weight, true
		}
	}
	return best, found
}

// WeekHistory groups the records of the workouts scheduled in one block week.
type WeekHistory struct {
	WeekNumber int             `json:"weekNumber"`
	Records    []HistoryRecord `json:"records"`
}

// BlockHistory is a block's history, weeks ordered by number. No weeks means the
// block has no schedule.
type BlockHistory struct {
	BlockID   string        `json:"blockId"`
	AthleteID string        `json:"athleteId"`
	Weeks     []WeekHistory `json:"weeks"`
}

// HistoryJoiner reads workouts and their exercises and flattens them into records.
type HistoryJoiner struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	blockRepo    repository.BlockRepository
	weekRepo     repository.WeekRepository
	dayRepo      repository.DayRepository
}

func NewHistoryJoiner(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	blockRepo repository.BlockRepository,
	weekRepo repository.WeekRepository,
	dayRepo repository.DayRepository,
) *HistoryJoiner {
	return &HistoryJoiner{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		blockRepo:    blockRepo,
		weekRepo:     weekRepo,
		dayRepo:      dayRepo,
	}
}

func (h *HistoryJoiner) AthleteHistory(ctx context.Context, athleteID string) ([]HistoryRecord, error) {
	workouts, err := h.workoutRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	return h.join(ctx, workouts)
}

func (h *HistoryJoiner) BlockHistory(ctx context.Context, blockID string) (*BlockHistory, error) {
	block, err := h.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, mapNotFound(err, ErrBlockNotFound)
	}
	weeks, err := h.weekRepo.GetByBlockID(ctx, blockID)
	if err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })

	out := &BlockHistory{BlockID: block.ID, AthleteID: block.AthleteID, Weeks: []WeekHistory{}}
	for _, w := range weeks {
		days, err := h.dayRepo.GetByWeekID(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("load days of week %d: %w", w.WeekNumber, err)
		}
		wh := WeekHistory{WeekNumber: w.WeekNumber, Records: []HistoryRecord{}}
		if len(days) > 0 {
			dayIDs := make([]string, len(days))
			for i, d := range days {
				dayIDs[i] = d.ID
			}
			workouts, err := h.workoutRepo.GetByDayIDs(ctx, dayIDs)
			if err != nil {
				return nil, fmt.Errorf("load workouts of week %d: %w", w.WeekNumber, err)
			}
			// Days belong to the block's athlete; other athletes' workouts never count.
			owned := workouts[:0]
			for _, wo := range workouts {
				if wo.AthleteID == block.AthleteID {
					owned = append(owned, wo)
				}
			}
			if wh.Records, err = h.join(ctx, owned); err != nil {
				return nil, err
			}
		}
		out.Weeks = append(out.Weeks, wh)
	}
	return out, nil
}

func (h *HistoryJoiner) join(ctx context.Context, workouts []domain.Workout) ([]HistoryRecord, error) {
	var trackedIDs []string
	for _, w := range workouts {
		if w.Kind == domain.WorkoutKindTracked {
			trackedIDs = append(trackedIDs, w.ID)
		}
	}
	byWorkout := map[string][]domain.Exercise{}
	if len(trackedIDs) > 0 {
		exercises, err := h.exerciseRepo.GetByWorkoutIDs(ctx, trackedIDs)
		if err != nil {
			return nil, fmt.Errorf("load exercises: %w", err)
		}
		for _, e := range exercises {
			byWorkout[e.WorkoutID] = append(byWorkout[e.WorkoutID], e)
		}
	}

	records := []HistoryRecord{}
	for i := range workouts {
		w := &workouts[i]
		w.Exercises = byWorkout[w.ID]
		status := w.Status()
		for _, e := range w.Exercises {
			records = append(records, recordFromExercise(w, status, &e))
		}
		for _, c := range w.CompletedExercises {
			records = append(records, recordFromCompleted(w, status, &c))
		}
	}
	return records, nil
}

func recordFromExercise(w *domain.Workout, status domain.WorkoutStatus, e *domain.Exercise) HistoryRecord {
	rec := HistoryRecord{
		WorkoutID:     w.ID,
		DayID:         w.DayID,
		Date:          w.Date,
		WorkoutStatus: status,
		ExerciseType:  e.ExerciseType,
		Category:      e.ExerciseCategory,
		Sets:          make([]HistorySet, 0, len(e.SetsData)),
	}
	for _, s := range e.SetsData {
		rec.Sets = append(rec.Sets, HistorySet{
			SetNumber: s.SetNumber,
			Reps:      s.Reps,
			Weight:    s.Weight.Value,
			Unit:      s.Weight.Unit,
			Completed: s.Completed,
			RPE:       s.RPE,
		})
	}
	return rec
}

func recordFromCompleted(w *domain.Workout, status domain.WorkoutStatus, c *domain.CompletedExercise) HistoryRecord {
	rec := HistoryRecord{
		WorkoutID:     w.ID,
		DayID:         w.DayID,
		Date:          w.Date,
		WorkoutStatus: status,
		ExerciseType:  c.ExerciseType,
		Category:      c.ExerciseCategory,
		Sets:          make([]HistorySet, 0, len(c.Sets)),
	}
	for _, s := range c.Sets {
		rec.Sets = append(rec.Sets, HistorySet{
			SetNumber: s.SetNumber,
			Reps:      s.Reps,
			Weight:    s.Weight,
			Unit:      s.Unit,
			Completed: s.Completed,
			RPE:       s.RPE,
		})
	}
	return rec
}

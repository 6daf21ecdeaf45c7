package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/tracing"
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Supported bucketing periods for volume and frequency queries.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var lookbackDays = map[string]int{
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodYear:  365,
}

// DateRange filters by YYYY-MM-DD, inclusive on both ends. Empty bounds are open.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

type MaxWeightPoint struct {
	Date      string  `json:"date"`
	MaxWeight float64 `json:"maxWeight"`
}

type VolumePoint struct {
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`
}

type ExerciseFrequency struct {
	ExerciseType     string  `json:"exerciseType"`
	TimePeriod       string  `json:"timePeriod"`
	TrainingDays     int     `json:"trainingDays"`
	TotalSets        int     `json:"totalSets"`
	FrequencyPerWeek float64 `json:"frequencyPerWeek"`
}

type WeekVolume struct {
	WeekNumber int     `json:"weekNumber"`
	Volume     float64 `json:"volume"`
}

type BlockVolume struct {
	BlockID       string       `json:"blockId"`
	TotalVolume   float64      `json:"totalVolume"`
	WeeklyVolumes []WeekVolume `json:"weeklyVolumes"`
}

type VolumeComparison struct {
	VolumeDifference float64 `json:"volumeDifference"`
	PercentageChange float64 `json:"percentageChange"`
}

type BlockComparison struct {
	Block1     BlockVolume      `json:"block1"`
	Block2     BlockVolume      `json:"block2"`
	Comparison VolumeComparison `json:"comparison"`
}

//go:generate mockgen -source=$GOFILE -destination=analytics_mocks_test.go -package=service_test

type historySource interface {
	AthleteHistory(ctx context.Context, athleteID string) ([]HistoryRecord, error)
	BlockHistory(ctx context.Context, blockID string) (*BlockHistory, error)
}

// AnalyticsEngine reduces an athlete's history. It never writes. Skipped workouts
// and records without a date are ignored everywhere. Weights are compared as
// stored, without unit conversion.
type AnalyticsEngine struct {
	source historySource
	now    func() time.Time
}

func NewAnalyticsEngine(source historySource) *AnalyticsEngine {
	return &AnalyticsEngine{
		source: source,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for lookback windows.
func (a *AnalyticsEngine) WithClock(now func() time.Time) *AnalyticsEngine {
	a.now = now
	return a
}

func usable(r HistoryRecord) bool {
	return r.Date != "" && r.WorkoutStatus != domain.WorkoutStatusSkipped
}

func matchesType(r HistoryRecord, exerciseType string) bool {
	return exerciseType == "" || strings.EqualFold(strings.TrimSpace(r.ExerciseType), strings.TrimSpace(exerciseType))
}

// ValidateTimePeriod rejects anything but week, month or year.
func ValidateTimePeriod(period string) error {
	if _, ok := lookbackDays[period]; !ok {
		return ErrInvalidTimePeriod
	}
	return nil
}

// MaxWeightHistory returns, per date, the heaviest completed set of exerciseType.
func (a *AnalyticsEngine) MaxWeightHistory(ctx context.Context, athleteID, exerciseType string, rng DateRange) (_ []MaxWeightPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.maxWeightHistory")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("athlete.id", athleteID), attribute.String("exercise.type", exerciseType))

	records, err := a.source.AthleteHistory(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	byDate := map[string]float64{}
	for _, r := range records {
		if !usable(r) || !matchesType(r, exerciseType) {
			continue
		}
		w, ok := r.MaxCompletedWeight()
		if !ok {
			continue
		}
		if cur, seen := byDate[r.Date]; !seen || w > cur {
			byDate[r.Date] = w
		}
	}

	points := []MaxWeightPoint{}
	for date, w := range byDate {
		if rng.Contains(date) {
			points = append(points, MaxWeightPoint{Date: date, MaxWeight: w})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// VolumeOverTime sums completed volume into buckets keyed by the first day of the
// period: ISO Monday for week, the 1st for month, January 1st for year.
// The range filter applies to bucket dates, so a bucket is kept or dropped whole.
func (a *AnalyticsEngine) VolumeOverTime(ctx context.Context, athleteID, timePeriod, exerciseType string, rng DateRange) (_ []VolumePoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.volumeOverTime")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("athlete.id", athleteID), attribute.String("period", timePeriod))

	if err := ValidateTimePeriod(timePeriod); err != nil {
		return nil, err
	}
	records, err := a.source.AthleteHistory(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	buckets := map[string]float64{}
	for _, r := range records {
		if !usable(r) || !matchesType(r, exerciseType) {
			continue
		}
		date, perr := domain.ParseDate(r.Date)
		if perr != nil {
			continue
		}
		key := domain.FormatDate(bucketStart(date, timePeriod))
		buckets[key] += r.Volume()
	}

	points := make([]VolumePoint, 0, len(buckets))
	for date, v := range buckets {
		if rng.Contains(date) {
			points = append(points, VolumePoint{Date: date, Volume: v})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func bucketStart(t time.Time, period string) time.Time {
	switch period {
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
		return t.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// ExerciseFrequency counts training days and completed sets of exerciseType over
// the last 7, 30 or 365 days, today included.
func (a *AnalyticsEngine) ExerciseFrequency(ctx context.Context, athleteID, exerciseType, timePeriod string) (_ *ExerciseFrequency, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.exerciseFrequency")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := ValidateTimePeriod(timePeriod); err != nil {
		return nil, err
	}
	records, err := a.source.AthleteHistory(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	days := lookbackDays[timePeriod]
	today := a.now().UTC()
	window := DateRange{
		Start: domain.FormatDate(today.AddDate(0, 0, -(days - 1))),
		End:   domain.FormatDate(today),
	}

	trainingDays := map[string]struct{}{}
	totalSets := 0
	for _, r := range records {
		if !usable(r) || !matchesType(r, exerciseType) || !window.Contains(r.Date) {
			continue
		}
		n := r.CompletedSets()
		if n == 0 {
			continue
		}
		trainingDays[r.Date] = struct{}{}
		totalSets += n
	}

	perWeek := float64(len(trainingDays)) / (float64(days) / 7)
	return &ExerciseFrequency{
		ExerciseType:     exerciseType,
		TimePeriod:       timePeriod,
		TrainingDays:     len(trainingDays),
		TotalSets:        totalSets,
		FrequencyPerWeek: math.Round(perWeek*100) / 100,
	}, nil
}

// BlockVolume sums volume over the workouts scheduled in the block, per week.
// A block without weeks fails with ErrNoSchedule.
func (a *AnalyticsEngine) BlockVolume(ctx context.Context, blockID string) (_ *BlockVolume, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.blockVolume")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("block.id", blockID))

	history, err := a.source.BlockHistory(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if len(history.Weeks) == 0 {
		return nil, ErrNoSchedule
	}

	out := &BlockVolume{BlockID: blockID, WeeklyVolumes: make([]WeekVolume, 0, len(history.Weeks))}
	for _, w := range history.Weeks {
		var v float64
		for _, r := range w.Records {
			if usable(r) {
				v += r.Volume()
			}
		}
		out.WeeklyVolumes = append(out.WeeklyVolumes, WeekVolume{WeekNumber: w.WeekNumber, Volume: v})
		out.TotalVolume += v
	}
	return out, nil
}

// CompareBlocks reports block2 relative to block1. The percentage is 0 when block1
// has no volume.
func (a *AnalyticsEngine) CompareBlocks(ctx context.Context, blockID1, blockID2 string) (_ *BlockComparison, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.compareBlocks")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	v1, err := a.BlockVolume(ctx, blockID1)
	if err != nil {
		return nil, err
	}
	v2, err := a.BlockVolume(ctx, blockID2)
	if err != nil {
		return nil, err
	}

	diff := v2.TotalVolume - v1.TotalVolume
	pct := 0.0
	if v1.TotalVolume != 0 {
		pct = math.Round(diff/v1.TotalVolume*10000) / 100
	}
	return &BlockComparison{
		Block1:     *v1,
		Block2:     *v2,
		Comparison: VolumeComparison{VolumeDifference: diff, PercentageChange: pct},
	}, nil
}

// AllTimeMaxWeight returns 0 when the athlete never completed a set of exerciseType.
func (a *AnalyticsEngine) AllTimeMaxWeight(ctx context.Context, athleteID, exerciseType string) (_ float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.allTimeMaxWeight")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	records, err := a.source.AthleteHistory(ctx, athleteID)
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, r := range records {
		if !usable(r) || !matchesType(r, exerciseType) {
			continue
		}
		if w, ok := r.MaxCompletedWeight(); ok && w > best {
			best = w
		}
	}
	return best, nil
}

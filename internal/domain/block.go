package domain

import (
	"strings"
	"time"
)

type BlockStatus string

const (
	BlockStatusDraft     BlockStatus = "draft"
	BlockStatusActive    BlockStatus = "active"
	BlockStatusCompleted BlockStatus = "completed"
)

// Block is a multi-week training program a coach assigns to an athlete.
type Block struct {
	ID            string      `bson:"_id" json:"id"`
	AthleteID     string      `bson:"athleteId" json:"athleteId"`
	CoachID       string      `bson:"coachId" json:"coachId"`
	Title         string      `bson:"title" json:"title"`
	Description   string      `bson:"description,omitempty" json:"description,omitempty"`
	StartDate     string      `bson:"startDate" json:"startDate"`
	EndDate       string      `bson:"endDate" json:"endDate"`
	Status        BlockStatus `bson:"status" json:"status"`
	NumberOfWeeks int         `bson:"numberOfWeeks" json:"numberOfWeeks"`
	CreatedAt     time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Week belongs to one block.
type Week struct {
	ID         string `bson:"_id" json:"id"`
	BlockID    string `bson:"blockId" json:"blockId"`
	WeekNumber int    `bson:"weekNumber" json:"weekNumber"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Day is a scheduled training day within a week.
type Day struct {
	ID        string `bson:"_id" json:"id"`
	WeekID    string `bson:"weekId" json:"weekId"`
	DayNumber int    `bson:"dayNumber" json:"dayNumber"`
	Date      string `bson:"date" json:"date"`
	Focus     string `bson:"focus,omitempty" json:"focus,omitempty"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
}

const maxDaysPerWeek = 7

type BlockParams struct {
	ID            string
	AthleteID     string
	CoachID       string
	Title         string
	Description   string
	StartDate     string
	NumberOfWeeks int
}

// NewBlock validates the block and derives EndDate from the start date and week count.
func NewBlock(p BlockParams) (*Block, error) {
	if p.ID == "" {
		return nil, newValidationError("blockId", "is required")
	}
	if p.AthleteID == "" {
		return nil, newValidationError("athleteId", "is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, newValidationError("title", "is required")
	}
	if p.NumberOfWeeks <= 0 {
		return nil, newValidationError("numberOfWeeks", "must be greater than 0")
	}
	start, err := ParseDate(p.StartDate)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, p.NumberOfWeeks*7-1)
	return &Block{
		ID:            p.ID,
		AthleteID:     p.AthleteID,
		CoachID:       p.CoachID,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		StartDate:     p.StartDate,
		EndDate:       FormatDate(end),
		Status:        BlockStatusDraft,
		NumberOfWeeks: p.NumberOfWeeks,
	}, nil
}

// GenerateSchedule lays out NumberOfWeeks weeks with daysPerWeek consecutive training
// days each, starting on the block's start date. newID supplies entity ids.
func (b *Block) GenerateSchedule(daysPerWeek int, newID func() string) ([]Week, []Day, error) {
	if daysPerWeek <= 0 || daysPerWeek > maxDaysPerWeek {
		return nil, nil, newValidationError("daysPerWeek", "must be between 1 and 7")
	}
	start, err := ParseDate(b.StartDate)
	if err != nil {
		return nil, nil, err
	}

	weeks := make([]Week, 0, b.NumberOfWeeks)
	days := make([]Day, 0, b.NumberOfWeeks*daysPerWeek)
	for w := 1; w <= b.NumberOfWeeks; w++ {
		week := Week{ID: newID(), BlockID: b.ID, WeekNumber: w}
		weeks = append(weeks, week)
		weekStart := start.AddDate(0, 0, (w-1)*7)
		for d := 1; d <= daysPerWeek; d++ {
			days = append(days, Day{
				ID:        newID(),
				WeekID:    week.ID,
				DayNumber: d,
				Date:      FormatDate(weekStart.AddDate(0, 0, d-1)),
			})
		}
	}
	return weeks, days, nil
}

// Contains reports whether date (YYYY-MM-DD) falls within the block, inclusive.
func (b *Block) Contains(date string) bool {
	return date >= b.StartDate && date <= b.EndDate
}

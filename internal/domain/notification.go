package domain

import "time"

type NotificationType string

const NotificationTypeWorkoutCompleted NotificationType = "workout_completed"

// DayInfo is the schedule context copied into a notification.
type DayInfo struct {
	DayID     string `bson:"dayId" json:"dayId"`
	DayNumber int    `bson:"dayNumber" json:"dayNumber"`
	Date      string `bson:"date" json:"date"`
	Focus     string `bson:"focus,omitempty" json:"focus,omitempty"`
}

type ExerciseSnapshot struct {
	ExerciseType  string  `bson:"exerciseType" json:"exerciseType"`
	CompletedSets int     `bson:"completedSets" json:"completedSets"`
	Volume        float64 `bson:"volume" json:"volume"`
}

// WorkoutSnapshot freezes the workout as it was when the notification was raised.
type WorkoutSnapshot struct {
	Date       string             `bson:"date" json:"date"`
	Status     WorkoutStatus      `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Volume     float64            `bson:"volume" json:"volume"`
	StartTime  *time.Time         `bson:"startTime,omitempty" json:"startTime,omitempty"`
	FinishTime *time.Time         `bson:"finishTime,omitempty" json:"finishTime,omitempty"`
	Exercises  []ExerciseSnapshot `bson:"exercises" json:"exercises"`
}

// Notification tells a coach about an athlete's workout. Only IsRead changes after creation.
type Notification struct {
	ID               string           `bson:"_id" json:"id"`
	CoachID          string           `bson:"coachId" json:"coachId"`
	AthleteID        string           `bson:"athleteId" json:"athleteId"`
	AthleteName      string           `bson:"athleteName" json:"athleteName"`
	WorkoutID        string           `bson:"workoutId" json:"workoutId"`
	DayInfo          DayInfo          `bson:"dayInfo" json:"dayInfo"`
	WorkoutData      WorkoutSnapshot  `bson:"workoutData" json:"workoutData"`
	IsRead           bool             `bson:"isRead" json:"isRead"`
	NotificationType NotificationType `bson:"notificationType" json:"notificationType"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
}

// SnapshotWorkout copies the parts of w a coach needs to review it later.
func SnapshotWorkout(w *Workout) WorkoutSnapshot {
	snap := WorkoutSnapshot{
		Date:       w.Date,
		Status:     w.Status(),
		Notes:      w.Notes,
		Volume:     w.CalculateVolume(),
		StartTime:  w.StartTime,
		FinishTime: w.FinishTime,
		Exercises:  []ExerciseSnapshot{},
	}
	for i := range w.Exercises {
		e := &w.Exercises[i]
		snap.Exercises = append(snap.Exercises, ExerciseSnapshot{
			ExerciseType:  e.ExerciseType,
			CompletedSets: e.CompletedSetCount(),
			Volume:        e.Volume(),
		})
	}
	for i := range w.CompletedExercises {
		c := &w.CompletedExercises[i]
		snap.Exercises = append(snap.Exercises, ExerciseSnapshot{
			ExerciseType:  c.ExerciseType,
			CompletedSets: c.CompletedSetCount(),
			Volume:        c.Volume(),
		})
	}
	return snap
}

// NewWorkoutCompletedNotification builds the notification for one coach.
func NewWorkoutCompletedNotification(id, coachID string, athlete *User, w *Workout, day *Day, now time.Time) *Notification {
	info := DayInfo{DayID: w.DayID, Date: w.Date}
	if day != nil {
		info.DayNumber = day.DayNumber
		info.Date = day.Date
		info.Focus = day.Focus
	}
	return &Notification{
		ID:               id,
		CoachID:          coachID,
		AthleteID:        athlete.ID,
		AthleteName:      athlete.Name,
		WorkoutID:        w.ID,
		DayInfo:          info,
		WorkoutData:      SnapshotWorkout(w),
		NotificationType: NotificationTypeWorkoutCompleted,
		CreatedAt:        now.UTC(),
	}
}

package service_test

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// In-memory repositories. Values are copied on the way in and out so tests see
// the same isolation a database gives.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrConflict
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) update(id string, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) AddAthleteToCoach(_ context.Context, coachID, athleteID string) error {
	return r.update(coachID, func(u *domain.User) {
		for _, id := range u.AthleteIDs {
			if id == athleteID {
				return
			}
		}
		u.AthleteIDs = append(u.AthleteIDs, athleteID)
	})
}

func (r *fakeUserRepo) SetCoachForAthlete(_ context.Context, athleteID, coachID string) error {
	return r.update(athleteID, func(u *domain.User) { u.CoachID = &coachID })
}

func (r *fakeUserRepo) GetAthletesByCoachID(_ context.Context, coachID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateCustomExercises(_ context.Context, userID string, exercises []domain.CustomExercise) error {
	return r.update(userID, func(u *domain.User) {
		u.CustomExercises = append([]domain.CustomExercise{}, exercises...)
	})
}

func (r *fakeUserRepo) UpdateWeightPreference(_ context.Context, userID string, pref domain.UnitPreference) error {
	return r.update(userID, func(u *domain.User) { u.WeightUnitPreference = pref })
}

type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks map[string]domain.Block
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: map[string]domain.Block{}}
}

func (r *fakeBlockRepo) Create(_ context.Context, block *domain.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[block.ID] = *block
	return nil
}

func (r *fakeBlockRepo) GetByID(_ context.Context, id string) (*domain.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blocks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBlockRepo) GetByAthleteID(_ context.Context, athleteID string) ([]domain.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Block{}
	for _, b := range r.blocks {
		if b.AthleteID == athleteID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

func (r *fakeBlockRepo) Update(_ context.Context, block *domain.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[block.ID]; !ok {
		return repository.ErrNotFound
	}
	r.blocks[block.ID] = *block
	return nil
}

func (r *fakeBlockRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.blocks, id)
	return nil
}

type fakeWeekRepo struct {
	mu    sync.Mutex
	weeks map[string]domain.Week
}

func newFakeWeekRepo() *fakeWeekRepo {
	return &fakeWeekRepo{weeks: map[string]domain.Week{}}
}

func (r *fakeWeekRepo) Create(_ context.Context, week *domain.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[week.ID] = *week
	return nil
}

func (r *fakeWeekRepo) GetByID(_ context.Context, id string) (*domain.Week, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.weeks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *fakeWeekRepo) GetByBlockID(_ context.Context, blockID string) ([]domain.Week, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Week{}
	for _, w := range r.weeks {
		if w.BlockID == blockID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (r *fakeWeekRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.weeks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.weeks, id)
	return nil
}

type fakeDayRepo struct {
	mu   sync.Mutex
	days map[string]domain.Day
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{days: map[string]domain.Day{}}
}

func (r *fakeDayRepo) Create(_ context.Context, day *domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days[day.ID] = *day
	return nil
}

func (r *fakeDayRepo) GetByID(_ context.Context, id string) (*domain.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *fakeDayRepo) GetByWeekID(_ context.Context, weekID string) ([]domain.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Day{}
	for _, d := range r.days {
		if d.WeekID == weekID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *fakeDayRepo) Update(_ context.Context, day *domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.days[day.ID]; !ok {
		return repository.ErrNotFound
	}
	r.days[day.ID] = *day
	return nil
}

func (r *fakeDayRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.days[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.days, id)
	return nil
}

type fakeDayExerciseRepo struct {
	mu        sync.Mutex
	exercises map[string]domain.DayExercise
}

func newFakeDayExerciseRepo() *fakeDayExerciseRepo {
	return &fakeDayExerciseRepo{exercises: map[string]domain.DayExercise{}}
}

func (r *fakeDayExerciseRepo) Create(_ context.Context, e *domain.DayExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[e.ID] = *e
	return nil
}

func (r *fakeDayExerciseRepo) GetByID(_ context.Context, id string) (*domain.DayExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeDayExerciseRepo) GetByDayID(_ context.Context, dayID string) ([]domain.DayExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.DayExercise{}
	for _, e := range r.exercises {
		if e.DayID == dayID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseType < out[j].ExerciseType })
	return out, nil
}

func (r *fakeDayExerciseRepo) Update(_ context.Context, e *domain.DayExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[e.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[e.ID] = *e
	return nil
}

func (r *fakeDayExerciseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[string]domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: map[string]domain.Workout{}}
}

// stored drops the loaded exercises, like the bson "-" tag does.
func stored(w domain.Workout) domain.Workout {
	w.Exercises = nil
	return w
}

func (r *fakeWorkoutRepo) Create(_ context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.workouts {
		if existing.AthleteID == w.AthleteID && existing.DayID == w.DayID {
			return repository.ErrConflict
		}
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	r.workouts[w.ID] = stored(*w)
	return nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *fakeWorkoutRepo) GetByAthleteAndDay(_ context.Context, athleteID, dayID string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workouts {
		if w.AthleteID == athleteID && w.DayID == dayID {
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) GetByAthleteID(_ context.Context, athleteID string) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.AthleteID == athleteID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeWorkoutRepo) GetByDayIDs(_ context.Context, dayIDs []string) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range dayIDs {
		want[id] = true
	}
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if want[w.DayID] {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[w.ID]; !ok {
		return repository.ErrNotFound
	}
	r.workouts[w.ID] = stored(*w)
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[string]domain.Exercise
	// failDelete makes Delete fail for the listed ids.
	failDelete map[string]error
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[string]domain.Exercise{}, failDelete: map[string]error{}}
}

func cloneExercise(e domain.Exercise) domain.Exercise {
	if e.SetsData != nil {
		e.SetsData = append([]domain.SetRecord{}, e.SetsData...)
	}
	if e.PlannedSetsData != nil {
		e.PlannedSetsData = append([]domain.SetRecord{}, e.PlannedSetsData...)
	}
	return e
}

func (r *fakeExerciseRepo) Create(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[e.ID] = cloneExercise(*e)
	return nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneExercise(e)
	return &e, nil
}

func (r *fakeExerciseRepo) GetByWorkoutID(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	return r.GetByWorkoutIDs(ctx, []string{workoutID})
}

func (r *fakeExerciseRepo) GetByWorkoutIDs(_ context.Context, workoutIDs []string) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range workoutIDs {
		want[id] = true
	}
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if want[e.WorkoutID] {
			out = append(out, cloneExercise(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.exercises[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Update does not own the set arrays.
	next := cloneExercise(*e)
	next.SetsData = cur.SetsData
	next.PlannedSetsData = cur.PlannedSetsData
	r.exercises[e.ID] = next
	return nil
}

func (r *fakeExerciseRepo) UpdateSets(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.exercises[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.SetsData = append([]domain.SetRecord{}, e.SetsData...)
	cur.Sets = e.Sets
	cur.Status = e.Status
	r.exercises[e.ID] = cur
	return nil
}

func (r *fakeExerciseRepo) CapturePlannedSets(_ context.Context, id string, planned []domain.SetRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.exercises[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if cur.PlannedSetsData != nil {
		return false, nil
	}
	cur.PlannedSetsData = append([]domain.SetRecord{}, planned...)
	r.exercises[id] = cur
	return true, nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failDelete[id]; err != nil {
		return err
	}
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]domain.Notification{}}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.notifications {
		if existing.WorkoutID == n.WorkoutID && existing.CoachID == n.CoachID {
			return repository.ErrConflict
		}
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (r *fakeNotificationRepo) GetByCoachID(_ context.Context, coachID string, unreadOnly bool) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.notifications {
		if n.CoachID == coachID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotificationRepo) ExistsForWorkout(_ context.Context, workoutID, coachID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.WorkoutID == workoutID && n.CoachID == coachID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.notifications[id] = n
	return nil
}

// fakeStorage records uploads in memory.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte{}, body...)
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://storage.test/" + key + "?expires=" + expires.String(), nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// staticAccess answers every access check the same way.
type staticAccess bool

func (a staticAccess) CanAccessAthlete(context.Context, string, string) (bool, error) {
	return bool(a), nil
}

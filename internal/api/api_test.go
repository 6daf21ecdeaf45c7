package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository"
	"aloop3/flow/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testSecret = "api-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
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

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) update(id string, fn func(u *domain.User)) error {
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

func (r *memUserRepo) AddAthleteToCoach(_ context.Context, coachID, athleteID string) error {
	return r.update(coachID, func(u *domain.User) {
		for _, id := range u.AthleteIDs {
			if id == athleteID {
				return
			}
		}
		u.AthleteIDs = append(u.AthleteIDs, athleteID)
	})
}

func (r *memUserRepo) SetCoachForAthlete(_ context.Context, athleteID, coachID string) error {
	return r.update(athleteID, func(u *domain.User) { u.CoachID = &coachID })
}

func (r *memUserRepo) GetAthletesByCoachID(_ context.Context, coachID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateCustomExercises(_ context.Context, userID string, exercises []domain.CustomExercise) error {
	return r.update(userID, func(u *domain.User) { u.CustomExercises = exercises })
}

func (r *memUserRepo) UpdateWeightPreference(_ context.Context, userID string, pref domain.UnitPreference) error {
	return r.update(userID, func(u *domain.User) { u.WeightUnitPreference = pref })
}

// stubAnalytics records the last query and answers with canned results.
type stubAnalytics struct {
	maxQuery    service.MaxWeightQuery
	volumeErr   error
	compareSeen service.CompareBlocksQuery
}

func (s *stubAnalytics) MaxWeightHistory(_ context.Context, _ string, q service.MaxWeightQuery) ([]service.MaxWeightPoint, error) {
	s.maxQuery = q
	return []service.MaxWeightPoint{{Date: "2024-01-01", MaxWeight: 100}}, nil
}

func (s *stubAnalytics) VolumeOverTime(context.Context, string, service.VolumeQuery) ([]service.VolumePoint, error) {
	return nil, s.volumeErr
}

func (s *stubAnalytics) ExerciseFrequency(context.Context, string, service.FrequencyQuery) (*service.ExerciseFrequency, error) {
	return &service.ExerciseFrequency{}, nil
}

func (s *stubAnalytics) AllTimeMaxWeight(context.Context, string, string, string) (float64, error) {
	return 142.5, nil
}

func (s *stubAnalytics) BlockVolume(context.Context, string, string) (*service.BlockVolume, error) {
	return nil, service.ErrBlockNotFound
}

func (s *stubAnalytics) CompareBlocks(_ context.Context, _ string, q service.CompareBlocksQuery) (*service.BlockComparison, error) {
	s.compareSeen = q
	return nil, service.ErrSameBlock
}

type testServer struct {
	router    *gin.Engine
	metrics   *metrics.Manager
	analytics *stubAnalytics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := &memUserRepo{users: map[string]domain.User{}}
	m := metrics.NewTestManager()
	analytics := &stubAnalytics{}

	router := gin.New()
	SetupRoutes(router, testSecret, Services{
		Auth:      service.NewAuthService(users, testSecret, time.Hour),
		Catalog:   service.NewCatalogService(users),
		Analytics: analytics,
		Access:    service.NewRosterAccessChecker(users),
	}, m)
	return &testServer{router: router, metrics: m, analytics: analytics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers a user and logs in, returning the token and user.
func (s *testServer) signup(t *testing.T, role domain.Role) (string, UserResponse) {
	t.Helper()
	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 12)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: gofakeit.Name(), Email: email, Password: password, Role: role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	coachToken, coach := s.signup(t, domain.RoleCoach)
	athleteToken, athlete := s.signup(t, domain.RoleAthlete)

	w := s.do(t, http.MethodGet, "/api/v1/me", athleteToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, athlete.ID, me.ID)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: "Admin", Email: gofakeit.Email(), Password: "long-enough", Role: "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: athlete.Email, Password: "not-the-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/me/preferences", athleteToken, WeightPreferenceRequest{WeightUnitPreference: "KG"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, domain.PreferenceKg, me.WeightUnitPreference)

	w = s.do(t, http.MethodPut, "/api/v1/me/preferences", athleteToken, WeightPreferenceRequest{WeightUnitPreference: "stone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Roster management is coach only.
	w = s.do(t, http.MethodPost, "/api/v1/coach/athletes", athleteToken, LinkAthleteRequest{AthleteEmail: coach.Email})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/coach/athletes", coachToken, LinkAthleteRequest{AthleteEmail: athlete.Email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/v1/coach/athletes", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var roster []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, athlete.ID, roster[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues(http.MethodGet, "/api/v1/me", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues(http.MethodPost, "/api/v1/auth/register", "201")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.GaugeRequests))
}

func jwtFor(userID string, role domain.Role, ttl time.Duration) (string, error) {
	claims := &service.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)
	_, athlete := s.signup(t, domain.RoleAthlete)

	expired, err := jwtFor(athlete.ID, domain.RoleAthlete, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage", header: "Bearer abc.def.ghi"},
		{name: "expired", header: "Bearer " + expired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, domain.RoleAthlete)

	tests := []struct {
		name     string
		req      CreateCustomExerciseRequest
		wantCode int
	}{
		{name: "created", req: CreateCustomExerciseRequest{Name: "Sled Push", Category: "machine"}, wantCode: http.StatusCreated},
		{name: "duplicate", req: CreateCustomExerciseRequest{Name: "sled push", Category: "MACHINE"}, wantCode: http.StatusConflict},
		{name: "predefined", req: CreateCustomExerciseRequest{Name: "Squat", Category: "BARBELL"}, wantCode: http.StatusConflict},
		{name: "invalid category", req: CreateCustomExerciseRequest{Name: "Sled Pull", Category: "chains"}, wantCode: http.StatusBadRequest},
		{name: "custom category", req: CreateCustomExerciseRequest{Name: "Sled Pull", Category: "CUSTOM"}, wantCode: http.StatusBadRequest},
		{name: "missing name", req: CreateCustomExerciseRequest{Category: "CABLE"}, wantCode: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/exercise-types/custom", token, tc.req)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/exercise-types", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []domain.ExerciseType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Len(t, types, len(domain.PredefinedExerciseNames())+1)
}

func TestRoleMiddleware_BlocksAreCoachOnly(t *testing.T) {
	s := newTestServer(t)
	token, athlete := s.signup(t, domain.RoleAthlete)

	w := s.do(t, http.MethodPost, "/api/v1/blocks", token, CreateBlockRequest{
		AthleteID: athlete.ID, Title: "Base", StartDate: "2024-01-01", NumberOfWeeks: 4, DaysPerWeek: 3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "athlete")
}

func TestAnalyticsRoutes(t *testing.T) {
	s := newTestServer(t)
	token, athlete := s.signup(t, domain.RoleAthlete)

	path := fmt.Sprintf("/api/v1/analytics/max-weight?athleteId=%s&exerciseType=Squat&startDate=2024-01-01", athlete.ID)
	w := s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.MaxWeightQuery{AthleteID: athlete.ID, ExerciseType: "Squat", StartDate: "2024-01-01"}, s.analytics.maxQuery)
	assert.JSONEq(t, `[{"date":"2024-01-01","maxWeight":100}]`, w.Body.String())

	s.analytics.volumeErr = service.ErrInvalidTimePeriod
	w = s.do(t, http.MethodGet, "/api/v1/analytics/volume?timePeriod=decade", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "week, month, year")

	w = s.do(t, http.MethodGet, "/api/v1/analytics/all-time-max?athleteId=a&exerciseType=Bench%20Press", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"athleteId":"a","exerciseType":"Bench Press","maxWeight":142.5}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/analytics/blocks/b1/volume", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/analytics/blocks/compare?athleteId=a&blockId1=b1&blockId2=b1", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CompareBlocksQuery{AthleteID: "a", BlockID1: "b1", BlockID2: "b1"}, s.analytics.compareSeen)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: &domain.ValidationError{Field: "reps", Reason: "must be positive"}, want: http.StatusBadRequest},
		{err: fmt.Errorf("query: %w", service.ErrMissingParameter), want: http.StatusBadRequest},
		{err: service.ErrInvalidDate, want: http.StatusBadRequest},
		{err: service.ErrAuthenticationFailed, want: http.StatusUnauthorized},
		{err: service.ErrAccessDenied, want: http.StatusForbidden},
		{err: service.ErrNotACoach, want: http.StatusForbidden},
		{err: service.ErrExerciseNotFound, want: http.StatusNotFound},
		{err: service.ErrNotificationNotFound, want: http.StatusNotFound},
		{err: service.ErrWorkoutKindConflict, want: http.StatusConflict},
		{err: service.ErrUserAlreadyExists, want: http.StatusConflict},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, statusForError(tc.err))
		})
	}
}

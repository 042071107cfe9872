package api

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock Services ──
// Embedded interfaces panic on methods a test does not expect.

type mockAuthService struct {
	service.AuthService
	callers map[string]*access.Caller
	user    *domain.User
}

func (m *mockAuthService) Authenticate(_ context.Context, token string) (*access.Caller, error) {
	if caller, ok := m.callers[token]; ok {
		return caller, nil
	}
	return nil, service.ErrInvalidToken
}

func (m *mockAuthService) GetUser(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, service.ErrUserNotFound
	}
	return m.user, nil
}

type mockWorkoutService struct {
	service.WorkoutService
	stats    *service.Stats
	err      error
	gotID    *primitive.ObjectID
	deleted  primitive.ObjectID
	complete service.CompleteWorkoutInput
}

func (m *mockWorkoutService) Stats(_ context.Context, _ *access.Caller, clientID *primitive.ObjectID) (*service.Stats, error) {
	m.gotID = clientID
	return m.stats, m.err
}

func (m *mockWorkoutService) Complete(_ context.Context, _ *access.Caller, id primitive.ObjectID, in service.CompleteWorkoutInput) (*domain.WorkoutLog, error) {
	m.complete = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.WorkoutLog{ID: id, Status: domain.WorkoutCompleted}, nil
}

func (m *mockWorkoutService) Delete(_ context.Context, _ *access.Caller, id primitive.ObjectID) error {
	m.deleted = id
	return m.err
}

type mockNotificationService struct {
	service.NotificationService
	unread int64
}

func (m *mockNotificationService) UnreadCount(context.Context, primitive.ObjectID) (int64, error) {
	return m.unread, nil
}

type mockAdminService struct {
	service.AdminService
	detail *service.UserDetail
}

func (m *mockAdminService) GetUser(_ context.Context, id primitive.ObjectID) (*service.UserDetail, error) {
	if m.detail == nil || m.detail.ID != id {
		return nil, service.ErrUserNotFound
	}
	return m.detail, nil
}

type mockHabitService struct {
	service.HabitService
	logged   service.HabitInput
	from, to time.Time
}

func (m *mockHabitService) List(_ context.Context, _ primitive.ObjectID, from, to time.Time) ([]domain.Habit, error) {
	m.from, m.to = from, to
	return []domain.Habit{}, nil
}

func (m *mockHabitService) Log(_ context.Context, _ primitive.ObjectID, in service.HabitInput) (*domain.Habit, error) {
	m.logged = in
	return &domain.Habit{Type: in.Type, Date: in.Date, Value: in.Value}, nil
}

type mockChallengeService struct {
	service.ChallengeService
	created service.ChallengeInput
	joinErr error
}

func (m *mockChallengeService) Create(_ context.Context, in service.ChallengeInput) (*domain.Challenge, error) {
	m.created = in
	return &domain.Challenge{Name: in.Name, Type: in.Type, Status: domain.ChallengeDraft}, nil
}

func (m *mockChallengeService) Join(_ context.Context, userID, challengeID primitive.ObjectID) (*domain.ChallengeParticipant, error) {
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	return &domain.ChallengeParticipant{ChallengeID: challengeID, UserID: userID}, nil
}

// ── Helpers ──

type testServer struct {
	router   *gin.Engine
	metrics  *metrics.Manager
	auth     *mockAuthService
	workouts *mockWorkoutService
	adminSvc *mockAdminService
	habits   *mockHabitService
	contests *mockChallengeService
	admin    *access.Caller
	trainer  *access.Caller
	client   *access.Caller
}

func newTestServer() *testServer {
	ts := &testServer{
		metrics:  metrics.NewTestManager(),
		workouts: &mockWorkoutService{stats: &service.Stats{}},
		adminSvc: &mockAdminService{},
		habits:   &mockHabitService{},
		contests: &mockChallengeService{},
		admin:    &access.Caller{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin},
		trainer:  &access.Caller{UserID: primitive.NewObjectID(), Role: domain.RoleTrainer},
		client:   &access.Caller{UserID: primitive.NewObjectID(), Role: domain.RoleClient},
	}
	ts.auth = &mockAuthService{callers: map[string]*access.Caller{
		"admin-token":   ts.admin,
		"trainer-token": ts.trainer,
		"client-token":  ts.client,
	}}

	ts.router = gin.New()
	ts.router.Use(RequestID(), Logger(zap.NewNop()), Metrics(ts.metrics))
	SetupRoutes(ts.router, Services{
		Auth:         ts.auth,
		Admin:        ts.adminSvc,
		Workout:      ts.workouts,
		Notification: &mockNotificationService{unread: 4},
		Habit:        ts.habits,
		Challenge:    ts.contests,
	}, ts.metrics)
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// ── Tests ──

func TestPing(t *testing.T) {
	ts := newTestServer()
	w := ts.do(http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	ts := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestAuth_MissingAndInvalidTokens(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, access.ErrUnauthenticated.Error(), errorBody(t, w))

	w = ts.do(http.MethodGet, "/api/v1/me", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer()
	ts.auth.user = &domain.User{ID: ts.client.UserID, Name: "Cat", Email: "cat@example.com", Role: domain.RoleClient}

	w := ts.do(http.MethodGet, "/api/v1/me", "client-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ts.client.UserID.Hex(), resp.ID)
	assert.Equal(t, domain.RoleClient, resp.Role)
}

func TestRoleGates(t *testing.T) {
	ts := newTestServer()
	tests := []struct {
		name, method, path, token string
		want                      int
	}{
		{"client on admin route", http.MethodGet, "/api/v1/admin/users", "client-token", http.StatusForbidden},
		{"trainer on admin route", http.MethodGet, "/api/v1/admin/trainers", "trainer-token", http.StatusForbidden},
		{"client on trainer route", http.MethodGet, "/api/v1/trainer/clients", "client-token", http.StatusForbidden},
		{"client assigning a workout", http.MethodPost, "/api/v1/workouts/assign", "client-token", http.StatusForbidden},
		{"client deleting a workout", http.MethodDelete, "/api/v1/workouts/" + primitive.NewObjectID().Hex(), "client-token", http.StatusForbidden},
		{"anonymous stats", http.MethodGet, "/api/v1/workouts/stats", "", http.StatusUnauthorized},
		{"trainer creating an exercise", http.MethodPost, "/api/v1/exercises", "trainer-token", http.StatusForbidden},
		{"trainer editing an exercise", http.MethodPut, "/api/v1/exercises/" + primitive.NewObjectID().Hex(), "trainer-token", http.StatusForbidden},
		{"trainer deleting an exercise", http.MethodDelete, "/api/v1/exercises/" + primitive.NewObjectID().Hex(), "trainer-token", http.StatusForbidden},
		{"client creating an exercise", http.MethodPost, "/api/v1/exercises", "client-token", http.StatusForbidden},
		{"trainer viewing a user", http.MethodGet, "/api/v1/admin/users/" + primitive.NewObjectID().Hex(), "trainer-token", http.StatusForbidden},
		{"client creating a challenge", http.MethodPost, "/api/v1/challenges", "client-token", http.StatusForbidden},
		{"trainer creating a challenge", http.MethodPost, "/api/v1/challenges", "trainer-token", http.StatusForbidden},
		{"anonymous habits", http.MethodGet, "/api/v1/habits", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "not permitted", errorBody(t, w))
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	ts := newTestServer()
	ts.workouts.stats = &service.Stats{Streak: 3, WeeklyCount: 2, TotalWorkouts: 10}
	clientID := primitive.NewObjectID()

	w := ts.do(http.MethodGet, "/api/v1/workouts/stats?clientId="+clientID.Hex(), "trainer-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"streak":3,"weeklyCount":2,"totalWorkouts":10}`, w.Body.String())
	require.NotNil(t, ts.workouts.gotID)
	assert.Equal(t, clientID, *ts.workouts.gotID)

	w = ts.do(http.MethodGet, "/api/v1/workouts/stats?clientId=nope", "trainer-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	ts := newTestServer()
	id := primitive.NewObjectID().Hex()

	ts.workouts.err = fmt.Errorf("complete: %w", service.ErrWorkoutClosed)
	w := ts.do(http.MethodPost, "/api/v1/workouts/"+id+"/complete", "client-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.workouts.err = service.ErrWorkoutCompleted
	w = ts.do(http.MethodDelete, "/api/v1/workouts/"+id, "trainer-token", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	ts.workouts.err = fmt.Errorf("stats: %w: %w", service.ErrDataUnavailable, errors.New("socket closed"))
	w = ts.do(http.MethodGet, "/api/v1/workouts/stats", "client-token", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "socket")
}

func TestCompleteWorkout_Body(t *testing.T) {
	ts := newTestServer()
	id := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	body := fmt.Sprintf(`{"durationMin":40,"exercises":[{"exerciseId":%q,"orderIndex":0,"sets":[{"setNumber":1,"reps":10,"weightKg":50}]}]}`, exerciseID.Hex())

	w := ts.do(http.MethodPost, "/api/v1/workouts/"+id.Hex()+"/complete", "client-token", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.workouts.complete.DurationMin)
	assert.Equal(t, 40, *ts.workouts.complete.DurationMin)
	require.Len(t, ts.workouts.complete.Exercises, 1)
	assert.Equal(t, exerciseID, ts.workouts.complete.Exercises[0].ExerciseID)

	w = ts.do(http.MethodPost, "/api/v1/workouts/"+id.Hex()+"/complete", "client-token", `{"durationMin":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteWorkout_InvalidID(t *testing.T) {
	ts := newTestServer()
	w := ts.do(http.MethodDelete, "/api/v1/workouts/123", "trainer-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := primitive.NewObjectID()
	w = ts.do(http.MethodDelete, "/api/v1/workouts/"+id.Hex(), "admin-token", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, ts.workouts.deleted)
}

func TestUnreadCount(t *testing.T) {
	ts := newTestServer()
	w := ts.do(http.MethodGet, "/api/v1/notifications/unread-count", "client-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":4}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.do(http.MethodGet, "/ping", "", "")

	w := ts.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fitcoach_test_server_requests_total{method="GET",route="/ping",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{access.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrTokenExpired, http.StatusUnauthorized},
		{access.ErrForbidden, http.StatusForbidden},
		{service.ErrClientAccessDenied, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", service.ErrWorkoutNotFound), http.StatusNotFound},
		{service.ErrMappingExists, http.StatusConflict},
		{service.ErrMappingInactive, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", service.ErrValidationFailed), http.StatusBadRequest},
		{service.ErrDataUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "err=%v", tt.err)
	}
}

func TestAdminGetUser(t *testing.T) {
	ts := newTestServer()
	userID := primitive.NewObjectID()
	ts.adminSvc.detail = &service.UserDetail{
		User:          domain.User{ID: userID, Name: "Cat", Role: domain.RoleClient, PasswordHash: "hash"},
		ClientProfile: &domain.ClientProfile{ID: primitive.NewObjectID(), UserID: userID},
	}

	w := ts.do(http.MethodGet, "/api/v1/admin/users/"+userID.Hex(), "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.Hex(), body["id"])
	assert.NotNil(t, body["clientProfile"])
	assert.Nil(t, body["trainerProfile"])
	assert.NotContains(t, w.Body.String(), "hash")

	w = ts.do(http.MethodGet, "/api/v1/admin/users/"+primitive.NewObjectID().Hex(), "admin-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHabits(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodGet, "/api/v1/habits?startDate=2024-05-13&endDate=2024-05-19", "client-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), ts.habits.from)
	assert.Equal(t, time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC), ts.habits.to)

	w = ts.do(http.MethodGet, "/api/v1/habits?startDate=2024-05-13", "client-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/habits", "client-token", `{"type":"WATER","date":"2024-05-15T08:00:00Z","value":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.HabitWater, ts.habits.logged.Type)
	assert.Zero(t, ts.habits.logged.Value)

	w = ts.do(http.MethodPost, "/api/v1/habits", "client-token", `{"type":"COFFEE","date":"2024-05-15","value":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/habits", "client-token", `{"type":"SLEEP","date":"2024-05-15"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "value is required")
}

func TestChallenges(t *testing.T) {
	ts := newTestServer()

	body := `{"name":"Twelve in May","type":"WORKOUT_COUNT","startDate":"2024-05-01","endDate":"2024-05-31","rules":{"target":12}}`
	w := ts.do(http.MethodPost, "/api/v1/challenges", "admin-token", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Twelve in May", ts.contests.created.Name)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), ts.contests.created.EndDate)
	assert.EqualValues(t, 12, ts.contests.created.Rules["target"])

	w = ts.do(http.MethodPost, "/api/v1/challenges", "admin-token", `{"name":"x","type":"WORKOUT_COUNT","startDate":"May 1st","endDate":"2024-05-31"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := primitive.NewObjectID().Hex()
	w = ts.do(http.MethodPost, "/api/v1/challenges/"+id+"/join", "client-token", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	ts.contests.joinErr = service.ErrAlreadyJoined
	w = ts.do(http.MethodPost, "/api/v1/challenges/"+id+"/join", "trainer-token", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	ts.contests.joinErr = service.ErrChallengeNotOpen
	w = ts.do(http.MethodPost, "/api/v1/challenges/"+id+"/join", "client-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

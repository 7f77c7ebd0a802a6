package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

type fakeEmitter struct {
	generates []jobs.GeneratePayload
	schedules []jobs.SchedulePayload
	adapts    []jobs.AdaptPayload
	err       error
}

func (f *fakeEmitter) EmitGenerate(p jobs.GeneratePayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.generates = append(f.generates, p)
	return "flow-gen", nil
}

func (f *fakeEmitter) EmitSchedule(p jobs.SchedulePayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.schedules = append(f.schedules, p)
	return "flow-sched", nil
}

func (f *fakeEmitter) EmitAdapt(p jobs.AdaptPayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.adapts = append(f.adapts, p)
	return "flow-adapt", nil
}

type fakePlanStore struct {
	plans []store.Plan
	err   error
}

func (f *fakePlanStore) ListRecentPlans(ctx context.Context, userID uuid.UUID, limit int) ([]store.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.plans) > limit {
		return f.plans[:limit], nil
	}
	return f.plans, nil
}

func newTestServer() (*Server, *fakeEmitter, *fakePlanStore) {
	emit := &fakeEmitter{}
	st := &fakePlanStore{}
	return New(ServerOptions{Store: st, Emit: emit}), emit, st
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer()
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestGenerate_Accepted(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()

	rec, resp := doJSON(t, s, "POST", "/api/workouts/generate", fmt.Sprintf(
		`{"userId": %q, "coachId": "kai", "workoutType": "hiit", "duration": 25, "equipment": ["dumbbells"]}`, userID))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, "flow-gen", resp.EventID)

	require.Len(t, emit.generates, 1)
	p := emit.generates[0]
	require.Equal(t, userID, p.UserID)
	require.Equal(t, "KAI", p.CoachID)
	require.Equal(t, workout.TypeHIIT, p.WorkoutType)
	require.Equal(t, 25, p.Duration)
}

func TestGenerate_FitnessLevelAndHints(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()

	rec, resp := doJSON(t, s, "POST", "/api/workouts/generate", fmt.Sprintf(
		`{"userId": %q, "fitnessLevel": "beginner", "preferences": {"intensity": "high", "restTime": "short"}}`, userID))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, resp.Success)

	require.Len(t, emit.generates, 1)
	p := emit.generates[0]
	require.Equal(t, workout.LevelBeginner, p.FitnessLevel)
	require.NotNil(t, p.Preferences)
	require.Equal(t, "high", p.Preferences.Intensity)
	require.Equal(t, "short", p.Preferences.RestTime)
	require.Empty(t, p.Preferences.Variety)
}

func TestGenerate_Validation(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad user id", `{"userId": "not-a-uuid"}`, "userId"},
		{"unknown coach", fmt.Sprintf(`{"userId": %q, "coachId": "BOB"}`, userID), "unknown coach"},
		{"bad workout type", fmt.Sprintf(`{"userId": %q, "workoutType": "pilates"}`, userID), "workout type"},
		{"duration too short", fmt.Sprintf(`{"userId": %q, "duration": 5}`, userID), "duration"},
		{"duration too long", fmt.Sprintf(`{"userId": %q, "duration": 200}`, userID), "duration"},
		{"unknown field", fmt.Sprintf(`{"userId": %q, "bogus": true}`, userID), "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, s, "POST", "/api/workouts/generate", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.False(t, resp.Success)
			require.Contains(t, resp.Message, tc.want)
		})
	}
	require.Empty(t, emit.generates)
}

func TestGenerate_HintValidation(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad fitness level", fmt.Sprintf(`{"userId": %q, "fitnessLevel": "elite"}`, userID), "fitness level"},
		{"bad intensity", fmt.Sprintf(`{"userId": %q, "preferences": {"intensity": "brutal"}}`, userID), "preferences.intensity"},
		{"bad variety", fmt.Sprintf(`{"userId": %q, "preferences": {"variety": "chaotic"}}`, userID), "preferences.variety"},
		{"bad rest time", fmt.Sprintf(`{"userId": %q, "preferences": {"restTime": "forever"}}`, userID), "preferences.restTime"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, s, "POST", "/api/workouts/generate", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.False(t, resp.Success)
			require.Contains(t, resp.Message, tc.want)
		})
	}
	require.Empty(t, emit.generates)
}

func TestSchedule_Accepted(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()

	rec, resp := doJSON(t, s, "POST", "/api/workouts/schedule", fmt.Sprintf(
		`{"userId": %q, "frequency": 3, "preferredTimeSlots": ["07:30", "18:00"]}`, userID))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, "flow-sched", resp.EventID)

	require.Len(t, emit.schedules, 1)
	require.Equal(t, 3, emit.schedules[0].Frequency)
	require.Equal(t, []string{"07:30", "18:00"}, emit.schedules[0].PreferredTimeSlots)
}

func TestSchedule_Validation(t *testing.T) {
	s, _, _ := newTestServer()
	userID := uuid.NewString()

	rec, resp := doJSON(t, s, "POST", "/api/workouts/schedule", fmt.Sprintf(`{"userId": %q, "frequency": 0}`, userID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp.Message, "frequency")

	rec, resp = doJSON(t, s, "POST", "/api/workouts/schedule", fmt.Sprintf(`{"userId": %q, "frequency": 8}`, userID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp.Message, "frequency")

	rec, resp = doJSON(t, s, "POST", "/api/workouts/schedule", fmt.Sprintf(
		`{"userId": %q, "frequency": 3, "preferredTimeSlots": ["7 am"]}`, userID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp.Message, "time slot")
}

func TestFeedback_Accepted(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()
	workoutID := uuid.NewString()

	body := fmt.Sprintf(`{
		"userId": %q,
		"workoutId": %q,
		"feedback": {"overallRating": 4, "energyLevel": 3, "difficulty": "just_right", "enjoymentRating": 5},
		"performance": {"completedSets": 10, "totalSets": 12}
	}`, userID, workoutID)

	rec, resp := doJSON(t, s, "POST", "/api/workouts/feedback", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, "flow-adapt", resp.EventID)

	require.Len(t, emit.adapts, 1)
	require.Equal(t, workoutID, emit.adapts[0].WorkoutID)
	require.Equal(t, 4, emit.adapts[0].Feedback.OverallRating)
}

func TestFeedback_Validation(t *testing.T) {
	s, emit, _ := newTestServer()
	userID := uuid.NewString()
	workoutID := uuid.NewString()

	template := `{"userId": %q, "workoutId": %q, "feedback": {"overallRating": %d, "energyLevel": %d, "difficulty": %q, "enjoymentRating": %d}, "performance": {"completedSets": %d, "totalSets": %d}}`

	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad workout id", fmt.Sprintf(template, userID, "nope", 4, 3, "just_right", 4, 10, 12), "workoutId"},
		{"rating too low", fmt.Sprintf(template, userID, workoutID, 0, 3, "just_right", 4, 10, 12), "overallRating"},
		{"rating too high", fmt.Sprintf(template, userID, workoutID, 6, 3, "just_right", 4, 10, 12), "overallRating"},
		{"bad difficulty", fmt.Sprintf(template, userID, workoutID, 4, 3, "impossible", 4, 10, 12), "difficulty"},
		{"zero total sets", fmt.Sprintf(template, userID, workoutID, 4, 3, "just_right", 4, 0, 0), "totalSets"},
		{"completed exceeds total", fmt.Sprintf(template, userID, workoutID, 4, 3, "just_right", 4, 13, 12), "completedSets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, s, "POST", "/api/workouts/feedback", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, resp.Message, tc.want)
		})
	}
	require.Empty(t, emit.adapts)
}

func TestListPlans(t *testing.T) {
	s, _, st := newTestServer()
	userID := uuid.New()
	st.plans = []store.Plan{{
		ID:                uuid.New(),
		UserProfileID:     userID,
		Name:              "MAX Strength Workout",
		WorkoutType:       workout.TypeStrength,
		DifficultyLevel:   workout.LevelIntermediate,
		EstimatedDuration: 30,
		CoachID:           "MAX",
		Exercises:         []workout.Exercise{{ID: 1, Name: "Push-ups"}},
		CreatedAt:         time.Now(),
	}}

	req := httptest.NewRequest("GET", "/api/workouts/plans?userId="+userID.String(), nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool       `json:"success"`
		Data    []planView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "MAX Strength Workout", resp.Data[0].Name)
	require.Equal(t, "INTERMEDIATE", resp.Data[0].DifficultyLevel)
}

func TestListPlans_Validation(t *testing.T) {
	s, _, _ := newTestServer()

	req := httptest.NewRequest("GET", "/api/workouts/plans?userId=nope", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("GET", "/api/workouts/plans?userId="+uuid.NewString()+"&limit=99", nil)
	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPlans_StoreErrorMapping(t *testing.T) {
	s, _, st := newTestServer()
	st.err = fmt.Errorf("lookup: %w", store.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/workouts/plans?userId="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutatingRateLimit(t *testing.T) {
	s, _, _ := newTestServer()
	userID := uuid.NewString()
	body := fmt.Sprintf(`{"userId": %q}`, userID)

	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("POST", "/api/workouts/generate", strings.NewReader(body))
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, req)
		last = rec.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

// Package routes wires the public workout API.
package routes

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/coach"
	appmw "github.com/flexflow/flexflow/internal/http/middleware"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

// Emitter is what the routes need from the task queue.
type Emitter interface {
	EmitGenerate(p jobs.GeneratePayload) (string, error)
	EmitSchedule(p jobs.SchedulePayload) (string, error)
	EmitAdapt(p jobs.AdaptPayload) (string, error)
}

// PlanStore is what the routes need from persistence.
type PlanStore interface {
	ListRecentPlans(ctx context.Context, userID uuid.UUID, limit int) ([]store.Plan, error)
}

type Server struct {
	Router *chi.Mux
	Store  PlanStore
	Emit   Emitter
}

type ServerOptions struct {
	Store PlanStore
	Emit  Emitter
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Store: opts.Store, Emit: opts.Emit}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Printf("Error writing health check response: %v", err)
		}
	})

	mutating := appmw.NewRateLimiter(10, time.Minute)
	reads := appmw.NewRateLimiter(30, time.Minute)

	r.Route("/api/workouts", func(api chi.Router) {
		api.Group(func(mr chi.Router) {
			mr.Use(mutating.Middleware(nil))
			mr.Post("/generate", s.handleGenerate)
			mr.Post("/schedule", s.handleSchedule)
			mr.Post("/feedback", s.handleFeedback)
		})
		api.Group(func(rr chi.Router) {
			rr.Use(reads.Middleware(func(r *http.Request) string {
				return r.URL.Query().Get("userId")
			}))
			rr.Get("/plans", s.handleListPlans)
		})
	})

	return s
}

// apiResponse is the common envelope. EventID carries the flow id of
// the queued task so clients can correlate async results.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EventID string `json:"eventId,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type generateRequest struct {
	UserID       string                   `json:"userId"`
	CoachID      string                   `json:"coachId,omitempty"`
	WorkoutType  string                   `json:"workoutType,omitempty"`
	Duration     int                      `json:"duration,omitempty"`
	Equipment    []string                 `json:"equipment,omitempty"`
	FitnessLevel string                   `json:"fitnessLevel,omitempty"`
	Preferences  *workout.PreferenceHints `json:"preferences,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := requireUserID(w, req.UserID); !ok {
		return
	}
	if req.CoachID != "" && !coach.Known(req.CoachID) {
		writeError(w, http.StatusBadRequest, "unknown coach: "+req.CoachID)
		return
	}
	if req.WorkoutType != "" && !workout.ValidType(workout.Type(req.WorkoutType)) {
		writeError(w, http.StatusBadRequest, "invalid workout type: "+req.WorkoutType)
		return
	}
	if req.Duration != 0 && (req.Duration < 10 || req.Duration > 120) {
		writeError(w, http.StatusBadRequest, "duration must be between 10 and 120 minutes")
		return
	}
	level := workout.FitnessLevel(strings.ToUpper(req.FitnessLevel))
	if req.FitnessLevel != "" && !workout.ValidFitnessLevel(level) {
		writeError(w, http.StatusBadRequest, "invalid fitness level: "+req.FitnessLevel)
		return
	}
	if msg := validateHints(req.Preferences); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	flowID, err := s.Emit.EmitGenerate(jobs.GeneratePayload{
		UserID:       req.UserID,
		CoachID:      strings.ToUpper(req.CoachID),
		WorkoutType:  workout.Type(req.WorkoutType),
		Duration:     req.Duration,
		Equipment:    req.Equipment,
		FitnessLevel: level,
		Preferences:  req.Preferences,
	})
	if err != nil {
		log.Printf("enqueue generate for user %s failed: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to queue workout generation")
		return
	}
	writeJSON(w, http.StatusAccepted, apiResponse{
		Success: true,
		Message: "workout generation started",
		EventID: flowID,
	})
}

type scheduleRequest struct {
	UserID             string   `json:"userId"`
	Frequency          int      `json:"frequency"`
	PreferredTimeSlots []string `json:"preferredTimeSlots,omitempty"`
	Duration           int      `json:"duration,omitempty"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := requireUserID(w, req.UserID); !ok {
		return
	}
	if req.Frequency < 1 || req.Frequency > 7 {
		writeError(w, http.StatusBadRequest, "frequency must be between 1 and 7 workouts per week")
		return
	}
	for _, slot := range req.PreferredTimeSlots {
		if !validTimeSlot(slot) {
			writeError(w, http.StatusBadRequest, "invalid time slot "+slot+", expected HH:MM")
			return
		}
	}

	flowID, err := s.Emit.EmitSchedule(jobs.SchedulePayload{
		UserID:             req.UserID,
		Frequency:          req.Frequency,
		PreferredTimeSlots: req.PreferredTimeSlots,
		Duration:           req.Duration,
	})
	if err != nil {
		log.Printf("enqueue schedule for user %s failed: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to queue workout scheduling")
		return
	}
	writeJSON(w, http.StatusAccepted, apiResponse{
		Success: true,
		Message: "workout scheduling started",
		EventID: flowID,
	})
}

type feedbackRequest struct {
	UserID      string              `json:"userId"`
	WorkoutID   string              `json:"workoutId"`
	Feedback    workout.Feedback    `json:"feedback"`
	Performance workout.Performance `json:"performance"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := requireUserID(w, req.UserID); !ok {
		return
	}
	if _, err := uuid.Parse(req.WorkoutID); err != nil {
		writeError(w, http.StatusBadRequest, "workoutId must be a valid UUID")
		return
	}
	if msg := validateFeedback(req.Feedback, req.Performance); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	flowID, err := s.Emit.EmitAdapt(jobs.AdaptPayload{
		UserID:      req.UserID,
		WorkoutID:   req.WorkoutID,
		Feedback:    req.Feedback,
		Performance: req.Performance,
	})
	if err != nil {
		log.Printf("enqueue adapt for user %s failed: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to queue feedback processing")
		return
	}
	writeJSON(w, http.StatusAccepted, apiResponse{
		Success: true,
		Message: "feedback received, adapting your plan",
		EventID: flowID,
	})
}

// planView is the read-model shape returned by the plans endpoint.
type planView struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	WorkoutType       workout.Type       `json:"workoutType"`
	DifficultyLevel   string             `json:"difficultyLevel"`
	EstimatedDuration int                `json:"estimatedDuration"`
	CoachID           string             `json:"coachId"`
	FallbackUsed      bool               `json:"fallbackUsed"`
	Exercises         []workout.Exercise `json:"exercises"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r.URL.Query().Get("userId"))
	if !ok {
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	plans, err := s.Store.ListRecentPlans(r.Context(), userID, limit)
	if err != nil {
		status, msg := store.HTTPStatus(err)
		log.Printf("list plans for user %s failed: %v", userID, err)
		writeError(w, status, msg)
		return
	}

	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			WorkoutType:       p.WorkoutType,
			DifficultyLevel:   string(p.DifficultyLevel),
			EstimatedDuration: p.EstimatedDuration,
			CoachID:           p.CoachID,
			FallbackUsed:      p.FallbackUsed,
			Exercises:         p.Exercises,
			CreatedAt:         p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "plans retrieved",
		Data:    views,
	})
}

func validateFeedback(fb workout.Feedback, perf workout.Performance) string {
	if fb.OverallRating < 1 || fb.OverallRating > 5 {
		return "overallRating must be between 1 and 5"
	}
	if fb.EnergyLevel < 1 || fb.EnergyLevel > 5 {
		return "energyLevel must be between 1 and 5"
	}
	if fb.EnjoymentRating < 1 || fb.EnjoymentRating > 5 {
		return "enjoymentRating must be between 1 and 5"
	}
	switch fb.Difficulty {
	case "too_easy", "just_right", "too_hard":
	default:
		return "difficulty must be too_easy, just_right or too_hard"
	}
	if perf.TotalSets <= 0 {
		return "performance.totalSets must be positive"
	}
	if perf.CompletedSets < 0 || perf.CompletedSets > perf.TotalSets {
		return "performance.completedSets must be between 0 and totalSets"
	}
	return ""
}

// validateHints checks the optional preference overrides. Empty fields
// are allowed and fall back to the user's stored preferences.
func validateHints(h *workout.PreferenceHints) string {
	if h == nil {
		return ""
	}
	if h.Intensity != "" && !workout.ValidIntensity(h.Intensity) {
		return "preferences.intensity must be low, moderate or high"
	}
	if h.Variety != "" && !workout.ValidVariety(h.Variety) {
		return "preferences.variety must be repetitive, balanced or high_variety"
	}
	if h.RestTime != "" && !workout.ValidRestPreference(h.RestTime) {
		return "preferences.restTime must be short, standard or extended"
	}
	return ""
}

func validTimeSlot(slot string) bool {
	parts := strings.SplitN(slot, ":", 2)
	if len(parts) != 2 {
		return false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func requireUserID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

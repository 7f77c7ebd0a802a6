// Package jobs defines the task types and payloads flowing between the
// HTTP layer, the worker, and the flows themselves.
package jobs

import "github.com/flexflow/flexflow/internal/workout"

// Task type names. Each maps to one flow (or the periodic reminder job).
const (
	TaskGenerateWorkout = "workout:generate"
	TaskScheduleWorkout = "workout:schedule"
	TaskAdaptWorkout    = "workout:adapt"
	TaskMotivate        = "coach:motivate"
	TaskDailyReminders  = "reminders:daily"
)

// Queue names. The worker runs the ai queue at low concurrency (paid
// LLM calls) and the schedule queue higher (database work).
const (
	QueueAI       = "ai"
	QueueSchedule = "schedule"
)

// GeneratePayload triggers the generate flow. FlowID keys the durable
// step cache so a retried task resumes rather than redoing work.
type GeneratePayload struct {
	FlowID       string                   `json:"flow_id"`
	UserID       string                   `json:"user_id"`
	CoachID      string                   `json:"coach_id"`
	WorkoutType  workout.Type             `json:"workout_type,omitempty"`
	Duration     int                      `json:"duration,omitempty"`
	Equipment    []string                 `json:"equipment,omitempty"`
	FitnessLevel workout.FitnessLevel     `json:"fitness_level,omitempty"`
	Preferences  *workout.PreferenceHints `json:"preferences,omitempty"`
}

// SchedulePayload triggers the schedule flow.
type SchedulePayload struct {
	FlowID             string   `json:"flow_id"`
	UserID             string   `json:"user_id"`
	Frequency          int      `json:"frequency"` // workouts per week, 1-7
	PreferredTimeSlots []string `json:"preferred_time_slots,omitempty"`
	Duration           int      `json:"duration,omitempty"`
}

// AdaptPayload triggers the adapt flow.
type AdaptPayload struct {
	FlowID      string              `json:"flow_id"`
	UserID      string              `json:"user_id"`
	WorkoutID   string              `json:"workout_id"`
	Feedback    workout.Feedback    `json:"feedback"`
	Performance workout.Performance `json:"performance"`
}

// MotivatePayload triggers a one-off motivational message.
type MotivatePayload struct {
	FlowID       string `json:"flow_id"`
	UserID       string `json:"user_id"`
	CoachID      string `json:"coach_id"`
	Context      string `json:"context"`
	MessageType  string `json:"message_type"`
	ExerciseName string `json:"exercise_name,omitempty"`
}

package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/workout"
)

// Profile is the per-user fitness profile consumed by the flows.
type Profile struct {
	ID                       uuid.UUID
	Name                     string
	Email                    string
	FitnessLevel             workout.FitnessLevel
	PrimaryGoals             []string
	AvailableEquipment       []string
	PreferredWorkoutDuration int // minutes
	WorkoutFrequency         int // sessions per week
	AvailableTimeSlots       []string
	PreferredCoach           string
	AlternativeCoaches       []string
	InjuriesLimitations      string
	PreferredWorkoutTypes    []string
}

// PreferencesRow wraps a user's mutable preferences with its row identity.
type PreferencesRow struct {
	ProfileID   uuid.UUID
	Preferences workout.Preferences
	UpdatedAt   time.Time
}

// Plan is one generated workout plan.
type Plan struct {
	ID                uuid.UUID
	UserProfileID     uuid.UUID
	Name              string
	Description       string
	EstimatedDuration int
	WorkoutType       workout.Type
	DifficultyLevel   workout.FitnessLevel
	GeneratedByAI     bool
	AIModel           string
	CoachID           string
	FallbackUsed      bool
	Exercises         []workout.Exercise
	CreatedAt         time.Time
}

// ScheduledWorkout is one calendar entry tying a plan to a time slot.
type ScheduledWorkout struct {
	ID             uuid.UUID
	UserProfileID  uuid.UUID
	WorkoutPlanID  uuid.UUID
	ScheduledAt    time.Time
	Status         workout.Status
	TotalExercises int
}

// GenerationLog is one append-only audit record per AI call attempt.
type GenerationLog struct {
	RequestType      string // workout_generation, adaptation, motivation
	UserID           uuid.UUID
	CoachID          string
	Provider         string
	Model            string
	Prompt           string
	Response         string // empty on failure
	TokenUsage       int
	ResponseTimeMs   int64
	Success          bool
	ErrorMessage     string
	SchemaValidation bool
	ExerciseCount    int
	FallbackUsed     bool
}

// CoachMessage is one stored motivational message.
type CoachMessage struct {
	ID            uuid.UUID
	UserProfileID uuid.UUID
	CoachID       string
	Context       string
	MessageType   string
	Message       string
	CreatedAt     time.Time
}

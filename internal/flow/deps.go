package flow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flexflow/flexflow/internal/ai"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

// DataStore is what the flows need from persistence.
type DataStore interface {
	StepStore

	GetProfile(ctx context.Context, id uuid.UUID) (*store.Profile, error)
	GetPreferences(ctx context.Context, profileID uuid.UUID) (*store.PreferencesRow, error)
	UpsertPreferences(ctx context.Context, profileID uuid.UUID, prefs workout.Preferences) error
	InsertPlan(ctx context.Context, p *store.Plan) error
	ListRecentPlans(ctx context.Context, userID uuid.UUID, limit int) ([]store.Plan, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*store.ScheduledWorkout, error)
	ReplaceSchedule(ctx context.Context, userID uuid.UUID, after time.Time, entries []store.ScheduledWorkout) (int64, error)
	ListScheduledForDay(ctx context.Context, day time.Time) ([]store.ScheduledWorkout, error)
	AppendGenerationLog(ctx context.Context, entry store.GenerationLog) error
	InsertCoachMessage(ctx context.Context, m *store.CoachMessage) error
}

// Generator is the AI client surface the flows call.
type Generator interface {
	GenerateWorkout(ctx context.Context, systemPrompt, userPrompt string) ai.Response
	GenerateMotivation(ctx context.Context, systemPrompt, userPrompt string) ai.Response
	AdaptWorkout(ctx context.Context, systemPrompt, userPrompt string) ai.Response
	Model() string
}

// EventEmitter re-emits generate events (adapt regeneration, schedule
// coverage gaps).
type EventEmitter interface {
	EmitGenerate(p jobs.GeneratePayload) (string, error)
}

// MailSender delivers plan-ready and reminder emails. Optional: a nil
// sender disables notifications.
type MailSender interface {
	Send(to, subject, htmlBody string) error
}

// Flows bundles the dependencies shared by the three pipelines.
type Flows struct {
	Store DataStore
	AI    Generator
	Emit  EventEmitter
	Email MailSender
	Log   zerolog.Logger

	// Provider tag written to audit logs.
	Provider string

	// BaseURL is the public API address linked from notification
	// emails. Empty disables the link.
	BaseURL string
}

const defaultProvider = "anthropic"

func (f *Flows) provider() string {
	if f.Provider != "" {
		return f.Provider
	}
	return defaultProvider
}

func (f *Flows) run(flowID string) *Run {
	return NewRun(flowID, f.Store, f.Log)
}

// defaultPreferences is the record assumed for users who have not built
// one up yet.
func defaultPreferences() workout.Preferences {
	return workout.Preferences{
		Intensity:         "moderate",
		Variety:           "balanced",
		RestTime:          "standard",
		AvoidExercises:    []string{},
		FavoriteExercises: []string{},
		DailyReminders:    true,
		ProgressNotify:    true,
	}
}

// Package store gives the flows point reads and writes against Postgres,
// keyed by user id. No cross-row transactions are needed beyond the
// schedule replace, which runs delete-then-insert inside one tx so a
// retried flow step cannot double-book a week.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flexflow/flexflow/internal/workout"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetProfile fetches one user profile. Returns ErrNotFound for an
// unknown id; flows treat that as fatal.
func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), fitness_level,
		       primary_goals, available_equipment, preferred_workout_duration,
		       workout_frequency, available_time_slots, preferred_coach,
		       alternative_coaches, COALESCE(injuries_limitations, ''),
		       preferred_workout_types
		FROM user_profiles WHERE id = $1`, id)

	var p Profile
	var goals, equipment, slots, altCoaches, types []byte
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.FitnessLevel,
		&goals, &equipment, &p.PreferredWorkoutDuration,
		&p.WorkoutFrequency, &slots, &p.PreferredCoach,
		&altCoaches, &p.InjuriesLimitations, &types)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.PrimaryGoals = decodeStrings(goals)
	p.AvailableEquipment = decodeStrings(equipment)
	p.AvailableTimeSlots = decodeStrings(slots)
	p.AlternativeCoaches = decodeStrings(altCoaches)
	p.PreferredWorkoutTypes = decodeStrings(types)
	return &p, nil
}

// GetPreferences fetches the mutable preference record for a profile.
// Returns ErrNotFound when the user has none yet.
func (s *Store) GetPreferences(ctx context.Context, profileID uuid.UUID) (*PreferencesRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_profile_id, workout_intensity_preference,
		       exercise_variety_preference, rest_time_preferences,
		       avoid_exercises, favorite_exercises,
		       enable_daily_reminders, enable_progress_notifications,
		       COALESCE(reminder_time, ''), COALESCE(custom_instructions, ''),
		       updated_at
		FROM user_preferences WHERE user_profile_id = $1`, profileID)

	var pr PreferencesRow
	var avoid, favorite []byte
	err := row.Scan(&pr.ProfileID, &pr.Preferences.Intensity,
		&pr.Preferences.Variety, &pr.Preferences.RestTime,
		&avoid, &favorite,
		&pr.Preferences.DailyReminders, &pr.Preferences.ProgressNotify,
		&pr.Preferences.ReminderTime, &pr.Preferences.CustomInstructions,
		&pr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("preferences for profile %s: %w", profileID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	pr.Preferences.AvoidExercises = decodeStrings(avoid)
	pr.Preferences.FavoriteExercises = decodeStrings(favorite)
	return &pr, nil
}

// UpsertPreferences writes a full preference record, creating it on
// first use. The caller supplies the merged state (read-modify-write);
// concurrent adapt flows for one user are last-write-wins by design.
func (s *Store) UpsertPreferences(ctx context.Context, profileID uuid.UUID, prefs workout.Preferences) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_preferences (
			user_profile_id, workout_intensity_preference,
			exercise_variety_preference, rest_time_preferences,
			avoid_exercises, favorite_exercises,
			enable_daily_reminders, enable_progress_notifications,
			reminder_time, custom_instructions, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), now())
		ON CONFLICT (user_profile_id) DO UPDATE SET
			workout_intensity_preference = EXCLUDED.workout_intensity_preference,
			exercise_variety_preference = EXCLUDED.exercise_variety_preference,
			rest_time_preferences = EXCLUDED.rest_time_preferences,
			avoid_exercises = EXCLUDED.avoid_exercises,
			favorite_exercises = EXCLUDED.favorite_exercises,
			enable_daily_reminders = EXCLUDED.enable_daily_reminders,
			enable_progress_notifications = EXCLUDED.enable_progress_notifications,
			reminder_time = EXCLUDED.reminder_time,
			custom_instructions = EXCLUDED.custom_instructions,
			updated_at = now()`,
		profileID, prefs.Intensity, prefs.Variety, prefs.RestTime,
		encodeStrings(prefs.AvoidExercises), encodeStrings(prefs.FavoriteExercises),
		prefs.DailyReminders, prefs.ProgressNotify,
		prefs.ReminderTime, prefs.CustomInstructions)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// InsertPlan persists a generated plan and fills in its id and creation
// time.
func (s *Store) InsertPlan(ctx context.Context, p *Plan) error {
	exercises, err := json.Marshal(p.Exercises)
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO workout_plans (
			user_profile_id, name, description, estimated_duration,
			workout_type, difficulty_level, generated_by_ai, ai_model,
			coach_personality, fallback_used, exercises_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		p.UserProfileID, p.Name, p.Description, p.EstimatedDuration,
		p.WorkoutType, p.DifficultyLevel, p.GeneratedByAI, p.AIModel,
		p.CoachID, p.FallbackUsed, exercises)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// ListRecentPlans returns the user's newest plans, newest first.
func (s *Store) ListRecentPlans(ctx context.Context, userID uuid.UUID, limit int) ([]Plan, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_profile_id, name, COALESCE(description, ''),
		       estimated_duration, workout_type, difficulty_level,
		       generated_by_ai, COALESCE(ai_model, ''),
		       COALESCE(coach_personality, ''), fallback_used,
		       exercises_data, created_at
		FROM workout_plans
		WHERE user_profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var exercises []byte
		if err := rows.Scan(&p.ID, &p.UserProfileID, &p.Name, &p.Description,
			&p.EstimatedDuration, &p.WorkoutType, &p.DifficultyLevel,
			&p.GeneratedByAI, &p.AIModel, &p.CoachID, &p.FallbackUsed,
			&exercises, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if err := json.Unmarshal(exercises, &p.Exercises); err != nil {
			return nil, fmt.Errorf("decode plan exercises: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetWorkout fetches one scheduled workout by id.
func (s *Store) GetWorkout(ctx context.Context, id uuid.UUID) (*ScheduledWorkout, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_profile_id, workout_plan_id, scheduled_date, status, total_exercises
		FROM workouts WHERE id = $1`, id)

	var w ScheduledWorkout
	err := row.Scan(&w.ID, &w.UserProfileID, &w.WorkoutPlanID, &w.ScheduledAt, &w.Status, &w.TotalExercises)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return &w, nil
}

// ReplaceSchedule removes the user's future still-scheduled entries and
// inserts the new ones in a single transaction. Scoped to status
// SCHEDULED only, so in-progress and historical rows survive
// re-scheduling. Returns the number of deleted rows.
func (s *Store) ReplaceSchedule(ctx context.Context, userID uuid.UUID, after time.Time, entries []ScheduledWorkout) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM workouts
		WHERE user_profile_id = $1 AND scheduled_date >= $2 AND status = 'SCHEDULED'`,
		userID, after)
	if err != nil {
		return 0, fmt.Errorf("delete future schedule: %w", err)
	}

	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO workouts (user_profile_id, workout_plan_id, scheduled_date, status, total_exercises)
			VALUES ($1, $2, $3, $4, $5)`,
			e.UserProfileID, e.WorkoutPlanID, e.ScheduledAt, e.Status, e.TotalExercises); err != nil {
			return 0, fmt.Errorf("insert schedule entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit schedule tx: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListScheduledForDay returns all still-scheduled workouts falling on
// the given calendar day (UTC). Used by the daily reminder job.
func (s *Store) ListScheduledForDay(ctx context.Context, day time.Time) ([]ScheduledWorkout, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_profile_id, workout_plan_id, scheduled_date, status, total_exercises
		FROM workouts
		WHERE scheduled_date >= $1 AND scheduled_date < $2 AND status = 'SCHEDULED'
		ORDER BY scheduled_date`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list scheduled for day: %w", err)
	}
	defer rows.Close()

	var out []ScheduledWorkout
	for rows.Next() {
		var w ScheduledWorkout
		if err := rows.Scan(&w.ID, &w.UserProfileID, &w.WorkoutPlanID, &w.ScheduledAt, &w.Status, &w.TotalExercises); err != nil {
			return nil, fmt.Errorf("scan scheduled workout: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AppendGenerationLog writes one audit record. Append-only: rows are
// never updated.
func (s *Store) AppendGenerationLog(ctx context.Context, entry GenerationLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ai_generation_logs (
			request_type, user_id, coach_personality, ai_provider, model,
			request_prompt, response_content, token_usage, response_time_ms,
			success, error_message, schema_validation, exercise_count, fallback_used
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), $12, $13, $14)`,
		entry.RequestType, entry.UserID, entry.CoachID, entry.Provider, entry.Model,
		entry.Prompt, entry.Response, entry.TokenUsage, entry.ResponseTimeMs,
		entry.Success, entry.ErrorMessage, entry.SchemaValidation, entry.ExerciseCount,
		entry.FallbackUsed)
	if err != nil {
		return fmt.Errorf("append generation log: %w", err)
	}
	return nil
}

// InsertCoachMessage stores one motivational message.
func (s *Store) InsertCoachMessage(ctx context.Context, m *CoachMessage) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO coach_messages (user_profile_id, coach_personality, context, message_type, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.UserProfileID, m.CoachID, m.Context, m.MessageType, m.Message)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("insert coach message: %w", err)
	}
	return nil
}

// GetStepResult reads a cached flow step output.
func (s *Store) GetStepResult(ctx context.Context, flowID, step string) ([]byte, bool, error) {
	var result []byte
	err := s.pool.QueryRow(ctx, `
		SELECT result FROM flow_steps WHERE flow_id = $1 AND step_name = $2`,
		flowID, step).Scan(&result)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get step result: %w", err)
	}
	return result, true, nil
}

// PutStepResult caches a flow step output. First write wins: a retried
// step re-running concurrently cannot overwrite the recorded outcome.
func (s *Store) PutStepResult(ctx context.Context, flowID, step string, result []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO flow_steps (flow_id, step_name, result, completed_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (flow_id, step_name) DO NOTHING`,
		flowID, step, result)
	if err != nil {
		return fmt.Errorf("put step result: %w", err)
	}
	return nil
}

func encodeStrings(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return b
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

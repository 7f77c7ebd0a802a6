package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/ai"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/prompt"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

// GenerateResult is the terminal output of one generate flow instance.
// There is no hard-fail terminal state for AI problems: a parse or
// provider failure degrades to the fallback workout, flagged here and in
// the audit log.
type GenerateResult struct {
	PlanID        uuid.UUID `json:"planId"`
	ExerciseCount int       `json:"exerciseCount"`
	FallbackUsed  bool      `json:"fallbackUsed"`
	Message       string    `json:"message"`
}

type generateUserData struct {
	Profile     *store.Profile       `json:"profile"`
	Preferences *workout.Preferences `json:"preferences"` // nil when none stored
}

type generatePrompts struct {
	System string                   `json:"system"`
	User   string                   `json:"user"`
	Params workout.GenerationParams `json:"params"`
}

type generateParsed struct {
	Exercises      []workout.Exercise `json:"exercises"`
	FallbackUsed   bool               `json:"fallbackUsed"`
	SchemaValid    bool               `json:"schemaValid"`
	ResponseTimeMs int64              `json:"responseTimeMs"`
}

// Generate runs the generate pipeline:
// fetch-profile -> build-prompts -> call-ai -> parse-or-fallback ->
// persist-plan -> notify.
func (f *Flows) Generate(ctx context.Context, p jobs.GeneratePayload) (*GenerateResult, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}
	r := f.run(p.FlowID)

	userData, err := Step(ctx, r, "fetch-profile", func(ctx context.Context) (generateUserData, error) {
		profile, err := f.Store.GetProfile(ctx, userID)
		if err != nil {
			return generateUserData{}, err
		}
		var prefs *workout.Preferences
		row, err := f.Store.GetPreferences(ctx, userID)
		switch {
		case err == nil:
			prefs = &row.Preferences
		case errors.Is(err, store.ErrNotFound):
			// first-time user, defaults apply
		default:
			return generateUserData{}, err
		}
		return generateUserData{Profile: profile, Preferences: prefs}, nil
	})
	if err != nil {
		return nil, err
	}

	prompts, err := Step(ctx, r, "build-prompts", func(ctx context.Context) (generatePrompts, error) {
		params := buildGenerationParams(p, userData)
		return generatePrompts{
			System: prompt.WorkoutSystem(params.CoachID),
			User:   prompt.WorkoutUser(params),
			Params: params,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	aiResp, err := Step(ctx, r, "call-ai", func(ctx context.Context) (ai.Response, error) {
		return f.AI.GenerateWorkout(ctx, prompts.System, prompts.User), nil
	})
	if err != nil {
		return nil, err
	}

	parsed, err := Step(ctx, r, "parse-or-fallback", func(ctx context.Context) (generateParsed, error) {
		out := generateParsed{ResponseTimeMs: aiResp.ResponseTimeMs}

		var parseErr string
		if aiResp.Success {
			result := ai.ParseWorkout(aiResp.Content)
			if result.Success {
				out.Exercises = result.Data
				out.SchemaValid = true
				out.FallbackUsed = result.FallbackUsed
			} else {
				parseErr = result.Error
			}
		}
		if out.Exercises == nil {
			out.Exercises = ai.FallbackWorkout(prompts.Params.WorkoutType, prompts.Params.FitnessLevel)
			out.FallbackUsed = true
		}

		entry := store.GenerationLog{
			RequestType:      "workout_generation",
			UserID:           userID,
			CoachID:          prompts.Params.CoachID,
			Provider:         f.provider(),
			Model:            f.AI.Model(),
			Prompt:           prompts.System + "\n\nUSER REQUEST:\n" + prompts.User,
			Response:         aiResp.Content,
			ResponseTimeMs:   aiResp.ResponseTimeMs,
			Success:          aiResp.Success,
			SchemaValidation: out.SchemaValid,
			ExerciseCount:    len(out.Exercises),
			FallbackUsed:     out.FallbackUsed,
		}
		if aiResp.Usage != nil {
			entry.TokenUsage = aiResp.Usage.TotalTokens
		}
		switch {
		case !aiResp.Success:
			entry.ErrorMessage = aiResp.Error
		case parseErr != "":
			entry.ErrorMessage = parseErr
		}
		if err := f.Store.AppendGenerationLog(ctx, entry); err != nil {
			return generateParsed{}, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	plan, err := Step(ctx, r, "persist-plan", func(ctx context.Context) (store.Plan, error) {
		params := prompts.Params
		plan := store.Plan{
			UserProfileID:     userID,
			Name:              planName(params),
			Description:       fmt.Sprintf("AI-generated %d-minute %s workout by coach %s", params.Duration, params.WorkoutType, params.CoachID),
			EstimatedDuration: params.Duration,
			WorkoutType:       params.WorkoutType,
			DifficultyLevel:   params.FitnessLevel,
			GeneratedByAI:     true,
			AIModel:           f.AI.Model(),
			CoachID:           params.CoachID,
			FallbackUsed:      parsed.FallbackUsed,
			Exercises:         parsed.Exercises,
		}
		if err := f.Store.InsertPlan(ctx, &plan); err != nil {
			return store.Plan{}, err
		}
		return plan, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = Step(ctx, r, "notify", func(ctx context.Context) (bool, error) {
		if f.Email == nil || userData.Profile.Email == "" {
			return false, nil
		}
		prefs := userData.Preferences
		if prefs != nil && !prefs.ProgressNotify {
			return false, nil
		}
		html := fmt.Sprintf("<p>Your new %s plan %q is ready: %d exercises, about %d minutes.</p>",
			plan.WorkoutType, plan.Name, len(plan.Exercises), plan.EstimatedDuration)
		if f.BaseURL != "" {
			html += fmt.Sprintf("<p><a href=%q>View your plans</a></p>",
				fmt.Sprintf("%s/api/workouts/plans?userId=%s", f.BaseURL, p.UserID))
		}
		if err := f.Email.Send(userData.Profile.Email, "Your new workout plan is ready", html); err != nil {
			// notification is best-effort, never fails the flow
			f.Log.Warn().Err(err).Str("user_id", p.UserID).Msg("plan-ready email failed")
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		PlanID:        plan.ID,
		ExerciseCount: len(parsed.Exercises),
		FallbackUsed:  parsed.FallbackUsed,
		Message:       fmt.Sprintf("generated %s workout with %d exercises", plan.WorkoutType, len(parsed.Exercises)),
	}, nil
}

// buildGenerationParams merges event overrides over stored profile data.
func buildGenerationParams(p jobs.GeneratePayload, data generateUserData) workout.GenerationParams {
	profile := data.Profile

	params := workout.GenerationParams{
		CoachID:      p.CoachID,
		WorkoutType:  p.WorkoutType,
		Duration:     p.Duration,
		FitnessLevel: p.FitnessLevel,
		Equipment:    p.Equipment,
		PrimaryGoals: profile.PrimaryGoals,
		Limitations:  profile.InjuriesLimitations,
	}
	if params.CoachID == "" {
		params.CoachID = profile.PreferredCoach
	}
	if params.WorkoutType == "" {
		params.WorkoutType = workout.TypeStrength
	}
	if params.Duration <= 0 {
		params.Duration = profile.PreferredWorkoutDuration
	}
	if params.Duration <= 0 {
		params.Duration = 30
	}
	if params.FitnessLevel == "" {
		params.FitnessLevel = profile.FitnessLevel
	}
	if len(params.Equipment) == 0 {
		params.Equipment = profile.AvailableEquipment
	}

	if p.Preferences != nil {
		params.Preferences = *p.Preferences
	}
	if data.Preferences != nil {
		if params.Preferences.Intensity == "" {
			params.Preferences.Intensity = data.Preferences.Intensity
		}
		if params.Preferences.Variety == "" {
			params.Preferences.Variety = data.Preferences.Variety
		}
		if params.Preferences.RestTime == "" {
			params.Preferences.RestTime = data.Preferences.RestTime
		}
	}
	return params
}

func planName(params workout.GenerationParams) string {
	t := string(params.WorkoutType)
	if t != "" {
		t = strings.ToUpper(t[:1]) + t[1:]
	}
	return fmt.Sprintf("%s %s Workout", params.CoachID, t)
}

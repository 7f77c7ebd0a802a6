package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/adapt"
	"github.com/flexflow/flexflow/internal/ai"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/prompt"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

// AdaptResult is the terminal output of one adapt flow instance.
type AdaptResult struct {
	PreferencesChanged  bool             `json:"preferencesChanged"`
	IntensityAdjustment string           `json:"intensityAdjustment"`
	SuggestedDuration   int              `json:"suggestedDuration"`
	SuggestedCoach      string           `json:"suggestedCoach"`
	NextWorkoutType     workout.Type     `json:"nextWorkoutType"`
	RegenerationFlowID  string           `json:"regenerationFlowId,omitempty"`
	Analysis            workout.Analysis `json:"analysis"`
}

type adaptContext struct {
	Profile     *store.Profile          `json:"profile"`
	Workout     *store.ScheduledWorkout `json:"workout"`
	Preferences *workout.Preferences    `json:"preferences"` // nil when none stored
}

type adaptAnalysis struct {
	Analysis     workout.Analysis `json:"analysis"`
	FallbackUsed bool             `json:"fallbackUsed"`
}

type adaptAdjustment struct {
	Preferences workout.Preferences `json:"preferences"`
	Changed     bool                `json:"changed"`
}

type adaptRecommendations struct {
	SuggestedDuration int          `json:"suggestedDuration"`
	SuggestedCoach    string       `json:"suggestedCoach"`
	NextWorkoutType   workout.Type `json:"nextWorkoutType"`
	Regenerate        bool         `json:"regenerate"`
}

// Adapt runs the adapt pipeline:
// fetch-user-and-workout -> analyze-feedback ->
// apply-preference-adjustment -> compute-recommendations ->
// trigger-regeneration.
//
// Unlike generation, a missing user or workout is fatal: feedback for
// an unknown workout cannot be applied to anything.
func (f *Flows) Adapt(ctx context.Context, p jobs.AdaptPayload) (*AdaptResult, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}
	workoutID, err := uuid.Parse(p.WorkoutID)
	if err != nil {
		return nil, fmt.Errorf("invalid workout id %q: %w", p.WorkoutID, err)
	}
	r := f.run(p.FlowID)

	actx, err := Step(ctx, r, "fetch-user-and-workout", func(ctx context.Context) (adaptContext, error) {
		profile, err := f.Store.GetProfile(ctx, userID)
		if err != nil {
			return adaptContext{}, err
		}
		w, err := f.Store.GetWorkout(ctx, workoutID)
		if err != nil {
			return adaptContext{}, err
		}
		var prefs *workout.Preferences
		row, err := f.Store.GetPreferences(ctx, userID)
		switch {
		case err == nil:
			prefs = &row.Preferences
		case errors.Is(err, store.ErrNotFound):
		default:
			return adaptContext{}, err
		}
		return adaptContext{Profile: profile, Workout: w, Preferences: prefs}, nil
	})
	if err != nil {
		return nil, err
	}

	analysis, err := Step(ctx, r, "analyze-feedback", func(ctx context.Context) (adaptAnalysis, error) {
		coachID := actx.Profile.PreferredCoach
		system := prompt.AdaptationSystem(coachID)
		user := prompt.AdaptationUser(p.Feedback, p.Performance)

		resp := f.AI.AdaptWorkout(ctx, system, user)

		out := adaptAnalysis{}
		var parseErr string
		if resp.Success {
			result := ai.ParseAdaptation(resp.Content)
			if result.Success {
				out.Analysis = result.Data
			} else {
				parseErr = result.Error
			}
		}
		if out.Analysis.IntensityAdjustment == "" {
			out.Analysis = ai.FallbackAnalysis(p.Feedback, p.Performance)
			out.FallbackUsed = true
		}

		entry := store.GenerationLog{
			RequestType:      "adaptation",
			UserID:           userID,
			CoachID:          coachID,
			Provider:         f.provider(),
			Model:            f.AI.Model(),
			Prompt:           system + "\n\nUSER REQUEST:\n" + user,
			Response:         resp.Content,
			ResponseTimeMs:   resp.ResponseTimeMs,
			Success:          resp.Success && !out.FallbackUsed,
			SchemaValidation: !out.FallbackUsed,
			FallbackUsed:     out.FallbackUsed,
		}
		if resp.Usage != nil {
			entry.TokenUsage = resp.Usage.TotalTokens
		}
		switch {
		case !resp.Success:
			entry.ErrorMessage = resp.Error
		case parseErr != "":
			entry.ErrorMessage = parseErr
		}
		if err := f.Store.AppendGenerationLog(ctx, entry); err != nil {
			return adaptAnalysis{}, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	adjusted, err := Step(ctx, r, "apply-preference-adjustment", func(ctx context.Context) (adaptAdjustment, error) {
		current := defaultPreferences()
		if actx.Preferences != nil {
			current = *actx.Preferences
		}
		outcome := adapt.Adjust(current, p.Feedback, p.Performance, analysis.Analysis)
		if outcome.Changed {
			if err := f.Store.UpsertPreferences(ctx, userID, outcome.Preferences); err != nil {
				return adaptAdjustment{}, err
			}
		}
		return adaptAdjustment{Preferences: outcome.Preferences, Changed: outcome.Changed}, nil
	})
	if err != nil {
		return nil, err
	}

	recs, err := Step(ctx, r, "compute-recommendations", func(ctx context.Context) (adaptRecommendations, error) {
		return adaptRecommendations{
			SuggestedDuration: adapt.SuggestedDuration(p.Feedback, p.Performance, actx.Profile.PreferredWorkoutDuration),
			SuggestedCoach:    adapt.SuggestCoach(p.Feedback, actx.Profile.PreferredCoach, actx.Profile.AlternativeCoaches),
			NextWorkoutType:   adapt.NextWorkoutType(analysis.Analysis.FocusAreas, actx.Profile.PreferredWorkoutTypes),
			Regenerate:        adapt.ShouldRegenerate(p.Feedback, p.Performance),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	regenFlowID, err := Step(ctx, r, "trigger-regeneration", func(ctx context.Context) (string, error) {
		if !recs.Regenerate {
			return "", nil
		}
		hints := &workout.PreferenceHints{}
		switch analysis.Analysis.IntensityAdjustment {
		case "increase":
			hints.Intensity = "high"
		case "decrease":
			hints.Intensity = "low"
		}
		flowID, err := f.Emit.EmitGenerate(jobs.GeneratePayload{
			UserID:      p.UserID,
			CoachID:     recs.SuggestedCoach,
			WorkoutType: recs.NextWorkoutType,
			Duration:    recs.SuggestedDuration,
			Preferences: hints,
		})
		if err != nil {
			return "", fmt.Errorf("emit regeneration: %w", err)
		}
		return flowID, nil
	})
	if err != nil {
		return nil, err
	}

	return &AdaptResult{
		PreferencesChanged:  adjusted.Changed,
		IntensityAdjustment: analysis.Analysis.IntensityAdjustment,
		SuggestedDuration:   recs.SuggestedDuration,
		SuggestedCoach:      recs.SuggestedCoach,
		NextWorkoutType:     recs.NextWorkoutType,
		RegenerationFlowID:  regenFlowID,
		Analysis:            analysis.Analysis,
	}, nil
}

package flow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/ai"
	"github.com/flexflow/flexflow/internal/coach"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/prompt"
	"github.com/flexflow/flexflow/internal/store"
)

// MotivateResult is the terminal output of one motivate flow instance.
type MotivateResult struct {
	Message string `json:"message"`
	CoachID string `json:"coachId"`
}

// Motivate generates and stores one coach message for a user. The flow
// is short: fetch-profile -> call-ai -> store-message. A parse failure
// degrades to a canned line so the caller always gets something to show.
func (f *Flows) Motivate(ctx context.Context, p jobs.MotivatePayload) (*MotivateResult, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}
	r := f.run(p.FlowID)

	profile, err := Step(ctx, r, "fetch-profile", func(ctx context.Context) (*store.Profile, error) {
		return f.Store.GetProfile(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	coachID := p.CoachID
	if coachID == "" {
		coachID = profile.PreferredCoach
	}
	coachID = coach.Get(coachID).ID

	message, err := Step(ctx, r, "call-ai", func(ctx context.Context) (string, error) {
		system := prompt.MotivationSystem(coachID)
		user := prompt.MotivationUser(prompt.MotivationParams{
			CoachID:      coachID,
			Context:      prompt.MotivationContext(p.Context),
			MessageType:  prompt.MessageType(p.MessageType),
			ExerciseName: p.ExerciseName,
		})

		resp := f.AI.GenerateMotivation(ctx, system, user)

		msg := ""
		var parseErr string
		if resp.Success {
			result := ai.ParseMotivation(resp.Content)
			if result.Success {
				msg = result.Data
			} else {
				parseErr = result.Error
			}
		}
		fallback := msg == ""
		if fallback {
			msg = fmt.Sprintf("Keep going, %s. Every rep counts.", profile.Name)
		}

		entry := store.GenerationLog{
			RequestType:    "motivation",
			UserID:         userID,
			CoachID:        coachID,
			Provider:       f.provider(),
			Model:          f.AI.Model(),
			Prompt:         system + "\n\nUSER REQUEST:\n" + user,
			Response:       resp.Content,
			ResponseTimeMs: resp.ResponseTimeMs,
			Success:        resp.Success && !fallback,
			FallbackUsed:   fallback,
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
			return "", err
		}
		return msg, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = Step(ctx, r, "store-message", func(ctx context.Context) (uuid.UUID, error) {
		m := store.CoachMessage{
			UserProfileID: userID,
			CoachID:       coachID,
			Context:       p.Context,
			MessageType:   p.MessageType,
			Message:       message,
		}
		if err := f.Store.InsertCoachMessage(ctx, &m); err != nil {
			return uuid.Nil, err
		}
		return m.ID, nil
	})
	if err != nil {
		return nil, err
	}

	return &MotivateResult{Message: message, CoachID: coachID}, nil
}

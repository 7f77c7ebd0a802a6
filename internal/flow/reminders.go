package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/store"
)

// RemindersResult summarizes one daily reminder sweep.
type RemindersResult struct {
	Scheduled int `json:"scheduled"`
	Sent      int `json:"sent"`
}

// SendDailyReminders emails every user with a workout scheduled today
// who has daily reminders enabled. The job is periodic and idempotent
// at the day level, so it skips the durable step cache; a failed send
// is logged and does not abort the sweep.
func (f *Flows) SendDailyReminders(ctx context.Context, now time.Time) (*RemindersResult, error) {
	if f.Email == nil {
		return &RemindersResult{}, nil
	}

	entries, err := f.Store.ListScheduledForDay(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list scheduled workouts: %w", err)
	}

	result := &RemindersResult{Scheduled: len(entries)}
	seen := make(map[uuid.UUID]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.UserProfileID] {
			continue
		}
		seen[entry.UserProfileID] = true

		if !f.wantsReminder(ctx, entry.UserProfileID) {
			continue
		}
		profile, err := f.Store.GetProfile(ctx, entry.UserProfileID)
		if err != nil {
			f.Log.Warn().Err(err).Stringer("user_id", entry.UserProfileID).Msg("reminder profile lookup failed")
			continue
		}
		if profile.Email == "" {
			continue
		}

		html := fmt.Sprintf("<p>Hi %s, you have a workout scheduled today at %s. Let's get it done.</p>",
			profile.Name, entry.ScheduledAt.Format("15:04"))
		if err := f.Email.Send(profile.Email, "Workout reminder", html); err != nil {
			f.Log.Warn().Err(err).Stringer("user_id", entry.UserProfileID).Msg("reminder email failed")
			continue
		}
		result.Sent++
	}
	return result, nil
}

func (f *Flows) wantsReminder(ctx context.Context, userID uuid.UUID) bool {
	row, err := f.Store.GetPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return defaultPreferences().DailyReminders
	}
	if err != nil {
		f.Log.Warn().Err(err).Stringer("user_id", userID).Msg("reminder preferences lookup failed")
		return false
	}
	return row.Preferences.DailyReminders
}

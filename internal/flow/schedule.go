package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
	"github.com/flexflow/flexflow/internal/workout"
)

// scheduleWeeks is how far ahead the calendar is filled.
const scheduleWeeks = 4

// ScheduleResult is the terminal output of one schedule flow instance.
type ScheduleResult struct {
	Scheduled        int      `json:"scheduled"`
	Removed          int64    `json:"removed"`
	GenerationNeeds  int      `json:"generationNeeds"`
	TriggeredFlowIDs []string `json:"triggeredFlowIds,omitempty"`
	Message          string   `json:"message"`
}

// generationNeed is one detected plan-coverage gap. Priority 1 needs
// come from missing preferred workout types, priority 2 from coach
// variety.
type generationNeed struct {
	WorkoutType workout.Type `json:"workoutType"`
	CoachID     string       `json:"coachId"`
	Priority    int          `json:"priority"`
}

type scheduleSlots struct {
	Entries []store.ScheduledWorkout `json:"entries"`
}

// Schedule runs the schedule pipeline:
// fetch-profile -> fetch-existing-plans -> compute-calendar-slots ->
// replace-schedule -> assess-plan-gaps -> trigger-generate-events.
//
// With no plans on file nothing is inserted or deleted; the gap
// assessment still runs so generation gets kicked off and a retried
// schedule can fill the calendar.
func (f *Flows) Schedule(ctx context.Context, p jobs.SchedulePayload) (*ScheduleResult, error) {
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

	plans, err := Step(ctx, r, "fetch-existing-plans", func(ctx context.Context) ([]store.Plan, error) {
		return f.Store.ListRecentPlans(ctx, userID, 10)
	})
	if err != nil {
		return nil, err
	}

	frequency := p.Frequency
	if frequency <= 0 {
		frequency = profile.WorkoutFrequency
	}
	if frequency <= 0 {
		frequency = 3
	}
	slots := p.PreferredTimeSlots
	if len(slots) == 0 {
		slots = profile.AvailableTimeSlots
	}

	computed, err := Step(ctx, r, "compute-calendar-slots", func(ctx context.Context) (scheduleSlots, error) {
		return scheduleSlots{Entries: computeCalendarSlots(userID, plans, frequency, slots, time.Now())}, nil
	})
	if err != nil {
		return nil, err
	}

	removed, err := Step(ctx, r, "replace-schedule", func(ctx context.Context) (int64, error) {
		if len(computed.Entries) == 0 {
			return 0, nil
		}
		return f.Store.ReplaceSchedule(ctx, userID, time.Now(), computed.Entries)
	})
	if err != nil {
		return nil, err
	}

	needs, err := Step(ctx, r, "assess-plan-gaps", func(ctx context.Context) ([]generationNeed, error) {
		return assessPlanGaps(profile, plans), nil
	})
	if err != nil {
		return nil, err
	}

	triggered, err := Step(ctx, r, "trigger-generate-events", func(ctx context.Context) ([]string, error) {
		ids := make([]string, 0, len(needs))
		for _, need := range needs {
			flowID, err := f.Emit.EmitGenerate(jobs.GeneratePayload{
				UserID:      p.UserID,
				CoachID:     need.CoachID,
				WorkoutType: need.WorkoutType,
				Duration:    p.Duration,
			})
			if err != nil {
				return nil, fmt.Errorf("emit generate for %s: %w", need.WorkoutType, err)
			}
			ids = append(ids, flowID)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	return &ScheduleResult{
		Scheduled:        len(computed.Entries),
		Removed:          removed,
		GenerationNeeds:  len(needs),
		TriggeredFlowIDs: triggered,
		Message:          fmt.Sprintf("scheduled %d workouts over %d weeks", len(computed.Entries), scheduleWeeks),
	}, nil
}

// computeCalendarSlots spreads frequency workouts per week evenly over
// the next scheduleWeeks weeks, rotating through the available plans and
// preferred time slots. Slots already in the past (relative to now) are
// skipped. Returns nil when there are no plans to schedule.
func computeCalendarSlots(userID uuid.UUID, plans []store.Plan, frequency int, timeSlots []string, now time.Time) []store.ScheduledWorkout {
	if len(plans) == 0 {
		return nil
	}
	if frequency < 1 {
		frequency = 1
	}
	if frequency > 7 {
		frequency = 7
	}
	daysBetween := (7 + frequency - 1) / frequency

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	total := frequency * scheduleWeeks

	entries := make([]store.ScheduledWorkout, 0, total)
	for i := 0; i < total; i++ {
		hour, minute := 8, 0
		if len(timeSlots) > 0 {
			if h, m, ok := parseTimeSlot(timeSlots[i%len(timeSlots)]); ok {
				hour, minute = h, m
			}
		}
		day := start.AddDate(0, 0, i*daysBetween)
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
		if !at.After(now) {
			continue
		}
		plan := plans[i%len(plans)]
		entries = append(entries, store.ScheduledWorkout{
			UserProfileID:  userID,
			WorkoutPlanID:  plan.ID,
			ScheduledAt:    at,
			Status:         workout.StatusScheduled,
			TotalExercises: len(plan.Exercises),
		})
	}
	return entries
}

// parseTimeSlot reads an "HH:MM" slot.
func parseTimeSlot(slot string) (hour, minute int, ok bool) {
	parts := strings.SplitN(slot, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// assessPlanGaps reports what to generate when the user has fewer than
// three plans: first the preferred workout types with no plan yet, then
// up to two alternative coaches for variety.
func assessPlanGaps(profile *store.Profile, plans []store.Plan) []generationNeed {
	if len(plans) >= 3 {
		return nil
	}

	covered := make(map[workout.Type]bool, len(plans))
	for _, plan := range plans {
		covered[plan.WorkoutType] = true
	}

	preferred := make([]workout.Type, 0, len(profile.PreferredWorkoutTypes))
	for _, raw := range profile.PreferredWorkoutTypes {
		if t := workout.Type(raw); workout.ValidType(t) {
			preferred = append(preferred, t)
		}
	}
	if len(preferred) == 0 {
		preferred = []workout.Type{workout.TypeStrength, workout.TypeBodyweight}
	}

	var needs []generationNeed
	for _, t := range preferred {
		if !covered[t] {
			needs = append(needs, generationNeed{
				WorkoutType: t,
				CoachID:     profile.PreferredCoach,
				Priority:    1,
			})
		}
	}

	for i, coach := range profile.AlternativeCoaches {
		if i >= 2 {
			break
		}
		needs = append(needs, generationNeed{
			WorkoutType: preferred[0],
			CoachID:     coach,
			Priority:    2,
		})
	}
	return needs
}

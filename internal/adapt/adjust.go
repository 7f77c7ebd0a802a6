// Package adapt turns one feedback/performance cycle into directional
// preference changes. The rules are deterministic thresholds, no ML:
// repeated identical feedback converges after one application, so the
// adjustment is idempotent modulo deduplication.
package adapt

import (
	"sort"
	"strings"

	"github.com/flexflow/flexflow/internal/workout"
)

// Outcome is the result of applying one feedback cycle.
type Outcome struct {
	Preferences          workout.Preferences
	Changed              bool
	ShouldRegeneratePlan bool
}

// Adjust computes the updated preferences for one feedback cycle.
// The input preferences are not mutated; list merges deduplicate and
// never drop existing entries.
func Adjust(current workout.Preferences, fb workout.Feedback, perf workout.Performance, analysis workout.Analysis) Outcome {
	updated := clone(current)
	changed := false

	switch analysis.IntensityAdjustment {
	case "increase":
		changed = setString(&updated.Intensity, "high") || changed
	case "decrease":
		changed = setString(&updated.Intensity, "low") || changed
	}

	if fb.EnjoymentRating > 0 && fb.EnjoymentRating <= 2 {
		changed = setString(&updated.Variety, "high_variety") || changed
	}

	if perf.CompletionRatio() < 0.7 {
		changed = setString(&updated.RestTime, "extended") || changed
	}

	if fb.OverallRating <= 2 && fb.Comments != "" {
		merged, grew := mergeUnique(updated.AvoidExercises, ExercisesToAvoid(fb.Comments))
		updated.AvoidExercises = merged
		changed = grew || changed
	}

	if fb.OverallRating >= 4 && perf.CompletionRatio() > 0.8 {
		merged, grew := mergeUnique(updated.FavoriteExercises, favoriteExercises(perf.ExerciseFeedback))
		updated.FavoriteExercises = merged
		changed = grew || changed
	}

	return Outcome{
		Preferences:          updated,
		Changed:              changed,
		ShouldRegeneratePlan: ShouldRegenerate(fb, perf),
	}
}

// ShouldRegenerate gates plan regeneration on clearly bad sessions only:
// overall or enjoyment rating of 2 or below, or less than half the sets
// completed.
func ShouldRegenerate(fb workout.Feedback, perf workout.Performance) bool {
	return fb.OverallRating <= 2 || fb.EnjoymentRating <= 2 || perf.CompletionRatio() < 0.5
}

// SuggestedDuration shrinks or grows the next session length in
// 5-minute increments within [15,60].
func SuggestedDuration(fb workout.Feedback, perf workout.Performance, current int) int {
	if fb.LengthFeedback == "too_long" || perf.CompletionRatio() < 0.6 {
		return max(15, current-5)
	}
	if fb.LengthFeedback == "too_short" && fb.OverallRating >= 4 {
		return min(60, current+5)
	}
	return current
}

// SuggestCoach proposes the first configured alternative coach when the
// session rated below 4, falling back to the current coach. A single-slot
// rotation, not a ranking.
func SuggestCoach(fb workout.Feedback, currentCoach string, alternatives []string) string {
	if fb.OverallRating >= 4 {
		return currentCoach
	}
	if len(alternatives) > 0 {
		return alternatives[0]
	}
	return currentCoach
}

// NextWorkoutType picks the follow-up workout category from the analysis
// focus areas, defaulting to the user's first preferred type.
func NextWorkoutType(focusAreas []string, preferredTypes []string) workout.Type {
	for _, area := range focusAreas {
		switch area {
		case "recovery":
			return workout.TypeFlexibility
		case "cardio":
			return workout.TypeHIIT
		}
	}
	if len(preferredTypes) > 0 && workout.ValidType(workout.Type(preferredTypes[0])) {
		return workout.Type(preferredTypes[0])
	}
	return workout.TypeBodyweight
}

// ExercisesToAvoid extracts known exercise-name keywords from free-text
// comments. Deliberately a small fixed keyword set.
func ExercisesToAvoid(comments string) []string {
	lower := strings.ToLower(comments)

	var out []string
	if strings.Contains(lower, "burpee") {
		out = append(out, "Burpees")
	}
	if strings.Contains(lower, "push") && strings.Contains(lower, "up") {
		out = append(out, "Push-ups")
	}
	if strings.Contains(lower, "plank") {
		out = append(out, "Plank")
	}
	return out
}

func favoriteExercises(feedback map[string]int) []string {
	var out []string
	for name, rating := range feedback {
		if rating >= 4 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// mergeUnique appends additions not already present, preserving order.
// The second return reports whether the list grew.
func mergeUnique(existing, additions []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e] = true
	}
	merged := existing
	grew := false
	for _, a := range additions {
		if !seen[a] {
			seen[a] = true
			merged = append(merged, a)
			grew = true
		}
	}
	return merged, grew
}

func setString(target *string, value string) bool {
	if *target == value {
		return false
	}
	*target = value
	return true
}

func clone(p workout.Preferences) workout.Preferences {
	out := p
	out.AvoidExercises = append(p.AvoidExercises[:0:0], p.AvoidExercises...)
	out.FavoriteExercises = append(p.FavoriteExercises[:0:0], p.FavoriteExercises...)
	return out
}

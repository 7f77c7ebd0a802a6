package adapt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flexflow/flexflow/internal/workout"
)

func basePrefs() workout.Preferences {
	return workout.Preferences{
		Intensity:         "moderate",
		Variety:           "balanced",
		RestTime:          "standard",
		AvoidExercises:    []string{},
		FavoriteExercises: []string{},
	}
}

func TestAdjust_IntensityFollowsAnalysis(t *testing.T) {
	out := Adjust(basePrefs(),
		workout.Feedback{OverallRating: 4, EnjoymentRating: 4, Difficulty: "too_easy"},
		workout.Performance{CompletedSets: 12, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "increase"},
	)
	require.True(t, out.Changed)
	require.Equal(t, "high", out.Preferences.Intensity)

	out = Adjust(basePrefs(),
		workout.Feedback{OverallRating: 3, EnjoymentRating: 3, Difficulty: "too_hard"},
		workout.Performance{CompletedSets: 10, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "decrease"},
	)
	require.Equal(t, "low", out.Preferences.Intensity)
}

func TestAdjust_NoOpWhenNothingTriggers(t *testing.T) {
	out := Adjust(basePrefs(),
		workout.Feedback{OverallRating: 4, EnjoymentRating: 4, Difficulty: "just_right"},
		workout.Performance{CompletedSets: 9, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "maintain"},
	)
	require.False(t, out.Changed)
	require.Equal(t, basePrefs(), out.Preferences)
}

func TestAdjust_Idempotent(t *testing.T) {
	fb := workout.Feedback{OverallRating: 2, EnjoymentRating: 2, Difficulty: "too_hard", Comments: "burpees hurt my knees"}
	perf := workout.Performance{CompletedSets: 4, TotalSets: 12}
	analysis := workout.Analysis{IntensityAdjustment: "decrease"}

	first := Adjust(basePrefs(), fb, perf, analysis)
	require.True(t, first.Changed)
	require.Equal(t, "low", first.Preferences.Intensity)
	require.Equal(t, "high_variety", first.Preferences.Variety)
	require.Equal(t, "extended", first.Preferences.RestTime)
	require.Equal(t, []string{"Burpees"}, first.Preferences.AvoidExercises)

	second := Adjust(first.Preferences, fb, perf, analysis)
	require.False(t, second.Changed)
	require.Equal(t, first.Preferences, second.Preferences)
}

func TestAdjust_DoesNotMutateInput(t *testing.T) {
	current := basePrefs()
	current.AvoidExercises = []string{"Lunges"}

	_ = Adjust(current,
		workout.Feedback{OverallRating: 1, EnjoymentRating: 1, Comments: "hate burpees and planks"},
		workout.Performance{CompletedSets: 2, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "decrease"},
	)
	require.Equal(t, []string{"Lunges"}, current.AvoidExercises)
	require.Equal(t, "moderate", current.Intensity)
}

func TestAdjust_FavoritesOnGreatSessions(t *testing.T) {
	out := Adjust(basePrefs(),
		workout.Feedback{OverallRating: 5, EnjoymentRating: 5, Difficulty: "just_right"},
		workout.Performance{
			CompletedSets:    11,
			TotalSets:        12,
			ExerciseFeedback: map[string]int{"Squats": 5, "Push-ups": 4, "Plank": 2},
		},
		workout.Analysis{IntensityAdjustment: "maintain"},
	)
	require.True(t, out.Changed)
	require.Equal(t, []string{"Push-ups", "Squats"}, out.Preferences.FavoriteExercises)
}

func TestAdjust_LowEnjoymentRaisesVariety(t *testing.T) {
	out := Adjust(basePrefs(),
		workout.Feedback{OverallRating: 3, EnjoymentRating: 2, Difficulty: "just_right"},
		workout.Performance{CompletedSets: 10, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "maintain"},
	)
	require.Equal(t, "high_variety", out.Preferences.Variety)

	// unrated enjoyment must not count as low
	out = Adjust(basePrefs(),
		workout.Feedback{OverallRating: 3, Difficulty: "just_right"},
		workout.Performance{CompletedSets: 10, TotalSets: 12},
		workout.Analysis{IntensityAdjustment: "maintain"},
	)
	require.Equal(t, "balanced", out.Preferences.Variety)
}

func TestShouldRegenerate(t *testing.T) {
	require.True(t, ShouldRegenerate(workout.Feedback{OverallRating: 2, EnjoymentRating: 4}, workout.Performance{CompletedSets: 10, TotalSets: 12}))
	require.True(t, ShouldRegenerate(workout.Feedback{OverallRating: 4, EnjoymentRating: 2}, workout.Performance{CompletedSets: 10, TotalSets: 12}))
	require.True(t, ShouldRegenerate(workout.Feedback{OverallRating: 4, EnjoymentRating: 4}, workout.Performance{CompletedSets: 5, TotalSets: 12}))
	require.False(t, ShouldRegenerate(workout.Feedback{OverallRating: 4, EnjoymentRating: 4}, workout.Performance{CompletedSets: 10, TotalSets: 12}))
}

func TestSuggestedDuration(t *testing.T) {
	require.Equal(t, 25, SuggestedDuration(workout.Feedback{LengthFeedback: "too_long"}, workout.Performance{CompletedSets: 12, TotalSets: 12}, 30))
	require.Equal(t, 35, SuggestedDuration(workout.Feedback{LengthFeedback: "too_short", OverallRating: 5}, workout.Performance{CompletedSets: 12, TotalSets: 12}, 30))
	require.Equal(t, 30, SuggestedDuration(workout.Feedback{LengthFeedback: "too_short", OverallRating: 3}, workout.Performance{CompletedSets: 12, TotalSets: 12}, 30))
	require.Equal(t, 15, SuggestedDuration(workout.Feedback{LengthFeedback: "too_long"}, workout.Performance{CompletedSets: 12, TotalSets: 12}, 18))
	require.Equal(t, 60, SuggestedDuration(workout.Feedback{LengthFeedback: "too_short", OverallRating: 5}, workout.Performance{CompletedSets: 12, TotalSets: 12}, 58))
	// low completion shortens even without explicit length feedback
	require.Equal(t, 25, SuggestedDuration(workout.Feedback{}, workout.Performance{CompletedSets: 5, TotalSets: 12}, 30))
}

func TestSuggestCoach(t *testing.T) {
	require.Equal(t, "MAX", SuggestCoach(workout.Feedback{OverallRating: 5}, "MAX", []string{"SAGE"}))
	require.Equal(t, "SAGE", SuggestCoach(workout.Feedback{OverallRating: 3}, "MAX", []string{"SAGE", "KAI"}))
	require.Equal(t, "MAX", SuggestCoach(workout.Feedback{OverallRating: 3}, "MAX", nil))
}

func TestNextWorkoutType(t *testing.T) {
	require.Equal(t, workout.TypeFlexibility, NextWorkoutType([]string{"recovery", "form"}, []string{"strength"}))
	require.Equal(t, workout.TypeHIIT, NextWorkoutType([]string{"cardio"}, nil))
	require.Equal(t, workout.TypeStrength, NextWorkoutType([]string{"progression"}, []string{"strength"}))
	require.Equal(t, workout.TypeBodyweight, NextWorkoutType(nil, []string{"pilates"}))
	require.Equal(t, workout.TypeBodyweight, NextWorkoutType(nil, nil))
}

func TestExercisesToAvoid(t *testing.T) {
	require.Equal(t, []string{"Burpees"}, ExercisesToAvoid("I really hate BURPEES"))
	require.Equal(t, []string{"Push-ups", "Plank"}, ExercisesToAvoid("push ups hurt and the plank was too long"))
	require.Empty(t, ExercisesToAvoid("loved everything"))
}

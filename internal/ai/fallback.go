package ai

import "github.com/flexflow/flexflow/internal/workout"

// FallbackWorkout returns the deterministic, equipment-free exercise set
// used whenever AI generation or parsing fails. Same inputs always yield
// structurally identical output, so persisting it is idempotent.
func FallbackWorkout(workoutType workout.Type, level workout.FitnessLevel) []workout.Exercise {
	beginner := level == workout.LevelBeginner || level == ""

	pick := func(easy, hard string) string {
		if beginner {
			return easy
		}
		return hard
	}

	return []workout.Exercise{
		{
			ID:                   1,
			Name:                 "Push-ups",
			Sets:                 3,
			Reps:                 pick("5-10", "10-15"),
			RestTime:             60,
			Instructions:         "Keep your body in a straight line. Lower until chest nearly touches ground.",
			AlternativeExercises: []string{"Knee Push-ups", "Wall Push-ups", "Incline Push-ups"},
		},
		{
			ID:                   2,
			Name:                 "Bodyweight Squats",
			Sets:                 3,
			Reps:                 pick("10-15", "15-20"),
			RestTime:             60,
			Instructions:         "Lower down as if sitting back into a chair. Keep chest up.",
			AlternativeExercises: []string{"Chair Squats", "Sumo Squats", "Jump Squats"},
		},
		{
			ID:                   3,
			Name:                 "Plank Hold",
			Sets:                 3,
			Reps:                 pick("20-30s", "30-60s"),
			RestTime:             60,
			Instructions:         "Hold a straight line from head to heels. Keep core tight.",
			AlternativeExercises: []string{"Knee Plank", "Side Plank", "Plank Up-Downs"},
		},
		{
			ID:                   4,
			Name:                 "Mountain Climbers",
			Sets:                 3,
			Reps:                 pick("15-20", "20-30"),
			RestTime:             60,
			Instructions:         "Quickly alternate bringing knees to chest. Keep hips level.",
			AlternativeExercises: []string{"High Knees", "Running in Place", "Bear Crawls"},
		},
	}
}

// FallbackAnalysis is the rule-based substitute when the AI adaptation
// call fails. The heuristics mirror the preference engine's thresholds.
func FallbackAnalysis(fb workout.Feedback, perf workout.Performance) workout.Analysis {
	adjustment := "maintain"
	if fb.OverallRating <= 2 || fb.Difficulty == "too_hard" {
		adjustment = "decrease"
	} else if fb.OverallRating >= 4 && fb.Difficulty == "too_easy" {
		adjustment = "increase"
	}

	recs := make([]string, 0, 3)
	if fb.OverallRating <= 2 {
		recs = append(recs, "Focus on proper form over intensity")
	} else {
		recs = append(recs, "Great job! Let's keep building on this progress")
	}
	if perf.CompletionRatio() < 0.7 {
		recs = append(recs, "Consider longer rest periods between sets")
	} else {
		recs = append(recs, "Your completion rate looks good")
	}
	if fb.EnergyLevel <= 2 {
		recs = append(recs, "Plan workouts when you have more energy available")
	} else {
		recs = append(recs, "Your energy levels are supporting good workouts")
	}

	focus := []string{"progression", "variety"}
	if fb.Difficulty == "too_hard" {
		focus = []string{"recovery", "form"}
	}

	note := "Every workout is progress. Let's adjust and keep moving forward!"
	if fb.OverallRating >= 4 {
		note = "You're doing amazing! Keep up the great work!"
	}

	return workout.Analysis{
		Analysis:            "Based on your feedback, I'm adjusting your future workouts.",
		Recommendations:     recs,
		IntensityAdjustment: adjustment,
		FocusAreas:          focus,
		MotivationalNote:    note,
	}
}

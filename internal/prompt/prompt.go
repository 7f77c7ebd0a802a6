// Package prompt builds the system and user prompts for each coach
// personality and use case. Generation is pure: the same coach profile
// and parameters always produce the same prompt text, so audit log
// entries can be replayed against a known profile.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flexflow/flexflow/internal/coach"
	"github.com/flexflow/flexflow/internal/workout"
)

// MotivationContext tags where in a session a motivational message lands.
type MotivationContext string

const (
	ContextPreWorkout  MotivationContext = "pre_workout"
	ContextDuringSet   MotivationContext = "during_set"
	ContextRest        MotivationContext = "rest"
	ContextPostWorkout MotivationContext = "post_workout"
)

// MessageType tags what kind of message is wanted.
type MessageType string

const (
	TypeMotivation  MessageType = "motivation"
	TypeInstruction MessageType = "instruction"
	TypeFeedback    MessageType = "feedback"
	TypeCelebration MessageType = "celebration"
)

// MotivationParams describes one motivational message request.
type MotivationParams struct {
	CoachID      string
	Context      MotivationContext
	MessageType  MessageType
	ExerciseName string
}

// WorkoutSystem returns the system prompt for workout generation. It
// enumerates the personality and demands ONLY a JSON array matching the
// exercise shape.
func WorkoutSystem(coachID string) string {
	c := coach.Get(coachID)

	return fmt.Sprintf(`You are %s, an AI fitness coach with the following personality:
- Personality: %s
- Specialties: %s
- Description: %s
- Motivational Style: %s
- Workout Approach: %s

Your vocabulary includes words like: %s
Your catchphrases include: %s

CRITICAL REQUIREMENTS:
1. You MUST respond with ONLY a valid JSON array of exercise objects
2. DO NOT include any text before or after the JSON
3. Each exercise MUST have these exact fields: id, name, sets, reps, restTime, instructions, hasWeight, targetWeight?, weightUnit?, alternativeExercises
4. The "reps" field should be a string like "8-12" or "30s" for time-based exercises
5. Include 3-5 alternative exercises for each main exercise
6. Write instructions in your coaching voice and personality
7. Use your vocabulary and style throughout the instructions
8. Set appropriate rest times based on your coaching approach

Example format:
[
  {
    "id": 1,
    "name": "Exercise Name",
    "sets": 3,
    "reps": "8-12",
    "restTime": 120,
    "instructions": "Your coaching instructions here using your vocabulary and style",
    "hasWeight": true,
    "targetWeight": 135,
    "weightUnit": "lbs",
    "alternativeExercises": ["Alternative 1", "Alternative 2", "Alternative 3", "Alternative 4", "Alternative 5"]
  }
]`,
		c.Name, c.Personality, strings.Join(c.Specialties, ", "), c.Description,
		c.MotivationalStyle, c.WorkoutApproach,
		strings.Join(c.Vocabulary, ", "), strings.Join(c.CatchPhrases, ", "))
}

// WorkoutUser returns the user prompt embedding the fitness profile and
// preferences for one generation request.
func WorkoutUser(params workout.GenerationParams) string {
	c := coach.Get(params.CoachID)

	duration := params.Duration
	if duration <= 0 {
		duration = 30
	}
	workoutType := params.WorkoutType
	if workoutType == "" {
		workoutType = workout.TypeStrength
	}
	equipment := "Bodyweight only"
	if len(params.Equipment) > 0 {
		equipment = strings.Join(params.Equipment, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %d-minute %s workout for:\n\n", duration, workoutType)
	fmt.Fprintf(&b, "FITNESS PROFILE:\n- Level: %s\n- Goals: %s\n- Available Equipment: %s\n",
		params.FitnessLevel, strings.Join(params.PrimaryGoals, ", "), equipment)
	if params.Limitations != "" {
		fmt.Fprintf(&b, "- Limitations: %s\n", params.Limitations)
	}
	fmt.Fprintf(&b, "\nPREFERENCES:\n- Intensity: %s\n- Variety: %s\n- Rest Time: %s\n",
		orDefault(params.Preferences.Intensity, "moderate"),
		orDefault(params.Preferences.Variety, "balanced"),
		orDefault(params.Preferences.RestTime, "standard"))
	fmt.Fprintf(&b, `
Create a workout that:
1. Matches your coaching style (%s)
2. Uses your personality in all exercise instructions
3. Is appropriate for the fitness level and goals
4. Works with the available equipment
5. Follows your rest period style (%s)

Include 4-6 exercises total. Make each exercise instruction authentic to your voice as %s.`,
		c.WorkoutApproach, c.RestPeriodStyle, c.Name)

	return b.String()
}

// MotivationSystem returns the system prompt for motivational messages.
func MotivationSystem(coachID string) string {
	c := coach.Get(coachID)

	return fmt.Sprintf(`You are %s, an AI fitness coach. Generate a motivational message using your unique personality:

PERSONALITY:
- Style: %s
- Vocabulary: %s
- Catchphrases: %s
- Feedback Style: %s

REQUIREMENTS:
1. Keep messages under 100 words
2. Use your authentic voice and vocabulary
3. Be encouraging and supportive in your unique way
4. Match the context and message type requested
5. Include emojis that fit your personality
6. Make it feel personal and authentic

Return only the motivational message text, nothing else.`,
		c.Name, c.MotivationalStyle, strings.Join(c.Vocabulary, ", "),
		strings.Join(c.CatchPhrases, ", "), c.FeedbackStyle)
}

// MotivationUser returns the user prompt for one motivational message.
func MotivationUser(params MotivationParams) string {
	var contextDesc string
	switch params.Context {
	case ContextPreWorkout:
		contextDesc = "before starting their workout"
	case ContextDuringSet:
		contextDesc = "during an exercise set"
	case ContextRest:
		contextDesc = "during rest between sets"
	case ContextPostWorkout:
		contextDesc = "after completing their workout"
	}

	var typeDesc string
	switch params.MessageType {
	case TypeMotivation:
		typeDesc = "motivational encouragement"
	case TypeInstruction:
		typeDesc = "helpful instruction or tip"
	case TypeFeedback:
		typeDesc = "positive feedback on their performance"
	case TypeCelebration:
		typeDesc = "celebration of their achievement"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s message for a user %s.\n", typeDesc, contextDesc)
	if params.ExerciseName != "" {
		fmt.Fprintf(&b, "\nCurrent Exercise: %s\n", params.ExerciseName)
	}
	b.WriteString("\nMake it authentic to your coaching style and personality.")
	return b.String()
}

// AdaptationSystem returns the system prompt for adaptation analysis. The
// demanded output is a JSON object with fixed keys so ParseAdaptation can
// apply its lenient coercion.
func AdaptationSystem(coachID string) string {
	c := coach.Get(coachID)

	return fmt.Sprintf(`You are %s, an AI fitness coach. Based on user feedback and performance, adapt future workouts:

YOUR COACHING APPROACH:
- Style: %s
- Personality: %s
- Specialties: %s

ADAPTATION PRINCIPLES:
1. Analyze feedback for difficulty, enjoyment, and energy levels
2. Suggest specific modifications for future workouts
3. Maintain your coaching personality in recommendations
4. Focus on sustainable progression
5. Address any concerns or limitations mentioned

Respond with a JSON object containing:
{
  "analysis": "Your analysis of their feedback in your coaching voice",
  "recommendations": [
    "Specific recommendation 1",
    "Specific recommendation 2",
    "Specific recommendation 3"
  ],
  "intensityAdjustment": "increase|maintain|decrease",
  "focusAreas": ["area1", "area2"],
  "motivationalNote": "Personal encouragement in your voice"
}`,
		c.Name, c.WorkoutApproach, c.Personality, strings.Join(c.Specialties, ", "))
}

// AdaptationUser embeds the feedback and performance payload as readable
// key/value text.
func AdaptationUser(fb workout.Feedback, perf workout.Performance) string {
	comments := fb.Comments
	if comments == "" {
		comments = "No comments"
	}

	var b strings.Builder
	b.WriteString("Analyze this workout feedback and performance data:\n\n")
	fmt.Fprintf(&b, "FEEDBACK:\n- Overall Rating: %d/5\n- Energy Level: %d/5\n- Difficulty: %s\n- Enjoyment: %d/5\n- Comments: %q\n",
		fb.OverallRating, fb.EnergyLevel, fb.Difficulty, fb.EnjoymentRating, comments)
	fmt.Fprintf(&b, "\nPERFORMANCE:\n- Completed Sets: %d/%d\n", perf.CompletedSets, perf.TotalSets)
	if len(perf.ExerciseFeedback) > 0 {
		names := make([]string, 0, len(perf.ExerciseFeedback))
		for name := range perf.ExerciseFeedback {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("- Exercise Feedback:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  - %s: %d/5\n", name, perf.ExerciseFeedback[name])
		}
	}
	b.WriteString("\nProvide coaching analysis and recommendations for future workouts based on this data.")
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

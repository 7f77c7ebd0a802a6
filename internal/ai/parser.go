package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/flexflow/flexflow/internal/workout"
)

// Result is the tagged outcome every parse call returns. Callers always
// receive this shape; parsing never panics and never surfaces a raw
// unmarshal error to the data layer.
type Result[T any] struct {
	Success      bool
	Data         T
	Error        string
	FallbackUsed bool
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](format string, args ...any) Result[T] {
	return Result[T]{Error: fmt.Sprintf(format, args...)}
}

const (
	minExercises = 3
	maxExercises = 8
)

// ParseWorkout extracts and validates an exercise list from raw model
// output. JSON that will not parse falls through to a line-heuristic
// scan for bullet-listed exercise names; schema and business-rule
// violations are reported as typed failures.
func ParseWorkout(raw string) Result[[]workout.Exercise] {
	payload := extractJSON(raw)
	if payload == "" {
		return fail[[]workout.Exercise]("no JSON found in AI response")
	}

	var exercises []workout.Exercise
	if err := json.Unmarshal([]byte(payload), &exercises); err != nil {
		if r := parseWorkoutLines(raw); r.Success {
			r.FallbackUsed = true
			return r
		}
		return fail[[]workout.Exercise]("parse workout JSON: %v", err)
	}

	if err := validateWorkoutSchema(exercises); err != nil {
		return fail[[]workout.Exercise]("%v", err)
	}
	if err := validateWorkoutRules(exercises); err != nil {
		return fail[[]workout.Exercise]("%v", err)
	}

	return ok(exercises)
}

// ParseAdaptation reads an adaptation analysis object. It is deliberately
// more lenient than the workout parser: a missing intensity adjustment is
// coerced to "maintain" and malformed list fields become empty lists,
// because a degraded analysis is still usable downstream.
func ParseAdaptation(raw string) Result[workout.Analysis] {
	payload := extractJSON(raw)
	if payload == "" {
		return fail[workout.Analysis]("no JSON found in adaptation response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return fail[workout.Analysis]("parse adaptation JSON: %v", err)
	}

	for _, key := range []string{"analysis", "recommendations", "intensityAdjustment"} {
		if _, present := fields[key]; !present {
			return fail[workout.Analysis]("missing required field %q in adaptation response", key)
		}
	}

	analysis := workout.Analysis{
		Analysis:            stringField(fields, "analysis"),
		Recommendations:     stringListField(fields, "recommendations"),
		IntensityAdjustment: stringField(fields, "intensityAdjustment"),
		FocusAreas:          stringListField(fields, "focusAreas"),
		MotivationalNote:    stringField(fields, "motivationalNote"),
	}

	switch analysis.IntensityAdjustment {
	case "increase", "maintain", "decrease":
	default:
		analysis.IntensityAdjustment = "maintain"
	}

	return ok(analysis)
}

// ParseMotivation validates a short free-text coach message.
func ParseMotivation(raw string) Result[string] {
	cleaned := strings.TrimSpace(raw)
	if len(cleaned) < 10 {
		return fail[string]("motivation message too short")
	}
	if len(cleaned) > 500 {
		cut := 500
		// back up to a rune boundary so truncation never splits a rune
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		return ok(cleaned[:cut] + "...")
	}
	return ok(cleaned)
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, present := fields[key]; present {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func stringListField(fields map[string]json.RawMessage, key string) []string {
	var list []string
	if raw, present := fields[key]; present {
		if err := json.Unmarshal(raw, &list); err != nil {
			return []string{}
		}
	}
	if list == nil {
		return []string{}
	}
	return list
}

// extractJSON strips code fences and returns the first top-level JSON
// array or object substring found by bracket matching, or "".
func extractJSON(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	if s := matchBrackets(cleaned, '[', ']'); s != "" {
		return s
	}
	return matchBrackets(cleaned, '{', '}')
}

// matchBrackets finds the first balanced open..close span, ignoring
// brackets inside JSON string literals.
func matchBrackets(s string, open, shut byte) string {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case shut:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func validateWorkoutSchema(exercises []workout.Exercise) error {
	if len(exercises) < minExercises || len(exercises) > maxExercises {
		return fmt.Errorf("workout must have %d-%d exercises, got %d", minExercises, maxExercises, len(exercises))
	}
	for _, ex := range exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercise %d has no name", ex.ID)
		}
		if ex.Sets < 1 || ex.Sets > 10 {
			return fmt.Errorf("exercise %q: sets must be 1-10, got %d", ex.Name, ex.Sets)
		}
		if ex.Reps == "" {
			return fmt.Errorf("exercise %q: reps required", ex.Name)
		}
		if ex.RestTime < 10 || ex.RestTime > 600 {
			return fmt.Errorf("exercise %q: rest time must be 10-600 seconds, got %d", ex.Name, ex.RestTime)
		}
		if len(ex.Instructions) < 10 {
			return fmt.Errorf("exercise %q: instructions too short", ex.Name)
		}
		if ex.WeightUnit != "" && ex.WeightUnit != "lbs" && ex.WeightUnit != "kg" {
			return fmt.Errorf("exercise %q: weight unit must be lbs or kg, got %q", ex.Name, ex.WeightUnit)
		}
	}
	return nil
}

// validateWorkoutRules applies the business rules beyond the schema.
// It also defaults a missing weight unit to lbs when a target weight is
// present, mutating the slice in place.
func validateWorkoutRules(exercises []workout.Exercise) error {
	seen := make(map[int]bool, len(exercises))
	for i := range exercises {
		ex := &exercises[i]
		if seen[ex.ID] {
			return fmt.Errorf("duplicate exercise id %d", ex.ID)
		}
		seen[ex.ID] = true

		if ex.HasWeight && ex.TargetWeight <= 0 {
			return fmt.Errorf("exercise %q is marked as having weight but no target weight specified", ex.Name)
		}
		if ex.HasWeight && ex.WeightUnit == "" {
			ex.WeightUnit = "lbs"
		}
		if len(ex.AlternativeExercises) < 3 {
			return fmt.Errorf("exercise %q needs at least 3 alternative exercises", ex.Name)
		}
	}
	return nil
}

// parseWorkoutLines is the last-ditch scan for bullet-listed exercise
// names when the model answered in prose instead of JSON.
func parseWorkoutLines(raw string) Result[[]workout.Exercise] {
	var exercises []workout.Exercise
	id := 1
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
			continue
		}
		name := strings.TrimSpace(strings.TrimLeft(line, "-* "))
		if idx := strings.Index(name, " - "); idx > 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if len(name) <= 2 {
			continue
		}

		lower := strings.ToLower(name)
		hasWeight := strings.Contains(lower, "weight") || strings.Contains(lower, "dumbbell")
		ex := workout.Exercise{
			ID:                   id,
			Name:                 name,
			Sets:                 3,
			Reps:                 "8-12",
			RestTime:             60,
			Instructions:         fmt.Sprintf("Perform %s with proper form and control.", name),
			HasWeight:            hasWeight,
			WeightUnit:           "lbs",
			AlternativeExercises: []string{"Bodyweight variation", "Machine variation", "Band variation"},
		}
		if hasWeight {
			ex.TargetWeight = 25
		}
		exercises = append(exercises, ex)
		id++
	}

	if len(exercises) < minExercises {
		return fail[[]workout.Exercise]("line extraction found only %d exercises", len(exercises))
	}
	if len(exercises) > 6 {
		exercises = exercises[:6]
	}
	return ok(exercises)
}

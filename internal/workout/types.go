// Package workout defines the domain types shared by the generation,
// scheduling and adaptation flows.
package workout

// Type is one of the supported workout categories.
type Type string

const (
	TypeStrength    Type = "strength"
	TypeBodyweight  Type = "bodyweight"
	TypeFlexibility Type = "flexibility"
	TypeMobility    Type = "mobility"
	TypeCardio      Type = "cardio"
	TypeHIIT        Type = "hiit"
)

// ValidType reports whether t is a known workout type.
func ValidType(t Type) bool {
	switch t {
	case TypeStrength, TypeBodyweight, TypeFlexibility, TypeMobility, TypeCardio, TypeHIIT:
		return true
	}
	return false
}

// FitnessLevel mirrors the profile store's fitness_level enum.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "BEGINNER"
	LevelIntermediate FitnessLevel = "INTERMEDIATE"
	LevelAdvanced     FitnessLevel = "ADVANCED"
)

// ValidFitnessLevel reports whether l is a known fitness level.
func ValidFitnessLevel(l FitnessLevel) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ValidIntensity reports whether s is a known intensity preference.
func ValidIntensity(s string) bool {
	switch s {
	case "low", "moderate", "high":
		return true
	}
	return false
}

// ValidVariety reports whether s is a known variety preference.
func ValidVariety(s string) bool {
	switch s {
	case "repetitive", "balanced", "high_variety":
		return true
	}
	return false
}

// ValidRestPreference reports whether s is a known rest-time preference.
func ValidRestPreference(s string) bool {
	switch s {
	case "short", "standard", "extended":
		return true
	}
	return false
}

// Status tracks a scheduled workout through its lifecycle.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusSkipped    Status = "SKIPPED"
)

// Exercise is one planned movement inside a generated workout.
// Reps is a free-form string ("8-12", "30s") because time-based and
// rep-based exercises share the field.
type Exercise struct {
	ID                   int      `json:"id"`
	Name                 string   `json:"name"`
	Sets                 int      `json:"sets"`
	Reps                 string   `json:"reps"`
	RestTime             int      `json:"restTime"` // seconds
	Instructions         string   `json:"instructions"`
	HasWeight            bool     `json:"hasWeight"`
	TargetWeight         float64  `json:"targetWeight,omitempty"`
	WeightUnit           string   `json:"weightUnit,omitempty"` // "lbs" or "kg"
	AlternativeExercises []string `json:"alternativeExercises"`
}

// Preferences is the mutable AI-generation preference record for one user.
type Preferences struct {
	Intensity          string   `json:"intensity"` // low, moderate, high
	Variety            string   `json:"variety"`   // repetitive, balanced, high_variety
	RestTime           string   `json:"restTime"`  // short, standard, extended
	AvoidExercises     []string `json:"avoidExercises"`
	FavoriteExercises  []string `json:"favoriteExercises"`
	DailyReminders     bool     `json:"dailyReminders"`
	ProgressNotify     bool     `json:"progressNotify"`
	ReminderTime       string   `json:"reminderTime,omitempty"` // HH:MM
	CustomInstructions string   `json:"customInstructions,omitempty"`
}

// GenerationParams is the request-scoped input to workout generation.
// It is assembled per request from the event payload and the stored
// profile; only the resulting plan is persisted.
type GenerationParams struct {
	CoachID      string
	WorkoutType  Type
	Duration     int // minutes
	FitnessLevel FitnessLevel
	Equipment    []string
	PrimaryGoals []string
	Preferences  PreferenceHints
	Limitations  string
}

// PreferenceHints carries the intensity/variety/rest sub-record of
// GenerationParams. Empty fields fall back to stored preferences.
type PreferenceHints struct {
	Intensity string `json:"intensity,omitempty"`
	Variety   string `json:"variety,omitempty"`
	RestTime  string `json:"restTime,omitempty"`
}

// Feedback is one post-workout feedback submission.
type Feedback struct {
	OverallRating   int    `json:"overallRating"` // 1-5
	EnergyLevel     int    `json:"energyLevel"`   // 1-5
	Difficulty      string `json:"difficulty"`    // too_easy, just_right, too_hard
	EnjoymentRating int    `json:"enjoymentRating"`
	LengthFeedback  string `json:"lengthFeedback,omitempty"` // too_short, just_right, too_long
	Comments        string `json:"comments,omitempty"`
}

// Performance summarizes what the user actually completed.
type Performance struct {
	CompletedSets    int            `json:"completedSets"`
	TotalSets        int            `json:"totalSets"`
	ExerciseFeedback map[string]int `json:"exerciseFeedback,omitempty"` // exercise name -> rating 1-5
}

// CompletionRatio returns completed/total sets, or 0 when no sets were planned.
func (p Performance) CompletionRatio() float64 {
	if p.TotalSets <= 0 {
		return 0
	}
	return float64(p.CompletedSets) / float64(p.TotalSets)
}

// Analysis is the ephemeral output of analyzing one feedback/performance
// pair. It is consumed immediately by the preference adjustment engine
// and never persisted as its own entity.
type Analysis struct {
	Analysis            string   `json:"analysis"`
	Recommendations     []string `json:"recommendations"`
	IntensityAdjustment string   `json:"intensityAdjustment"` // increase, maintain, decrease
	FocusAreas          []string `json:"focusAreas"`
	MotivationalNote    string   `json:"motivationalNote"`
}

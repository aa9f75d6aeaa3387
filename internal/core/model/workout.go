package model

import "time"

// WorkoutSpec describes one selectable workout.
type WorkoutSpec struct {
	ID           string
	Title        string
	TotalSeconds int
}

// Validate reports whether the spec can drive a countdown.
func (spec WorkoutSpec) Validate() error {
	if spec.Title == "" {
		return &ValidationError{Field: "title", Message: "workout title is required"}
	}
	if spec.TotalSeconds <= 0 {
		return &ValidationError{Field: "totalSeconds", Message: "workout duration must be positive"}
	}
	return nil
}

// Duration returns the total countdown length.
func (spec WorkoutSpec) Duration() time.Duration {
	return time.Duration(spec.TotalSeconds) * time.Second
}

// DefaultCatalog returns the built-in workout list.
func DefaultCatalog() []WorkoutSpec {
	return []WorkoutSpec{
		{ID: "1", Title: "Push Workout", TotalSeconds: 30},
		{ID: "2", Title: "Pull Workout", TotalSeconds: 45},
		{ID: "3", Title: "Leg Workout", TotalSeconds: 60},
	}
}

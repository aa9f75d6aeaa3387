package session

import "time"

// Status represents the current countdown mode.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// EventType defines the type of session event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a session update for observers.
type Event struct {
	Type      EventType
	Status    Status
	Title     string
	Remaining int
	Progress  float64
	Message   string
	At        time.Time
}

// Snapshot is a point-in-time view of a session for rendering.
type Snapshot struct {
	Title     string
	Total     int
	Remaining int
	Status    Status
	Progress  float64
}

// Spoken prompts.
const (
	AnnounceStart  = "Starting workout"
	AnnounceResume = "Resuming workout"
	AnnouncePause  = "Paused"
	AnnounceReset  = "Workout reset"
)

// CompletionAnnouncement returns the prompt spoken when a countdown finishes.
func CompletionAnnouncement(title string) string {
	return title + " complete!"
}

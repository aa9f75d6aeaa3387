package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form used for completedAt (UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryRecord is one completed workout.
type HistoryRecord struct {
	Title       string
	CompletedAt time.Time
}

type historyRecordJSON struct {
	Title       string `json:"title"`
	CompletedAt string `json:"completedAt"`
}

// NewHistoryRecord builds a record normalized to the persisted precision.
func NewHistoryRecord(title string, completedAt time.Time) HistoryRecord {
	return HistoryRecord{
		Title:       title,
		CompletedAt: completedAt.UTC().Truncate(time.Millisecond),
	}
}

// MarshalJSON writes {"title", "completedAt"} with completedAt in TimestampLayout.
func (record HistoryRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyRecordJSON{
		Title:       record.Title,
		CompletedAt: record.CompletedAt.UTC().Format(TimestampLayout),
	})
}

// UnmarshalJSON accepts any RFC 3339 completedAt.
func (record *HistoryRecord) UnmarshalJSON(data []byte) error {
	var raw historyRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	completedAt, err := time.Parse(time.RFC3339Nano, raw.CompletedAt)
	if err != nil {
		return fmt.Errorf("parse completedAt: %w", err)
	}
	record.Title = raw.Title
	record.CompletedAt = completedAt.UTC()
	return nil
}

// HistorySummary aggregates completed workouts.
type HistorySummary struct {
	Total           int
	PerTitle        map[string]int
	LastCompletedAt time.Time
}

// Summarize folds records into a HistorySummary.
func Summarize(records []HistoryRecord) HistorySummary {
	summary := HistorySummary{PerTitle: make(map[string]int)}
	for _, record := range records {
		summary.Total++
		summary.PerTitle[record.Title]++
		if record.CompletedAt.After(summary.LastCompletedAt) {
			summary.LastCompletedAt = record.CompletedAt
		}
	}
	return summary
}

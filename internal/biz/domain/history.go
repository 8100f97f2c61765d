package domain

import (
	"sort"
	"time"
)

// HistoryAction is the user decision recorded for a notification
type HistoryAction string

const (
	ActionAccept HistoryAction = "aceptar"
	ActionOmit   HistoryAction = "omitir"
	ActionIgnore HistoryAction = "ignorar"
)

// HistoryEntry represents one immutable decision record
type HistoryEntry struct {
	ID        int64         `json:"-"`
	Action    HistoryAction `json:"accion"`
	Timestamp time.Time     `json:"ts"`
	Category  Category      `json:"tipo"`
	URL       string        `json:"url"`
}

// SortNewestFirst orders entries by timestamp descending, keeping insertion order for ties
func SortNewestFirst(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// CountSince counts entries at or after t
func CountSince(entries []HistoryEntry, t time.Time) int {
	n := 0
	for _, e := range entries {
		if !e.Timestamp.Before(t) {
			n++
		}
	}
	return n
}

// StartOfDay returns local midnight of the day containing t
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

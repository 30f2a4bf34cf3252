// Package store persists the bot's durable state: the append-only history
// log, the Telegram update cursor, yesterday's weather snapshot and the
// feed-rotation memory. Two backends exist, flat files and SQLite.
package store

import (
	"fmt"
	"time"

	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/weather"
)

// Actions recorded in the history log.
const (
	ActionWater = "water"
	ActionFeed  = "feed"
	ActionDone  = "done"
)

// HistoryEvent is one completed care action. Events are appended, never
// mutated or deleted.
type HistoryEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PlantID   string    `json:"plant_id"`
	PlantName string    `json:"plant_name"`
	Action    string    `json:"action"`
	Source    string    `json:"source"` // button payload or matched message text
}

// Store is the durable state contract shared by both backends. A corrupt
// or unreadable store reads as empty, never as a fatal error.
type Store interface {
	// AppendEvent records an event unless another event for the same plant
	// landed within the dedup window; a suppressed duplicate returns
	// stored=false with no error.
	AppendEvent(e HistoryEvent) (stored bool, err error)
	// ListEvents returns the most recent events, newest first.
	ListEvents(limit int) ([]HistoryEvent, error)

	// Cursor returns the highest processed update id, 0 when none.
	Cursor() (int64, error)
	// AdvanceCursor stores max(current, id); it never decreases.
	AdvanceCursor(id int64) error

	LastWeather() (snap weather.Snapshot, ok bool, err error)
	SaveWeather(snap weather.Snapshot) error

	FeedState(plantID string) (st schedule.FeedState, ok bool, err error)
	SetFeedState(plantID string, st schedule.FeedState) error

	Close() error
}

// Open builds the configured backend.
func Open(backend, stateDir, dbPath string, dedupWindow time.Duration) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(stateDir, dedupWindow)
	case "sqlite":
		return OpenSQLite(dbPath, dedupWindow)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

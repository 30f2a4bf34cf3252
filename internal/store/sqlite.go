package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/weather"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const (
	stateKeyCursor  = "update_id"
	stateKeyWeather = "last_weather"
)

// SQLiteStore is the database-backed Store. SQLite's journaling gives the
// atomic-write guarantee the file backend gets from rename.
type SQLiteStore struct {
	conn        *sql.DB
	dedupWindow time.Duration
}

func OpenSQLite(path string, dedupWindow time.Duration) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteStore{conn: conn, dedupWindow: dedupWindow}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) AppendEvent(e HistoryEvent) (bool, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var lastStr sql.NullString
	err := s.conn.QueryRow(
		"SELECT MAX(created_at) FROM events WHERE plant_id = ?", e.PlantID,
	).Scan(&lastStr)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking last event: %w", err)
	}
	if lastStr.Valid {
		last, err := time.Parse(time.RFC3339Nano, lastStr.String)
		if err == nil && e.Timestamp.Sub(last) < s.dedupWindow {
			return false, nil
		}
	}

	_, err = s.conn.Exec(
		"INSERT INTO events (id, plant_id, plant_name, action, source, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.PlantID, e.PlantName, e.Action, e.Source, e.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("appending event: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) ListEvents(limit int) ([]HistoryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(
		"SELECT id, plant_id, plant_name, action, source, created_at FROM events ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []HistoryEvent
	for rows.Next() {
		var e HistoryEvent
		var ts string
		if err := rows.Scan(&e.ID, &e.PlantID, &e.PlantName, &e.Action, &e.Source, &ts); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Cursor() (int64, error) {
	v, err := s.getState(stateKeyCursor)
	if err != nil || v == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil // corrupt value reads as empty
	}
	return id, nil
}

func (s *SQLiteStore) AdvanceCursor(id int64) error {
	cur, err := s.Cursor()
	if err != nil {
		return err
	}
	if id <= cur {
		return nil
	}
	return s.setState(stateKeyCursor, strconv.FormatInt(id, 10))
}

func (s *SQLiteStore) LastWeather() (snap weather.Snapshot, ok bool, err error) {
	v, err := s.getState(stateKeyWeather)
	if err != nil || v == "" {
		return snap, false, err
	}
	if err := json.Unmarshal([]byte(v), &snap); err != nil {
		return weather.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *SQLiteStore) SaveWeather(snap weather.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding weather: %w", err)
	}
	return s.setState(stateKeyWeather, string(b))
}

func (s *SQLiteStore) FeedState(plantID string) (schedule.FeedState, bool, error) {
	var st schedule.FeedState
	var ts string
	err := s.conn.QueryRow(
		"SELECT kind, last_fed FROM feed_rotation WHERE plant_id = ?", plantID,
	).Scan(&st.Kind, &ts)
	if err == sql.ErrNoRows {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("reading feed state: %w", err)
	}
	st.LastFed, _ = time.Parse(time.RFC3339Nano, ts)
	return st, true, nil
}

func (s *SQLiteStore) SetFeedState(plantID string, st schedule.FeedState) error {
	_, err := s.conn.Exec(
		`INSERT INTO feed_rotation (plant_id, kind, last_fed) VALUES (?, ?, ?)
		 ON CONFLICT(plant_id) DO UPDATE SET kind = excluded.kind, last_fed = excluded.last_fed`,
		plantID, st.Kind, st.LastFed.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving feed state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) getState(key string) (string, error) {
	var v string
	err := s.conn.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading state %q: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) setState(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing state %q: %w", key, err)
	}
	return nil
}

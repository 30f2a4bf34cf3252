package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/weather"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	historyFile  = "history.json"
	stateFile    = "telegram_state.json"
	weatherFile  = "last_weather.json"
	rotationFile = "rotation.json"
	lockFile     = ".gardenbot.lock"

	lockWait  = 2 * time.Second
	lockStale = time.Minute
)

// FileStore keeps everything in small JSON files under one directory.
// Every write goes to a temp file first and is renamed into place, and a
// lock file guards against two invocations mutating the same file at once.
type FileStore struct {
	dir         string
	dedupWindow time.Duration
}

func NewFileStore(dir string, dedupWindow time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	return &FileStore{dir: dir, dedupWindow: dedupWindow}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) AppendEvent(e HistoryEvent) (bool, error) {
	unlock, err := s.lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	events := s.readEvents()
	var latest time.Time
	for _, old := range events {
		if old.PlantID == e.PlantID && old.Timestamp.After(latest) {
			latest = old.Timestamp
		}
	}
	if !latest.IsZero() && e.Timestamp.Sub(latest) < s.dedupWindow {
		return false, nil // duplicate within the window, a no-op
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	events = append(events, e)

	b, err := json.Marshal(events)
	if err != nil {
		return false, fmt.Errorf("encoding history: %w", err)
	}
	if err := s.writeAtomic(historyFile, pretty.Pretty(b)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) ListEvents(limit int) ([]HistoryEvent, error) {
	events := s.readEvents()
	// newest first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// readEvents treats a missing or corrupt history file as an empty log.
func (s *FileStore) readEvents() []HistoryEvent {
	b, err := os.ReadFile(filepath.Join(s.dir, historyFile))
	if err != nil {
		return nil
	}
	var events []HistoryEvent
	if err := json.Unmarshal(b, &events); err != nil {
		return nil
	}
	return events
}

func (s *FileStore) Cursor() (int64, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		return 0, nil
	}
	return gjson.GetBytes(b, "update_id").Int(), nil
}

func (s *FileStore) AdvanceCursor(id int64) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	cur, _ := s.Cursor()
	if id <= cur {
		return nil
	}
	b, _ := os.ReadFile(filepath.Join(s.dir, stateFile))
	if !gjson.ValidBytes(b) {
		b = []byte("{}")
	}
	b, err = sjson.SetBytes(b, "update_id", id)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return s.writeAtomic(stateFile, b)
}

func (s *FileStore) LastWeather() (snap weather.Snapshot, ok bool, err error) {
	b, err := os.ReadFile(filepath.Join(s.dir, weatherFile))
	if err != nil {
		return snap, false, nil
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return weather.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *FileStore) SaveWeather(snap weather.Snapshot) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding weather: %w", err)
	}
	return s.writeAtomic(weatherFile, b)
}

func (s *FileStore) FeedState(plantID string) (schedule.FeedState, bool, error) {
	states := s.readRotation()
	st, ok := states[plantID]
	return st, ok, nil
}

func (s *FileStore) SetFeedState(plantID string, st schedule.FeedState) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	states := s.readRotation()
	states[plantID] = st
	b, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("encoding rotation state: %w", err)
	}
	return s.writeAtomic(rotationFile, pretty.Pretty(b))
}

func (s *FileStore) readRotation() map[string]schedule.FeedState {
	states := make(map[string]schedule.FeedState)
	b, err := os.ReadFile(filepath.Join(s.dir, rotationFile))
	if err != nil {
		return states
	}
	if err := json.Unmarshal(b, &states); err != nil {
		return make(map[string]schedule.FeedState)
	}
	return states
}

// writeAtomic writes to a temp file in the same directory and renames it
// into place, so a crash mid-write can never leave a truncated file.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", name, err)
	}
	return nil
}

// lock takes the directory lock file, waiting briefly for a concurrent
// invocation to finish. A lock older than lockStale is assumed abandoned
// (a killed run) and is stolen.
func (s *FileStore) lock() (func(), error) {
	path := filepath.Join(s.dir, lockFile)
	deadline := time.Now().Add(lockWait)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("taking lock: %w", err)
		}
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStale {
			os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("state dir %s is locked by another invocation", s.dir)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

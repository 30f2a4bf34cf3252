package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/weather"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func event(plantID string, ts time.Time) HistoryEvent {
	return HistoryEvent{
		Timestamp: ts,
		PlantID:   plantID,
		PlantName: "Plant " + plantID,
		Action:    ActionWater,
		Source:    "test",
	}
}

func TestAppendEvent_DedupWithinWindow(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	stored, err := s.AppendEvent(event("citrus", base))
	if err != nil || !stored {
		t.Fatalf("first append: stored=%v err=%v", stored, err)
	}
	stored, err = s.AppendEvent(event("citrus", base.Add(30*time.Second)))
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if stored {
		t.Error("duplicate within the window was stored")
	}

	events, _ := s.ListEvents(0)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 stored event, got %d", len(events))
	}
}

func TestAppendEvent_AfterWindowElapses(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	s.AppendEvent(event("citrus", base))
	stored, err := s.AppendEvent(event("citrus", base.Add(61*time.Second)))
	if err != nil || !stored {
		t.Fatalf("append after window: stored=%v err=%v", stored, err)
	}
	events, _ := s.ListEvents(0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestAppendEvent_DifferentPlantsNotDeduped(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	s.AppendEvent(event("citrus", base))
	stored, _ := s.AppendEvent(event("cactus", base.Add(time.Second)))
	if !stored {
		t.Error("event for a different plant was suppressed")
	}
}

func TestAppendEvent_AssignsID(t *testing.T) {
	s := newTestStore(t)
	s.AppendEvent(event("citrus", time.Now()))
	events, _ := s.ListEvents(0)
	if len(events) != 1 || events[0].ID == "" {
		t.Error("stored event has no id")
	}
}

func TestListEvents_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		s.AppendEvent(event(id, base.Add(time.Duration(i)*time.Hour)))
	}

	events, err := s.ListEvents(2)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].PlantID != "c" || events[1].PlantID != "b" {
		t.Errorf("wrong order: %s, %s", events[0].PlantID, events[1].PlantID)
	}
}

func TestCursor_Monotonic(t *testing.T) {
	s := newTestStore(t)

	if cur, _ := s.Cursor(); cur != 0 {
		t.Fatalf("fresh cursor = %d, want 0", cur)
	}
	if err := s.AdvanceCursor(100); err != nil {
		t.Fatalf("advancing: %v", err)
	}
	// out-of-order and repeated ids must not move it backwards
	s.AdvanceCursor(50)
	s.AdvanceCursor(100)
	if cur, _ := s.Cursor(); cur != 100 {
		t.Errorf("cursor = %d, want 100", cur)
	}
	s.AdvanceCursor(101)
	if cur, _ := s.Cursor(); cur != 101 {
		t.Errorf("cursor = %d, want 101", cur)
	}
}

func TestCorruptFilesReadAsEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{historyFile, stateFile, weatherFile, rotationFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := NewFileStore(dir, time.Minute)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	if events, err := s.ListEvents(0); err != nil || len(events) != 0 {
		t.Errorf("corrupt history: events=%v err=%v, want empty", events, err)
	}
	if cur, err := s.Cursor(); err != nil || cur != 0 {
		t.Errorf("corrupt state: cursor=%d err=%v, want 0", cur, err)
	}
	if _, ok, err := s.LastWeather(); err != nil || ok {
		t.Errorf("corrupt weather: ok=%v err=%v, want empty", ok, err)
	}

	// the store must still accept fresh writes
	if stored, err := s.AppendEvent(event("citrus", time.Now())); err != nil || !stored {
		t.Errorf("append over corrupt store: stored=%v err=%v", stored, err)
	}
	if err := s.AdvanceCursor(7); err != nil {
		t.Errorf("advance over corrupt state: %v", err)
	}
	if cur, _ := s.Cursor(); cur != 7 {
		t.Errorf("cursor after recovery = %d, want 7", cur)
	}
}

func TestWeatherRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok, _ := s.LastWeather(); ok {
		t.Fatal("fresh store claims to have a weather snapshot")
	}
	snap := weather.Snapshot{Temp: -7, Humidity: 81, Description: "снег", Wind: 4.5,
		ObservedAt: time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)}
	if err := s.SaveWeather(snap); err != nil {
		t.Fatalf("saving: %v", err)
	}
	got, ok, err := s.LastWeather()
	if err != nil || !ok {
		t.Fatalf("reading back: ok=%v err=%v", ok, err)
	}
	if got.Temp != snap.Temp || got.Description != snap.Description || got.Wind != snap.Wind {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestFeedStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok, _ := s.FeedState("adenium"); ok {
		t.Fatal("fresh store claims feed state")
	}
	st := schedule.FeedState{Kind: schedule.FeedAlternate,
		LastFed: time.Date(2026, time.May, 15, 9, 0, 0, 0, time.UTC)}
	if err := s.SetFeedState("adenium", st); err != nil {
		t.Fatalf("saving: %v", err)
	}
	got, ok, err := s.FeedState("adenium")
	if err != nil || !ok {
		t.Fatalf("reading back: ok=%v err=%v", ok, err)
	}
	if got.Kind != st.Kind || !got.LastFed.Equal(st.LastFed) {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestLock_SecondInvocationBlocked(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir, time.Minute)

	unlock, err := s.lock()
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer unlock()

	other, _ := NewFileStore(dir, time.Minute)
	if _, err := other.lock(); err == nil {
		t.Error("second invocation acquired the lock while the first held it")
	}
}

func TestWriteAtomic_NoTempLeftovers(t *testing.T) {
	s := newTestStore(t)
	s.AppendEvent(event("citrus", time.Now()))

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != historyFile {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

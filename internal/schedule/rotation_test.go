package schedule

import (
	"testing"
	"time"

	"github.com/marina/gardenbot/internal/plantdata"
)

var rotationPlant = plantdata.Plant{
	ID:         "adenium",
	Name:       "Адениум",
	WaterFreq:  14,
	FeedMonths: []int{4, 5, 6, 7},
	FeedNote:   "N-формула",
	FeedShort:  "PK-формула",
}

func TestChooseFeed_FirstFeedUsesAlternation(t *testing.T) {
	now := time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC)
	text, next, ok := ChooseFeed(&rotationPlant, FeedState{}, 14, 5, now)
	if !ok {
		t.Fatal("expected a feed on a qualifying day with no prior state")
	}
	// empty prior kind alternates to primary
	if next.Kind != FeedPrimary || text != "N-формула" {
		t.Errorf("got kind=%q text=%q, want primary formula", next.Kind, text)
	}
	if !next.LastFed.Equal(now) {
		t.Errorf("LastFed = %v, want %v", next.LastFed, now)
	}
}

func TestChooseFeed_AlternatesKinds(t *testing.T) {
	now := time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC)
	prev := FeedState{Kind: FeedPrimary, LastFed: now.Add(-20 * 24 * time.Hour)}
	text, next, ok := ChooseFeed(&rotationPlant, prev, 14, 5, now)
	if !ok {
		t.Fatal("expected a feed after the interval elapsed")
	}
	if next.Kind != FeedAlternate || text != "PK-формула" {
		t.Errorf("got kind=%q text=%q, want the alternate formula", next.Kind, text)
	}
}

func TestChooseFeed_RefusesWithinInterval(t *testing.T) {
	now := time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC)
	prev := FeedState{Kind: FeedPrimary, LastFed: now.Add(-3 * 24 * time.Hour)}
	if _, _, ok := ChooseFeed(&rotationPlant, prev, 14, 5, now); ok {
		t.Error("fed again before the feed interval elapsed")
	}
}

func TestChooseFeed_DormantBeforeEverything(t *testing.T) {
	p := rotationPlant
	p.Stage = "dormant"
	now := time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC)
	// ancient LastFed would otherwise qualify
	prev := FeedState{Kind: FeedPrimary, LastFed: now.Add(-365 * 24 * time.Hour)}
	if _, _, ok := ChooseFeed(&p, prev, 14, 5, now); ok {
		t.Error("dormant plant was fed")
	}
}

func TestChooseFeed_OutsideFeedMonths(t *testing.T) {
	now := time.Date(2026, time.January, 14, 9, 0, 0, 0, time.UTC)
	if _, _, ok := ChooseFeed(&rotationPlant, FeedState{}, 14, 0, now); ok {
		t.Error("fed outside the feed-month window")
	}
}

func TestChooseFeed_FrequentWatererStillGatedTo1stAnd15th(t *testing.T) {
	p := rotationPlant
	p.WaterFreq = 1
	now := time.Date(2026, time.June, 7, 9, 0, 0, 0, time.UTC)
	if _, _, ok := ChooseFeed(&p, FeedState{}, 7, 5, now); ok {
		t.Error("daily waterer fed on a day other than the 1st or 15th")
	}
}

func TestChooseFeed_NoAlternateFormulaStaysPrimary(t *testing.T) {
	p := rotationPlant
	p.FeedShort = ""
	now := time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC)
	prev := FeedState{Kind: FeedPrimary, LastFed: now.Add(-30 * 24 * time.Hour)}
	text, next, ok := ChooseFeed(&p, prev, 14, 5, now)
	if !ok {
		t.Fatal("expected a feed")
	}
	if next.Kind != FeedPrimary || text != "N-формула" {
		t.Errorf("got kind=%q text=%q, want to stay on the primary formula", next.Kind, text)
	}
}

func TestFeedInterval(t *testing.T) {
	cases := []struct {
		freq int
		want time.Duration
	}{
		{1, 7 * 24 * time.Hour},
		{3, 7 * 24 * time.Hour},
		{14, 14 * 24 * time.Hour},
		{21, 21 * 24 * time.Hour},
	}
	for _, tc := range cases {
		p := plantdata.Plant{WaterFreq: tc.freq}
		if got := FeedInterval(&p); got != tc.want {
			t.Errorf("freq=%d: interval=%v, want %v", tc.freq, got, tc.want)
		}
	}
}

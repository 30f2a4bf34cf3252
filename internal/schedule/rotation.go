package schedule

import (
	"time"

	"github.com/marina/gardenbot/internal/plantdata"
)

// Feed formula kinds for the rotation mode.
const (
	FeedPrimary   = "primary"   // the plant's feedNote formula
	FeedAlternate = "alternate" // the plant's feedShort formula
)

// FeedState is the per-plant rotation memory: which formula was given last
// and when.
type FeedState struct {
	Kind    string    `json:"kind"`
	LastFed time.Time `json:"last_fed"`
}

// FeedInterval is the minimum time between feeds in rotation mode:
// at least a week even for daily waterers, otherwise one watering cycle.
func FeedInterval(p *plantdata.Plant) time.Duration {
	days := p.WaterFreq
	if days < 7 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// ChooseFeed decides whether the plant gets fed today under rotation mode
// and, if so, with which instruction. The dormant check comes before any
// interval or rotation logic. A feed is refused until the plant's interval
// has elapsed since the last recorded feed; on a qualifying day the formula
// alternates. The returned state must be persisted by the caller only when
// ok is true.
func ChooseFeed(p *plantdata.Plant, prev FeedState, day, month int, now time.Time) (text string, next FeedState, ok bool) {
	if p.Dormant() || !p.FeedsIn(month) {
		return "", prev, false
	}
	if !(p.WaterFreq > 1 || day == 1 || day == 15) {
		return "", prev, false
	}
	if !prev.LastFed.IsZero() && now.Sub(prev.LastFed) < FeedInterval(p) {
		return "", prev, false
	}

	kind := FeedPrimary
	if prev.Kind == FeedPrimary {
		kind = FeedAlternate
	}
	text = formulaText(p, kind)
	if text == "" {
		// no alternate formula on record, stay on the primary one
		kind = FeedPrimary
		text = formulaText(p, kind)
	}
	if text == "" {
		return "", prev, false
	}
	return text, FeedState{Kind: kind, LastFed: now}, true
}

func formulaText(p *plantdata.Plant, kind string) string {
	if kind == FeedAlternate {
		return p.FeedShort
	}
	return p.FeedNote
}

package plantdata

import "strings"

// Plant is one validated row of the embedded plant database.
type Plant struct {
	ID          string `json:"id"`
	Name        string `json:"name"` // may hold a slash-separated alias group, e.g. "Лимоны / Цитрусы"
	Category    string `json:"category,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Location    string `json:"location,omitempty"`
	Light       string `json:"light,omitempty"`
	WaterFreq   int    `json:"waterFreq"`
	FeedMonths  []int  `json:"feedMonths,omitempty"` // month indices, 0=Jan .. 11=Dec
	FeedNote    string `json:"feedNote,omitempty"`
	FeedShort   string `json:"feedShort,omitempty"`
	PruneMonths []int  `json:"pruneMonths,omitempty"`
	RepotMonths []int  `json:"repotMonths,omitempty"`
	RepotNote   string `json:"repotNote,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

const StageDormant = "dormant"

// Dormant reports whether the plant is in its rest stage. Dormant plants
// are never fed, regardless of calendar or rotation state.
func (p *Plant) Dormant() bool {
	s := strings.TrimSpace(strings.ToLower(p.Stage))
	return s == StageDormant || s == "покой"
}

// FeedsIn reports whether month (0-11) is in the plant's feeding window.
func (p *Plant) FeedsIn(month int) bool {
	for _, m := range p.FeedMonths {
		if m == month {
			return true
		}
	}
	return false
}

// FeedText returns the feeding instruction to display: the short form when
// present, otherwise the full note, verbatim.
func (p *Plant) FeedText() string {
	if s := strings.TrimSpace(p.FeedShort); s != "" {
		return s
	}
	return strings.TrimSpace(p.FeedNote)
}

// Aliases expands the slash-separated name group plus the id into the
// variants the reply matcher searches for. The full name is included so a
// multi-word reply can beat any single alias.
func (p *Plant) Aliases() []string {
	out := []string{p.Name}
	for _, part := range strings.Split(p.Name, "/") {
		if part = strings.TrimSpace(part); part != "" && part != p.Name {
			out = append(out, part)
		}
	}
	if p.ID != "" {
		out = append(out, p.ID)
	}
	return out
}

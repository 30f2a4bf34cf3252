// Package match resolves user acknowledgements to plants: structured
// button payloads by exact id, free-form text by best name match.
package match

import (
	"strings"
	"unicode"

	"github.com/marina/gardenbot/internal/plantdata"
)

// Callback is a parsed button payload of the form "action:plant_id" or
// "action|plant_id".
type Callback struct {
	Action  string
	PlantID string
}

// ParseCallback splits a button payload. Payloads are checked before any
// fuzzy matching; an unknown shape returns ok=false.
func ParseCallback(payload string) (Callback, bool) {
	sep := strings.IndexAny(payload, ":|")
	if sep <= 0 || sep == len(payload)-1 {
		return Callback{}, false
	}
	action := payload[:sep]
	switch action {
	case "water", "feed", "done":
		return Callback{Action: action, PlantID: payload[sep+1:]}, true
	}
	return Callback{}, false
}

// FindByID returns the plant with the exact id.
func FindByID(id string, plants []plantdata.Plant) *plantdata.Plant {
	for i := range plants {
		if plants[i].ID == id {
			return &plants[i]
		}
	}
	return nil
}

// Match finds the plant best matching free-form chat text: the candidate
// whose normalized name/alias/id variant is a substring of the normalized
// text and is the longest such variant. Longest wins so a specific
// multi-word name beats a short generic word. Returns nil when nothing
// matches.
func Match(text string, plants []plantdata.Plant) *plantdata.Plant {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	var best *plantdata.Plant
	bestLen := 0
	for i := range plants {
		for _, alias := range plants[i].Aliases() {
			v := Normalize(alias)
			if v == "" || len(v) <= bestLen {
				continue
			}
			if strings.Contains(norm, v) {
				best = &plants[i]
				bestLen = len(v)
			}
		}
	}
	return best
}

// Normalize lowercases, folds ё to е, strips parenthetical asides, drops
// everything but letters, digits and spaces, and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = stripParens(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripParens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

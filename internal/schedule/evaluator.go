package schedule

import "github.com/marina/gardenbot/internal/plantdata"

// DueTasks is what a plant needs on a given day.
type DueTasks struct {
	Water    bool
	Feed     bool
	FeedText string // feeding instruction, verbatim from the record
}

// Evaluate applies the calendar rules to one plant for the given day of
// month (1-31) and month index (0-11).
//
// Watering: every day when waterFreq is 1, otherwise on days divisible by
// waterFreq. A zero or negative waterFreq means never due.
//
// Feeding: only in a listed feed month, and only when the plant either
// waters infrequently (waterFreq > 1) or the day is the 1st or 15th.
// Frequent waterers are deliberately not fed on every watering day.
// Dormant plants are never fed.
func Evaluate(p *plantdata.Plant, day, month int) DueTasks {
	var due DueTasks

	switch {
	case p.WaterFreq == 1:
		due.Water = true
	case p.WaterFreq > 1 && day%p.WaterFreq == 0:
		due.Water = true
	}

	if p.Dormant() || !p.FeedsIn(month) {
		return due
	}
	if p.WaterFreq > 1 || day == 1 || day == 15 {
		due.Feed = true
		due.FeedText = p.FeedText()
	}
	return due
}

package job

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/marina/gardenbot/internal/match"
	"github.com/marina/gardenbot/internal/plantdata"
	"github.com/marina/gardenbot/internal/store"
	"github.com/marina/gardenbot/internal/telegram"
)

// doneMarker is the word a free-text acknowledgement must contain before
// fuzzy matching runs.
const doneMarker = "сделано"

// Poll fetches pending chat updates, records acknowledgements in the
// history log and advances the cursor. Old updates are never reprocessed:
// the cursor moves past every update seen, matched or not.
func Poll(ctx context.Context, d Deps) error {
	offset, err := d.Store.Cursor()
	if err != nil {
		return fmt.Errorf("reading cursor: %w", err)
	}

	updates, err := d.Gateway.GetUpdates(ctx, offset)
	if err != nil {
		log.Printf("poll: fetching updates: %v", err)
		return nil // gateway hiccup, next run re-polls from the same offset
	}
	if len(updates) == 0 {
		return nil
	}

	plants, err := plantdata.Load(d.Cfg.DataFile, plantdata.DefaultArrayName)
	if err != nil {
		// acknowledgements cannot be resolved without the dataset; keep the
		// updates unconsumed for a later run with a fixed data file
		return fmt.Errorf("loading plants: %w", err)
	}

	last := offset
	for _, u := range updates {
		last = u.ID
		switch {
		case u.IsCallback():
			d.handleCallback(ctx, u, plants)
		case u.Text != "":
			d.handleText(u, plants)
		}
	}

	if err := d.Store.AdvanceCursor(last); err != nil {
		return fmt.Errorf("advancing cursor: %w", err)
	}
	return nil
}

func (d *Deps) handleCallback(ctx context.Context, u telegram.Update, plants []plantdata.Plant) {
	cb, ok := match.ParseCallback(u.CallbackData)
	if !ok {
		d.answer(ctx, u.CallbackID, "Принято 👍")
		return
	}
	p := match.FindByID(cb.PlantID, plants)
	if p == nil {
		log.Printf("poll: callback for unknown plant %q", cb.PlantID)
		d.answer(ctx, u.CallbackID, "Не нашёл растение 🤔")
		return
	}

	stored, err := d.Store.AppendEvent(store.HistoryEvent{
		Timestamp: d.now(),
		PlantID:   p.ID,
		PlantName: p.Name,
		Action:    cb.Action,
		Source:    "button:" + u.CallbackData,
	})
	if err != nil {
		log.Printf("poll: recording %s for %s: %v", cb.Action, p.ID, err)
		return
	}
	if !stored {
		d.answer(ctx, u.CallbackID, "Уже отмечено ✅")
		return
	}
	log.Printf("poll: recorded %s for %s (button)", cb.Action, p.ID)
	d.answer(ctx, u.CallbackID, "Записано ✅")
}

func (d *Deps) handleText(u telegram.Update, plants []plantdata.Plant) {
	text := strings.ToLower(u.Text)
	if !strings.Contains(text, doneMarker) {
		return
	}
	p := match.Match(text, plants)
	if p == nil {
		log.Printf("poll: no plant matched %q", u.Text)
		return
	}

	stored, err := d.Store.AppendEvent(store.HistoryEvent{
		Timestamp: d.now(),
		PlantID:   p.ID,
		PlantName: p.Name,
		Action:    store.ActionWater,
		Source:    "text:" + u.Text,
	})
	if err != nil {
		log.Printf("poll: recording water for %s: %v", p.ID, err)
		return
	}
	if stored {
		log.Printf("poll: recorded water for %s (matched %q)", p.ID, u.Text)
	}
}

func (d *Deps) answer(ctx context.Context, callbackID, text string) {
	if err := d.Gateway.AnswerCallback(ctx, callbackID, text); err != nil {
		log.Printf("poll: answering callback: %v", err)
	}
}

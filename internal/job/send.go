// Package job holds the two batch entrypoints: the morning plan sender
// and the acknowledgement poller. Each is a run-to-completion invocation;
// degraded collaborators (weather, advice, gateway) are logged and
// absorbed, only storage failures propagate.
package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/marina/gardenbot/config"
	"github.com/marina/gardenbot/internal/advice"
	"github.com/marina/gardenbot/internal/advisory"
	"github.com/marina/gardenbot/internal/plantdata"
	"github.com/marina/gardenbot/internal/report"
	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/store"
	"github.com/marina/gardenbot/internal/telegram"
	"github.com/marina/gardenbot/internal/weather"
)

// FeedMode values.
const (
	FeedCalendar = "calendar"
	FeedRotation = "rotation"
)

// Gateway is the slice of the chat client the jobs use.
// *telegram.Client implements it.
type Gateway interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID, text string, markup *telegram.ReplyMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// WeatherSource reports current outdoor conditions.
// *weather.Client implements it.
type WeatherSource interface {
	Current(ctx context.Context, city string) (weather.Snapshot, error)
}

type Deps struct {
	Cfg     *config.Config
	Gateway Gateway
	Weather WeatherSource
	Advice  advice.Client // nil when disabled
	Store   store.Store
	Now     func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Send builds today's plan and posts it to the chat.
func Send(ctx context.Context, d Deps) error {
	now := d.now()
	day, month := now.Day(), int(now.Month())-1

	snap := d.fetchWeather(ctx)

	plants, loadErr := plantdata.Load(d.Cfg.DataFile, plantdata.DefaultArrayName)
	if loadErr != nil {
		// never a partial plan: one error message replaces it
		log.Printf("send: loading plants: %v", loadErr)
		d.send(ctx, report.BuildError(loadErr), nil)
		return nil
	}

	deltaTemp, hasDelta := 0, false
	if last, ok, err := d.Store.LastWeather(); err != nil {
		return fmt.Errorf("reading weather snapshot: %w", err)
	} else if ok {
		deltaTemp = snap.Temp - last.Temp
		hasDelta = true
	}

	comment := advisory.Comment(snap, month, deltaTemp, hasDelta)

	items, pending, err := d.evaluate(plants, day, month, now)
	if err != nil {
		return err
	}

	plan := report.Build(now, snap, comment, items)
	text := plan.Text
	if d.Advice != nil {
		text += "\n\n" + d.advise(ctx, snap, plan.Count)
	}

	if err := d.Store.SaveWeather(snap); err != nil {
		return fmt.Errorf("saving weather snapshot: %w", err)
	}

	if !d.send(ctx, text, plan.Markup) {
		return nil // plan not delivered, keep rotation state untouched
	}
	for id, st := range pending {
		if err := d.Store.SetFeedState(id, st); err != nil {
			return fmt.Errorf("saving feed state for %s: %w", id, err)
		}
	}
	log.Printf("send: plan delivered, %d plant(s) due", plan.Count)
	return nil
}

// evaluate computes today's tasks per plant. In rotation mode the advanced
// feed states are returned separately and persisted only after a
// successful send.
func (d *Deps) evaluate(plants []plantdata.Plant, day, month int, now time.Time) ([]report.Item, map[string]schedule.FeedState, error) {
	items := make([]report.Item, 0, len(plants))
	pending := make(map[string]schedule.FeedState)

	for i := range plants {
		p := &plants[i]
		tasks := schedule.Evaluate(p, day, month)

		if d.Cfg.FeedMode == FeedRotation {
			tasks.Feed, tasks.FeedText = false, ""
			prev, _, err := d.Store.FeedState(p.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("reading feed state for %s: %w", p.ID, err)
			}
			if text, next, ok := schedule.ChooseFeed(p, prev, day, month, now); ok {
				tasks.Feed, tasks.FeedText = true, text
				pending[p.ID] = next
			}
		}

		items = append(items, report.Item{Plant: *p, Tasks: tasks})
	}
	return items, pending, nil
}

func (d *Deps) fetchWeather(ctx context.Context) weather.Snapshot {
	snap, err := d.Weather.Current(ctx, d.Cfg.CityName)
	if err != nil {
		log.Printf("send: weather degraded to default: %v", err)
		return weather.Neutral()
	}
	return snap
}

// advise asks the configured LLM for one extra tip, falling back to the
// static line on any failure.
func (d *Deps) advise(ctx context.Context, snap weather.Snapshot, due int) string {
	prompt := fmt.Sprintf(
		"Ты помощник по уходу за комнатными растениями. Погода: %d°C, влажность %d%%, %s, ветер %g м/с. Сегодня к поливу %d растений. Дай один короткий практичный совет (1 предложение, по-русски).",
		snap.Temp, snap.Humidity, snap.Description, snap.Wind, due,
	)
	tip, err := d.Advice.Advise(ctx, prompt)
	if err != nil {
		log.Printf("send: advice degraded to fallback: %v", err)
		return advice.Fallback
	}
	return "💡 " + tip
}

// send posts the message and reports delivery; gateway failures are logged,
// never fatal.
func (d *Deps) send(ctx context.Context, text string, markup *telegram.ReplyMarkup) bool {
	if err := d.Gateway.SendMessage(ctx, d.Cfg.TelegramChatID, text, markup); err != nil {
		log.Printf("send: delivering message: %v", err)
		return false
	}
	return true
}

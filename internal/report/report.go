// Package report renders the daily plan message posted to the chat.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/marina/gardenbot/internal/advisory"
	"github.com/marina/gardenbot/internal/plantdata"
	"github.com/marina/gardenbot/internal/schedule"
	"github.com/marina/gardenbot/internal/telegram"
	"github.com/marina/gardenbot/internal/weather"
	"github.com/ncruces/go-strftime"
)

const (
	headerRule = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"
	itemRule   = "┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈"
)

// Item is one plant that is due today together with its tasks.
type Item struct {
	Plant plantdata.Plant
	Tasks schedule.DueTasks
}

// Plan is the rendered message plus its inline keyboard.
type Plan struct {
	Text   string
	Markup *telegram.ReplyMarkup
	Count  int // plants due for watering
}

// Build renders the plan for today. comment is the advisory line, empty
// when no trigger fired.
func Build(now time.Time, w weather.Snapshot, comment string, items []Item) Plan {
	var b strings.Builder

	fmt.Fprintf(&b, "🌿 *ПЛАН САДА — %s*\n", strftime.Format("%d.%m", now))
	fmt.Fprintf(&b, "🌡 Улица: %d°C | 💧 %d%% | %s | 💨 %g м/с\n\n",
		w.Temp, w.Humidity, capitalize(w.Description), w.Wind)

	if comment != "" {
		fmt.Fprintf(&b, "🤖 %s\n", comment)
	} else {
		b.WriteString("🤖 Погодные корректировки не требуются.\n")
	}
	b.WriteString(headerRule + "\n")

	markup := &telegram.ReplyMarkup{}
	count := 0
	for _, it := range items {
		if !it.Tasks.Water {
			continue
		}
		count++
		fmt.Fprintf(&b, "📍 *%s*\n", strings.ToUpper(it.Plant.Name))

		line := "💧 Полив"
		if it.Tasks.Feed {
			feed := it.Tasks.FeedText
			if feed == "" {
				feed = "Удобрение"
			}
			line += fmt.Sprintf(" + 🧪 *%s*", feed)
		}
		b.WriteString(line + "\n")

		if hint := advisory.StageHint(it.Plant.Stage); hint != "" {
			fmt.Fprintf(&b, "└ _%s_\n", hint)
		}
		if it.Plant.Warning != "" {
			warn := strings.ReplaceAll(it.Plant.Warning, "Мороз за окном! ", "❄️ ")
			fmt.Fprintf(&b, "└ _%s_\n", warn)
		}
		b.WriteString(itemRule + "\n")

		markup.InlineKeyboard = append(markup.InlineKeyboard, []telegram.Button{{
			Text:         "✅ " + it.Plant.Name,
			CallbackData: "done:" + it.Plant.ID,
		}})
	}

	if count > 0 {
		fmt.Fprintf(&b, "\n✅ *Всего к поливу: %d*", count)
	} else {
		b.WriteString("\n🌿 *Сегодня по расписанию только отдых!*")
		markup = nil
	}

	return Plan{Text: b.String(), Markup: markup, Count: count}
}

// BuildError renders the single message sent in place of the plan when the
// plant database is unavailable. Never a partial plan.
func BuildError(err error) string {
	return fmt.Sprintf("Ошибка разбора базы растений: %v", err)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

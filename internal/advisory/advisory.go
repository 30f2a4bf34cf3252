// Package advisory derives the one-line weather caution for the daily plan.
// Everything here is pure: callers fetch the weather and yesterday's
// temperature themselves and pass both in.
package advisory

import (
	"fmt"
	"strings"

	"github.com/marina/gardenbot/internal/weather"
)

// Trigger thresholds. The wording below is Moscow-calibrated; the bucket
// boundaries and the severity ordering inside a season are the contract.
const (
	rapidDelta  = 8  // °C day-over-day swing
	stormWind   = 12 // m/s, year-round
	strongWind  = 9  // m/s, seasonal
	severeFrost = -15
	frost       = -10
)

// Comment returns the single advisory line for today, or "" when no
// trigger fires. Checks run in strict priority order and the first match
// wins: rapid temperature swing, then storm-level wind, then the season
// bucket for the month (Dec-Feb, Mar-May, Jun-Aug, Sep-Nov) with the more
// severe condition first.
//
// hasDelta reports whether deltaTemp is known; on the very first run there
// is no stored snapshot to diff against.
func Comment(w weather.Snapshot, month int, deltaTemp int, hasDelta bool) string {
	if hasDelta && abs(deltaTemp) >= rapidDelta {
		if deltaTemp > 0 {
			return fmt.Sprintf("📈 Резкое потепление (+%d°). Не форсируй изменения ухода за один день.", abs(deltaTemp))
		}
		return fmt.Sprintf("📉 Резкое похолодание (−%d°). Без резких действий, проветривание аккуратно.", abs(deltaTemp))
	}

	if w.Wind >= stormWind {
		return "🌬 Очень сильный ветер. Проветривай коротко, избегай сквозняка у окон."
	}

	temp := w.Temp
	switch month {
	case 11, 0, 1: // winter
		if temp <= severeFrost {
			return "🥶 Сильный мороз. Окна открывай кратко; избегай холодного стекла у растений."
		}
		if temp <= frost {
			return "❄️ Мороз. Проветривание делай коротко, без сквозняка."
		}
		if w.Wind >= strongWind {
			return "🌬 Ветер. При проветривании избегай прямого потока на подоконник."
		}
	case 2, 3, 4: // spring
		if (month == 2 || month == 3) && temp <= -2 {
			return "⚠️ Возврат холода. Не форсируй сезонные изменения ухода."
		}
		if month == 2 && temp >= 12 {
			return "🌤 Раннее потепление. Переход к весеннему режиму делай постепенно."
		}
		if (month == 3 || month == 4) && temp >= 20 {
			return "🌤 Резкое тепло. Не меняй уход резко: делай переход плавно."
		}
		if w.Wind >= strongWind {
			return "🌬 Ветреный день. Проветривай аккуратно, избегай сквозняка."
		}
	case 5, 6, 7: // summer
		if temp >= 32 {
			return "☀️ Сильная жара. Проверяй пересыхание субстрата чаще обычного."
		}
		if temp >= 28 {
			return "☀️ Жарко. Полив ориентируй по субстрату, не по календарю."
		}
	case 8, 9, 10: // autumn
		if month == 8 && temp <= 6 {
			return "🍂 Раннее похолодание. Переход к более спокойному режиму делай постепенно."
		}
		if (month == 9 || month == 10) && temp <= 0 {
			return "🍂 Первый минус. Сокращай активные действия по уходу постепенно."
		}
		if w.Wind >= strongWind {
			return "🌬 Ветер. Проветривай коротко, избегай сквозняка у окон."
		}
	}
	return ""
}

// StageHint maps a plant's growth stage to its plan line, or "" for an
// unknown or empty stage.
func StageHint(stage string) string {
	switch strings.TrimSpace(strings.ToLower(stage)) {
	case "bloom", "цветение":
		return "🌸 Режим: цветение — PK (K>N) слабой дозой, без гуматов/янтарки."
	case "foliage", "листва", "рост":
		return "🌿 Режим: листва — умеренный рост, без резких стимуляций."
	case "recover", "восстановление":
		return "♻️ Режим: восстановление — без стимуляторов/PK, приоритет корни."
	case "dormant", "покой":
		return "🛌 Режим: покой — только вода, без подкормок."
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

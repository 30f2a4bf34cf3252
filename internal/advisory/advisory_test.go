package advisory

import (
	"strings"
	"testing"

	"github.com/marina/gardenbot/internal/weather"
)

func TestComment_RapidChangeBeatsEverything(t *testing.T) {
	// severe winter frost alone would trigger the frost message, but the
	// swing check runs first
	w := weather.Snapshot{Temp: -20, Wind: 15}
	got := Comment(w, 0, 10, true)
	if !strings.Contains(got, "Резкое потепление") {
		t.Errorf("got %q, want the rapid-warming message", got)
	}
}

func TestComment_RapidCooling(t *testing.T) {
	got := Comment(weather.Snapshot{Temp: 5}, 5, -9, true)
	if !strings.Contains(got, "Резкое похолодание") {
		t.Errorf("got %q, want the rapid-cooling message", got)
	}
}

func TestComment_DeltaBelowThresholdIgnored(t *testing.T) {
	got := Comment(weather.Snapshot{Temp: 20}, 5, 7, true)
	if got != "" {
		t.Errorf("got %q, want no advisory for a 7° swing on a mild day", got)
	}
}

func TestComment_NoDeltaOnFirstRun(t *testing.T) {
	// hasDelta=false must skip the swing check even with a huge value
	got := Comment(weather.Snapshot{Temp: 20}, 5, 100, false)
	if got != "" {
		t.Errorf("got %q, want no advisory", got)
	}
}

func TestComment_StormWindYearRound(t *testing.T) {
	for month := 0; month < 12; month++ {
		got := Comment(weather.Snapshot{Temp: 10, Wind: 12}, month, 0, false)
		if !strings.Contains(got, "Очень сильный ветер") {
			t.Errorf("month=%d: got %q, want the storm-wind message", month, got)
		}
	}
}

func TestComment_WinterSeverityOrder(t *testing.T) {
	severe := Comment(weather.Snapshot{Temp: -15}, 0, 0, false)
	if !strings.Contains(severe, "Сильный мороз") {
		t.Errorf("-15° winter: got %q, want severe frost", severe)
	}
	mild := Comment(weather.Snapshot{Temp: -10}, 1, 0, false)
	if !strings.Contains(mild, "Мороз") || strings.Contains(mild, "Сильный") {
		t.Errorf("-10° winter: got %q, want the plain frost message", mild)
	}
	windy := Comment(weather.Snapshot{Temp: -5, Wind: 9}, 11, 0, false)
	if !strings.Contains(windy, "Ветер") {
		t.Errorf("windy winter: got %q, want the wind message", windy)
	}
}

func TestComment_SpringRules(t *testing.T) {
	cold := Comment(weather.Snapshot{Temp: -2}, 2, 0, false)
	if !strings.Contains(cold, "Возврат холода") {
		t.Errorf("march -2°: got %q", cold)
	}
	early := Comment(weather.Snapshot{Temp: 12}, 2, 0, false)
	if !strings.Contains(early, "Раннее потепление") {
		t.Errorf("march 12°: got %q", early)
	}
	heat := Comment(weather.Snapshot{Temp: 20}, 4, 0, false)
	if !strings.Contains(heat, "Резкое тепло") {
		t.Errorf("may 20°: got %q", heat)
	}
}

func TestComment_SummerRules(t *testing.T) {
	severe := Comment(weather.Snapshot{Temp: 32}, 6, 0, false)
	if !strings.Contains(severe, "Сильная жара") {
		t.Errorf("32° summer: got %q", severe)
	}
	hot := Comment(weather.Snapshot{Temp: 28}, 6, 0, false)
	if !strings.Contains(hot, "Жарко") || strings.Contains(hot, "Сильная") {
		t.Errorf("28° summer: got %q", hot)
	}
}

func TestComment_AutumnRules(t *testing.T) {
	early := Comment(weather.Snapshot{Temp: 6}, 8, 0, false)
	if !strings.Contains(early, "Раннее похолодание") {
		t.Errorf("september 6°: got %q", early)
	}
	freezing := Comment(weather.Snapshot{Temp: 0}, 10, 0, false)
	if !strings.Contains(freezing, "Первый минус") {
		t.Errorf("november 0°: got %q", freezing)
	}
}

func TestComment_QuietDayHasNoAdvisory(t *testing.T) {
	got := Comment(weather.Snapshot{Temp: 18, Wind: 3}, 4, 2, true)
	if got != "" {
		t.Errorf("got %q, want no advisory on a calm mild day", got)
	}
}

func TestStageHint(t *testing.T) {
	cases := map[string]string{
		"bloom":          "цветение",
		"Цветение":       "цветение",
		"foliage":        "листва",
		"recover":        "восстановление",
		"dormant":        "покой",
		"покой":          "покой",
		"":               "",
		"something-else": "",
	}
	for stage, wantPart := range cases {
		got := StageHint(stage)
		if wantPart == "" {
			if got != "" {
				t.Errorf("stage %q: got %q, want empty", stage, got)
			}
			continue
		}
		if !strings.Contains(got, wantPart) {
			t.Errorf("stage %q: got %q, want it to mention %q", stage, got, wantPart)
		}
	}
}

package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/screener/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if result := debugOverlay(nil, 80, 24); result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	now := time.Now()
	for _, k := range []otel.EventKind{
		otel.KindRetrieveStart, otel.KindRetrieveStart, otel.KindRetrieveStart,
		otel.KindRetrieveComplete, otel.KindRetrieveError, otel.KindRetrieveStale,
		otel.KindSubmit,
	} {
		ring.Push(otel.Event{Kind: k, Time: now})
	}

	result := debugOverlay(ring, 100, 40)

	for _, want := range []string{
		"Retrievals",
		"3 started, 1 complete, 1 errors, 1 stale",
		"1 submits, 0 navigations",
		"7 / 64 events",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindRetrieveStart, Time: time.Now(), Gen: 7, Query: "ROE > 10"})
	ring.Push(otel.Event{Kind: otel.KindRetrieveError, Time: time.Now(), Err: "refused"})

	result := debugOverlay(ring, 100, 40)

	for _, want := range []string{"Recent Events", "#7", "ROE > 10", "ERR:refused"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayHeightLimit(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindRetrieveStart, Time: time.Now()})
	}

	result := debugOverlay(ring, 80, 12)
	if lines := strings.Count(result, "\n") + 1; lines > 12 {
		t.Errorf("overlay has %d lines, want at most 12", lines)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{3 * time.Minute, "3m"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("Market Capitalization", 6); got != "Marke…" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("ROE", 6); got != "ROE" {
		t.Errorf("got %q", got)
	}
}

func TestDebugToggle(t *testing.T) {
	ring := otel.NewRingBuffer(16)
	app := NewApp(&fakeRetriever{}, Options{Ring: ring})

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	app = model.(App)
	if !strings.Contains(app.View(), "Retrievals") {
		t.Error("D should open the debug overlay")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	app = model.(App)
	if strings.Contains(app.View(), "Retrievals") {
		t.Error("second D should close the debug overlay")
	}
}

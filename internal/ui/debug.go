package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/screener/internal/otel"
)

// debugPanelChrome is the height DebugPanel's border and padding add.
const debugPanelChrome = 4

// debugOverlay renders retrieval stats and recent events. Returns "" without
// a ring.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	lines := []string{
		DebugHeaderStyle.Render("Retrievals"),
		fmt.Sprintf("  Requests:   %d started, %d complete, %d errors, %d stale",
			stats[otel.KindRetrieveStart], stats[otel.KindRetrieveComplete],
			stats[otel.KindRetrieveError], stats[otel.KindRetrieveStale]),
		fmt.Sprintf("  Input:      %d submits, %d navigations",
			stats[otel.KindSubmit], stats[otel.KindNavigate]),
		fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()),
		"",
		DebugHeaderStyle.Render("Recent Events"),
	}

	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Gen > 0 {
			line += fmt.Sprintf("  #%d", e.Gen)
		}
		if e.Query != "" {
			line += "  " + truncateRunes(e.Query, 32)
		}
		if e.Count > 0 {
			line += fmt.Sprintf("  n=%d", e.Count)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration compactly. Negative durations clamp to 0ms.
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

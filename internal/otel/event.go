// Package otel records what the screener did as a JSONL event trail.
//
// Retrieval lifecycle, submissions and navigations are emitted as typed
// Events. The Logger serializes them off the caller's goroutine; an attached
// RingBuffer keeps the most recent ones for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is the event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Retrieval lifecycle
	KindRetrieveStart    EventKind = "retrieve.start"
	KindRetrieveComplete EventKind = "retrieve.complete"
	KindRetrieveError    EventKind = "retrieve.error"
	KindRetrieveStale    EventKind = "retrieve.stale"

	// UI
	KindSubmit   EventKind = "ui.submit"
	KindNavigate EventKind = "ui.navigate"
	KindKeyPress EventKind = "ui.key"

	// Service
	KindRequest EventKind = "http.request"
	KindImport  EventKind = "store.import"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Emitted only when SCREENER_TRACE is set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is a single JSONL line. Only Kind and Time are always present.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "ui", "client", "server", "main"
	SessionID string         `json:"session_id,omitempty"`
	Gen       uint64         `json:"gen,omitempty"` // retrieval generation
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Query     string         `json:"query,omitempty"`
	Status    int            `json:"status,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON writes Dur as dur_ms.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}

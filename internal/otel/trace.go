package otel

import (
	"os"
	"strings"
	"sync/atomic"
)

// EnvTrace turns on per-message tracing in the UI.
const EnvTrace = "SCREENER_TRACE"

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(parseTrace(os.Getenv(EnvTrace)))
}

// parseTrace treats empty, "0", "false" and "off" as disabled.
func parseTrace(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// TraceEnabled reports whether SCREENER_TRACE asked for message tracing.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}

// Trace records that comp received msg, at debug level. It is a no-op
// unless tracing is enabled.
func (l *Logger) Trace(comp, msg string) {
	if !TraceEnabled() {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: KindMsgReceived, Comp: comp, Msg: msg})
}

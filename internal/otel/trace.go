package otel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// traceEnabled is read on the UI goroutine for every message, so it is an
// atomic rather than a plain bool that tests would race on.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("BOOKLIB_TRACE") != "")
}

// TraceEnabled reports whether message tracing is on. BOOKLIB_TRACE sets the initial value.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled turns message tracing on or off for the rest of the run.
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}

// TraceMsg emits a trace event naming the Go type of msg. No-op unless tracing is on.
func (l *Logger) TraceMsg(kind EventKind, msg any) {
	if !TraceEnabled() {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: kind, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
}

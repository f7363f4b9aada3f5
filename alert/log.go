package alert

import "log/slog"

// LogSink writes events to the process log. It is the default sink when no
// webhook endpoint is configured, so every attempt stays observable.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink { return &LogSink{} }

// Record logs the event at info (success) or warn (failure) level.
func (s *LogSink) Record(event Event) {
	attrs := []any{
		"event_id", event.ID,
		"kind", event.Kind,
		"subject", event.Subject,
		"method", event.Method,
		"duration_ms", event.DurationMs,
		"result_count", event.ResultCount,
	}
	if event.Success {
		slog.Info("pipeline attempt", attrs...)
		return
	}
	if event.Error != "" {
		attrs = append(attrs, "error", event.Error)
	}
	slog.Warn("pipeline attempt failed", attrs...)
}

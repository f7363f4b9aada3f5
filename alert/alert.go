// Package alert emits structured attempt/outcome events to an external
// alerting channel. Delivery is fire-and-forget: a sink failure is logged
// locally and never fails the primary operation.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds.
const (
	KindSearch = "search"
	KindScrape = "scrape"
	KindError  = "error"
)

// Event is one attempt/outcome record. Append-only; the sink owns delivery.
type Event struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"` // "search", "scrape" or "error"
	Subject     string        `json:"subject"`
	Method      string        `json:"method"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`
	ResultCount int           `json:"result_count"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Timestamp   int64         `json:"timestamp"`
}

// NewEvent stamps an Event with an ID and timestamp and mirrors the
// duration into milliseconds for the wire form.
func NewEvent(kind, subject, method string, dur time.Duration, resultCount int, success bool, errText string) Event {
	return Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		Subject:     subject,
		Method:      method,
		Duration:    dur,
		DurationMs:  dur.Milliseconds(),
		ResultCount: resultCount,
		Success:     success,
		Error:       errText,
		Timestamp:   time.Now().Unix(),
	}
}

// Sink consumes events. Record must return without blocking pipeline
// progress and must never propagate delivery failures.
type Sink interface {
	Record(event Event)
}

// MultiSink fans one event out to several sinks.
type MultiSink []Sink

// Record delivers the event to every member sink.
func (m MultiSink) Record(event Event) {
	for _, s := range m {
		if s != nil {
			s.Record(event)
		}
	}
}

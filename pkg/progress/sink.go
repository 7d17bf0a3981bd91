// Package progress implements the bounded, per-investigation event stream
// described in spec §4.10: producers (the federation executor, the
// orchestrator) push events describing plan/stage/analyzer lifecycle,
// consumers drain them for live progress UIs. It is a separate package
// from both pkg/federation and pkg/orchestrator so either can depend on
// the Sink interface without an import cycle.
package progress

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// EventKind is the closed set of progress events (spec §4.10).
type EventKind string

const (
	EventPlanCreated          EventKind = "PlanCreated"
	EventStageStarted         EventKind = "StageStarted"
	EventStageRecord          EventKind = "StageRecord"
	EventStageCompleted       EventKind = "StageCompleted"
	EventAnalyzerCompleted    EventKind = "AnalyzerCompleted"
	EventInvestigationCompleted EventKind = "InvestigationCompleted"
	EventError                EventKind = "Error"
)

// RecordDigest is the small JSON-safe projection of a StageRecord event —
// id, type, and a human label — never the raw payload (spec §4.10).
type RecordDigest struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Event is one entry in an investigation's progress stream. Only the
// fields relevant to Kind are populated; the rest are zero values.
type Event struct {
	Kind            EventKind             `json:"kind"`
	InvestigationID string                `json:"investigation_id"`
	Plan            *models.ExecutionPlan `json:"plan,omitempty"`
	StageID         string                `json:"stage_id,omitempty"`
	Endpoints       []string              `json:"endpoints,omitempty"`
	Record          *RecordDigest         `json:"record,omitempty"`
	Status          models.StageStatus    `json:"status,omitempty"`
	Duration        time.Duration         `json:"duration,omitempty"`
	AnalyzerKind    models.AnomalyKind    `json:"analyzer_kind,omitempty"`
	AnomalyCount    int                   `json:"anomaly_count,omitempty"`
	Summary         *models.GraphSummary  `json:"summary,omitempty"`
	Where           string                `json:"where,omitempty"`
	ErrorKind       models.ErrorKind      `json:"error_kind,omitempty"`
}

// isData reports whether dropping this event would lose data the caller
// cannot reconstruct otherwise (spec §5: "drop non-data events" under
// back-pressure — StageRecord and the terminal events are data; lifecycle
// chatter like StageStarted is not).
func (e Event) isData() bool {
	switch e.Kind {
	case EventStageRecord, EventInvestigationCompleted, EventError:
		return true
	default:
		return false
	}
}

// Sink receives progress events for one investigation.
type Sink interface {
	Send(ctx context.Context, ev Event)
	// Dropped reports how many non-data events were discarded under
	// back-pressure.
	Dropped() int
	Close()
}

// BoundedSink is a fixed-capacity Sink: Send blocks up to waitFor for room,
// then — for non-data events only — drops the event and increments the
// drop counter rather than blocking the producer (spec §5). Data events
// (StageRecord, InvestigationCompleted, Error) block on the channel send
// unconditionally, with no timeout and no ctx escape hatch; the caller is
// expected to drain the channel promptly via Events().
type BoundedSink struct {
	ch      chan Event
	waitFor time.Duration
	dropped atomic.Int64
}

// NewBoundedSink builds a Sink with the given channel capacity and maximum
// blocking wait before dropping a non-data event.
func NewBoundedSink(capacity int, waitFor time.Duration) *BoundedSink {
	if capacity <= 0 {
		capacity = 1
	}
	return &BoundedSink{ch: make(chan Event, capacity), waitFor: waitFor}
}

// Events returns the channel consumers drain. Closed by Close.
func (s *BoundedSink) Events() <-chan Event { return s.ch }

// Send implements Sink.
func (s *BoundedSink) Send(ctx context.Context, ev Event) {
	select {
	case s.ch <- ev:
		return
	default:
	}

	if ev.isData() {
		// Data events are never dropped (spec §5) — not even on ctx
		// cancellation. The producer's own ctx already bounds how long an
		// investigation runs; once it decides to send a data event, that
		// send must land or the consumer never learns the investigation's
		// outcome.
		s.ch <- ev
		return
	}

	timer := time.NewTimer(s.waitFor)
	defer timer.Stop()
	select {
	case s.ch <- ev:
	case <-timer.C:
		s.dropped.Add(1)
	case <-ctx.Done():
		s.dropped.Add(1)
	}
}

// Dropped implements Sink.
func (s *BoundedSink) Dropped() int { return int(s.dropped.Load()) }

// Close implements Sink. Callers must stop calling Send before Close.
func (s *BoundedSink) Close() { close(s.ch) }

// NoopSink discards every event; used by callers that don't need live
// progress (tests, the CLI's non-interactive mode).
type NoopSink struct{}

func (NoopSink) Send(context.Context, Event) {}
func (NoopSink) Dropped() int                { return 0 }
func (NoopSink) Close()                      {}

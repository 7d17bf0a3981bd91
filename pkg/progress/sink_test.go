package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedSink_DeliversWithinCapacity(t *testing.T) {
	s := NewBoundedSink(2, 50*time.Millisecond)
	ctx := context.Background()
	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s1"})
	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s2"})

	assert.Len(t, s.Events(), 2)
	assert.Equal(t, 0, s.Dropped())
}

func TestBoundedSink_DropsNonDataEventUnderBackpressure(t *testing.T) {
	s := NewBoundedSink(1, 10*time.Millisecond)
	ctx := context.Background()
	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s1"}) // fills capacity
	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s2"}) // should drop

	assert.Equal(t, 1, s.Dropped())
}

func TestBoundedSink_NeverDropsDataEvents(t *testing.T) {
	s := NewBoundedSink(1, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s1"}) // fills capacity

	done := make(chan struct{})
	go func() {
		s.Send(ctx, Event{Kind: EventStageRecord, StageID: "s1"})
		close(done)
	}()

	// drain the blocking one slot so the data event can land
	<-s.Events()
	<-done
	require.Equal(t, 0, s.Dropped())
}

func TestBoundedSink_DataEventIgnoresCancelledContext(t *testing.T) {
	s := NewBoundedSink(1, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled before Send is ever called

	s.Send(ctx, Event{Kind: EventStageStarted, StageID: "s1"}) // fills capacity

	done := make(chan struct{})
	go func() {
		s.Send(ctx, Event{Kind: EventInvestigationCompleted})
		close(done)
	}()

	// the data event must still block for room and land, even though ctx is
	// already done — cancellation never overrides the never-drop rule.
	<-s.Events()
	<-done
	require.Equal(t, 0, s.Dropped())
}

func TestNoopSink_DiscardsEverything(t *testing.T) {
	var s NoopSink
	s.Send(context.Background(), Event{Kind: EventError})
	assert.Equal(t, 0, s.Dropped())
}

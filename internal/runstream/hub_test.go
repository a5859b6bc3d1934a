package runstream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, sub *Subscriber, n int) []string {
	t.Helper()
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		select {
		case line, ok := <-sub.Lines:
			require.True(t, ok, "channel closed early")
			lines = append(lines, line)
		default:
			t.Fatalf("expected %d buffered lines, got %d", n, i)
		}
	}
	return lines
}

func TestSubscriberReceivesLiveLines(t *testing.T) {
	hub := NewHub()
	sub, cancel := hub.Subscribe("run-1")
	defer cancel()

	hub.Publish("run-1", "starting")
	hub.Publish("run-1", "product 1 done")

	assert.Equal(t, []string{"starting", "product 1 done"}, drain(t, sub, 2))
}

func TestLateSubscriberGetsHistory(t *testing.T) {
	hub := NewHub()
	hub.Publish("run-1", "one")
	hub.Publish("run-1", "two")

	sub, cancel := hub.Subscribe("run-1")
	defer cancel()

	assert.Equal(t, []string{"one", "two"}, drain(t, sub, 2))

	hub.Publish("run-1", "three")
	assert.Equal(t, []string{"three"}, drain(t, sub, 1))
}

func TestFinishClosesSubscribers(t *testing.T) {
	hub := NewHub()
	sub, cancel := hub.Subscribe("run-1")
	defer cancel()

	hub.Publish("run-1", "done")
	hub.Finish("run-1")

	drain(t, sub, 1)
	_, ok := <-sub.Lines
	assert.False(t, ok)

	// Publishing after finish is a no-op.
	hub.Publish("run-1", "late")
}

func TestSubscribeAfterFinishReplaysAndCloses(t *testing.T) {
	hub := NewHub()
	hub.Publish("run-1", "only line")
	hub.Finish("run-1")

	sub, cancel := hub.Subscribe("run-1")
	defer cancel()

	assert.Equal(t, []string{"only line"}, drain(t, sub, 1))
	_, ok := <-sub.Lines
	assert.False(t, ok)
}

func TestSinkPublishesToRun(t *testing.T) {
	hub := NewHub()
	sub, cancel := hub.Subscribe("run-9")
	defer cancel()

	sink := hub.Sink("run-9")
	sink("from the pipeline")

	assert.Equal(t, []string{"from the pipeline"}, drain(t, sub, 1))
	assert.True(t, hub.Known("run-9"))
	assert.False(t, hub.Known("run-0"))
}

func TestOldRunsAreEvicted(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxRetainedRuns+1; i++ {
		hub.Publish(fmt.Sprintf("run-%d", i), "x")
	}
	assert.False(t, hub.Known("run-0"))
	assert.True(t, hub.Known("run-1"))
}

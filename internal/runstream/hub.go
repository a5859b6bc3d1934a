package runstream

import (
	"sync"

	"github.com/harlowprint/backoffice-backend/internal/pricing"
)

const (
	subscriberBuffer = 64
	maxRetainedRuns  = 20
	maxHistoryLines  = 2000
)

// Subscriber is one connected stream reader. Lines is closed when the
// run finishes.
type Subscriber struct {
	Lines chan string
}

type run struct {
	subscribers map[*Subscriber]struct{}
	history     []string
	done        bool
}

// Hub fans pricing run log lines out to streaming subscribers. Late
// subscribers get the buffered history replayed before live lines, so
// a browser that connects after the run started still sees the whole
// log. Finished runs are retained for replay, oldest evicted first.
type Hub struct {
	mu    sync.RWMutex
	runs  map[string]*run
	order []string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{runs: make(map[string]*run)}
}

// Sink returns a pricing.LogSink publishing into the given run.
func (h *Hub) Sink(runID string) pricing.LogSink {
	return func(line string) {
		h.Publish(runID, line)
	}
}

// Publish appends a line to the run's history and delivers it to every
// live subscriber. Slow subscribers have the line dropped rather than
// stalling the run.
func (h *Hub) Publish(runID, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.ensureRun(runID)
	if r.done {
		return
	}
	if len(r.history) < maxHistoryLines {
		r.history = append(r.history, line)
	}
	for sub := range r.subscribers {
		select {
		case sub.Lines <- line:
		default:
		}
	}
}

// Finish marks a run complete and closes all subscriber channels.
func (h *Hub) Finish(runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.runs[runID]
	if !ok || r.done {
		return
	}
	r.done = true
	for sub := range r.subscribers {
		close(sub.Lines)
	}
	r.subscribers = make(map[*Subscriber]struct{})
}

// Subscribe attaches a reader to a run. The run's history so far is
// replayed into the channel first; the returned cancel detaches the
// subscriber. For finished runs the channel carries the history and is
// closed immediately.
func (h *Hub) Subscribe(runID string) (*Subscriber, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.ensureRun(runID)
	buffer := subscriberBuffer
	if len(r.history) > buffer {
		buffer = len(r.history)
	}
	sub := &Subscriber{Lines: make(chan string, buffer)}
	for _, line := range r.history {
		sub.Lines <- line
	}
	if r.done {
		close(sub.Lines)
		return sub, func() {}
	}

	r.subscribers[sub] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, live := r.subscribers[sub]; live {
			delete(r.subscribers, sub)
			close(sub.Lines)
		}
	}
	return sub, cancel
}

// Known reports whether the hub has ever seen the run.
func (h *Hub) Known(runID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.runs[runID]
	return ok
}

func (h *Hub) ensureRun(runID string) *run {
	if r, ok := h.runs[runID]; ok {
		return r
	}
	r := &run{subscribers: make(map[*Subscriber]struct{})}
	h.runs[runID] = r
	h.order = append(h.order, runID)
	if len(h.order) > maxRetainedRuns {
		evicted := h.order[0]
		h.order = h.order[1:]
		if old, ok := h.runs[evicted]; ok {
			for sub := range old.subscribers {
				close(sub.Lines)
			}
			delete(h.runs, evicted)
		}
	}
	return r
}

package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
)

// Queue buffers order events in an unbounded backlog and feeds them to
// workers through a bounded channel moved by a broker goroutine.
type Queue struct {
	mu           sync.Mutex
	backlog      []model.OrderEvent
	notify       chan struct{}
	out          chan model.OrderEvent
	shuttingDown atomic.Bool
	overWater    bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Enqueued  uint64 `json:"events_enqueued"`
	Processed uint64 `json:"events_processed"`
	Failed    uint64 `json:"events_failed"`
	Backlog   int    `json:"backlog_size"`
	Depth     int    `json:"queue_depth"`
}

// Drained reports whether every enqueued event has been handled.
func (s Stats) Drained() bool {
	return s.Backlog == 0 && s.Depth == 0 && s.Enqueued == s.Processed
}

// New creates a Queue whose output channel holds outBuffer events.
func New(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.OrderEvent, outBuffer),
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			q.checkWatermark(highWatermark)
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// checkWatermark logs once per crossing instead of every tick.
func (q *Queue) checkWatermark(highWatermark int) {
	sz := q.BacklogSize()
	switch {
	case sz > highWatermark && !q.overWater:
		q.overWater = true
		obs.Logger.Warn("queue_backlog_high", "backlog_size", sz, "high_watermark", highWatermark)
	case sz <= highWatermark && q.overWater:
		q.overWater = false
		obs.Logger.Info("queue_backlog_recovered", "backlog_size", sz)
	}
}

func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

// Enqueue appends ev to the backlog. It returns false once intake is closed.
func (q *Queue) Enqueue(ev model.OrderEvent) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the output channel of events.
func (q *Queue) Out() <-chan model.OrderEvent { return q.out }

// BacklogSize returns the number of enqueued events not yet moved to Out.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// QueueDepth returns backlog plus buffered output items.
func (q *Queue) QueueDepth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

// MarkProcessed counts a handled event. Failed events are still processed.
func (q *Queue) MarkProcessed(ok bool) {
	if !ok {
		q.failed.Add(1)
	}
	q.processed.Add(1)
}

// Stats returns counters and sizes for observability.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Backlog:   q.BacklogSize(),
		Depth:     q.QueueDepth(),
	}
}

// CloseIntake disallows future enqueues.
func (q *Queue) CloseIntake() { q.shuttingDown.Store(true) }

// IsShuttingDown reports if intake has been closed.
func (q *Queue) IsShuttingDown() bool { return q.shuttingDown.Load() }

// Package queue delivers post-submission order events asynchronously
// through an in-memory queue and an autoscaled worker pool.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/amiral-order-service/internal/config"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
)

// Handler processes one event. Errors are logged and counted, never retried.
type Handler func(ctx context.Context, ev model.OrderEvent) error

// Manager coordinates workers processing queued events and scaling.
type Manager struct {
	cfg     config.Config
	q       *Queue
	handler Handler
	seq     Sequencer
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager that hands every event to h.
func NewManager(cfg config.Config, q *Queue, h Handler) *Manager {
	if cfg.WorkerMax < cfg.WorkerMin {
		cfg.WorkerMax = cfg.WorkerMin
	}
	if cfg.ScaleInterval <= 0 {
		cfg.ScaleInterval = 500 * time.Millisecond
	}
	return &Manager{cfg: cfg, q: q, handler: h, now: time.Now}
}

// Start begins processing and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx, m.cfg.QueueHighWatermark)
	m.addWorkers(max(m.cfg.InitialWorkerCount, 1))
	go m.scaler()
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

// scaler adds a worker while the backlog outgrows the pool and removes one
// after enough idle ticks.
func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.ScaleUpBacklogPerWorker && wc < m.cfg.WorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= m.cfg.ScaleDownIdleTicks && wc > m.cfg.WorkerMin {
					m.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.workerCancels) {
		n = len(m.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := m.workerCancels[len(m.workerCancels)-1]
		m.workerCancels = m.workerCancels[:len(m.workerCancels)-1]
		c()
	}
	obs.Logger.Info("workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.q.Out():
			err := m.handle(ev)
			if err != nil {
				obs.Logger.Warn("order_event_failed",
					"event_id", ev.ID,
					"type", string(ev.Type),
					"sequence", ev.Sequence,
					"error", err,
				)
			}
			m.q.MarkProcessed(err == nil)
		}
	}
}

// handle runs the handler detached from the worker's lifetime so a scale
// down never aborts an event halfway.
func (m *Manager) handle(ev model.OrderEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if m.handler == nil {
		return nil
	}
	return m.handler(context.WithoutCancel(m.ctx), ev)
}

// Emit wraps p in a new event and enqueues it.
func (m *Manager) Emit(t model.EventType, p model.OrderPayload) bool {
	return m.Enqueue(model.OrderEvent{
		ID:         uuid.NewString(),
		Type:       t,
		Sequence:   m.seq.Next(),
		Payload:    p,
		OccurredAt: m.now().UTC(),
	})
}

// Enqueue proxies to the underlying queue.
func (m *Manager) Enqueue(ev model.OrderEvent) bool { return m.q.Enqueue(ev) }

// BacklogSize returns pending items in the queue.
func (m *Manager) BacklogSize() int { return m.q.BacklogSize() }

// QueueDepth returns backlog plus buffered output items.
func (m *Manager) QueueDepth() int { return m.q.QueueDepth() }

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// IsShuttingDown reports whether new enqueues are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake disallows future enqueues.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// Stats exposes the underlying queue counters.
func (m *Manager) Stats() Stats { return m.q.Stats() }

// DrainUntil blocks until the queue is fully drained or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		if m.q.Stats().Drained() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}

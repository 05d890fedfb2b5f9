package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/config"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		InitialWorkerCount:      2,
		WorkerMin:               2,
		WorkerMax:               4,
		ScaleInterval:           50 * time.Millisecond,
		ScaleUpBacklogPerWorker: 100,
		ScaleDownIdleTicks:      6,
		QueueHighWatermark:      5000,
	}
}

func TestQueueNonBlockingEnqueue(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 0)
	for i := 0; i < 1000; i++ {
		ok := q.Enqueue(model.OrderEvent{Type: model.EventCheckoutInitiated})
		if !ok {
			t.Fatalf("enqueue failed at %d", i)
		}
	}
	if q.BacklogSize() == 0 {
		t.Fatalf("expected backlog > 0")
	}
}

func TestQueueShutdownIntake(t *testing.T) {
	q := New(1)
	q.CloseIntake()
	if !q.IsShuttingDown() {
		t.Fatalf("expected shutting down true")
	}
	if ok := q.Enqueue(model.OrderEvent{}); ok {
		t.Fatalf("expected enqueue false when shutting down")
	}
}

func TestManagerDrainDeliversEveryEvent(t *testing.T) {
	var mu sync.Mutex
	seen := map[uint64]model.EventType{}
	h := func(_ context.Context, ev model.OrderEvent) error {
		mu.Lock()
		seen[ev.Sequence] = ev.Type
		mu.Unlock()
		return nil
	}
	mgr := NewManager(testConfig(), New(16), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	for i := 0; i < 100; i++ {
		if !mgr.Emit(model.EventOrderPlaced, model.OrderPayload{Fingerprint: "fp"}) {
			t.Fatalf("emit %d rejected", i)
		}
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	if ok := mgr.DrainUntil(ctxDrain); !ok {
		t.Fatalf("expected drain true")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 100 {
		t.Fatalf("expected 100 distinct sequences, got %d", len(seen))
	}
	for i := uint64(1); i <= 100; i++ {
		if _, ok := seen[i]; !ok {
			t.Fatalf("missing sequence %d", i)
		}
	}
}

func TestManagerCountsFailuresAndPanics(t *testing.T) {
	h := func(_ context.Context, ev model.OrderEvent) error {
		switch ev.Type {
		case model.EventCheckoutInitiated:
			return errors.New("broker down")
		case "explode":
			panic("boom")
		}
		return nil
	}
	mgr := NewManager(testConfig(), New(4), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	mgr.Emit(model.EventCheckoutInitiated, model.OrderPayload{})
	mgr.Emit("explode", model.OrderPayload{})
	mgr.Emit(model.EventOrderPlaced, model.OrderPayload{})

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelDrain()
	if !mgr.DrainUntil(ctxDrain) {
		t.Fatalf("drain timeout")
	}
	st := mgr.Stats()
	if st.Processed != 3 || st.Failed != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestManagerEmitAfterCloseIntake(t *testing.T) {
	mgr := NewManager(testConfig(), New(4), nil)
	mgr.CloseIntake()
	if mgr.Emit(model.EventOrderPlaced, model.OrderPayload{}) {
		t.Fatalf("expected emit to be rejected")
	}
	if !mgr.IsShuttingDown() {
		t.Fatalf("expected shutting down")
	}
}

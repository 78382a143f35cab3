package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmap/internal/domain"
	"mindmap/internal/metrics"
)

type harness struct {
	svc     *GraphService
	events  chan Event
	metrics *metrics.Collector
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func startService(t *testing.T, tweak ...func(*Options)) *harness {
	t.Helper()

	opts := DefaultOptions()
	opts.Placer = func() domain.Position { return domain.Position{X: 1, Y: 1} }
	for _, fn := range tweak {
		fn(&opts)
	}

	bus := NewEventBus()
	events := make(chan Event, 256)
	bus.Subscribe(events)

	m := metrics.NewCollector()
	svc := NewGraphService(bus, opts, zap.NewNop(), m)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{svc: svc, events: events, metrics: m, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go func() {
		_ = svc.Run(ctx)
		close(h.done)
	}()
	t.Cleanup(h.stop)

	require.Eventually(t, svc.Relay().Listening, time.Second, time.Millisecond)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

// waitFor returns the next event of the given type, skipping others
func (h *harness) waitFor(t *testing.T, typ EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-h.events:
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", typ)
			return Event{}
		}
	}
}

func (h *harness) drain() {
	for {
		select {
		case <-h.events:
		default:
			return
		}
	}
}

package service

import (
	"sync"

	"go.uber.org/zap"
)

// DeleteRequest asks the graph owner to remove one node
type DeleteRequest struct {
	ID string `json:"id"`
}

// Relay carries delete requests from node widgets to a single listener.
// Requests are delivered on their own goroutine so RequestDelete never
// blocks the caller. Requests made while nobody listens are dropped.
type Relay struct {
	mu       sync.Mutex
	listener func(DeleteRequest)
	gen      uint64
	logger   *zap.Logger
}

// NewRelay creates a relay with no listener
func NewRelay(logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{logger: logger}
}

// RequestDelete implements domain.DeletionRelay
func (r *Relay) RequestDelete(id string) {
	r.mu.Lock()
	handler, gen := r.listener, r.gen
	r.mu.Unlock()

	if handler == nil {
		r.logger.Debug("delete request dropped, no listener", zap.String("node_id", id))
		return
	}

	go func() {
		// The listener may have been stopped between the request and delivery
		if !r.current(gen) {
			return
		}
		handler(DeleteRequest{ID: id})
	}()
}

func (r *Relay) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listener != nil && r.gen == gen
}

// Listen attaches handler as the only listener. The returned stop function
// detaches it; calling stop more than once is harmless. A new listener can
// attach once the previous one stopped.
func (r *Relay) Listen(handler func(DeleteRequest)) (stop func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listener != nil {
		return nil, ErrListenerAttached
	}
	r.gen++
	gen := r.gen
	r.listener = handler

	var once sync.Once
	stop = func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.gen == gen {
				r.listener = nil
			}
		})
	}
	return stop, nil
}

// Listening reports whether a listener is attached
func (r *Relay) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listener != nil
}

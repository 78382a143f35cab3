package service

import (
	"sync"

	"mindmap/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventNodeCreated      EventType = "node_created"
	EventNodeUpdated      EventType = "node_updated"
	EventNodeDeleted      EventType = "node_deleted"
	EventEdgeCreated      EventType = "edge_created"
	EventEdgeDeleted      EventType = "edge_deleted"
	EventPositionsUpdated EventType = "positions_updated"
	EventDocumentAttached EventType = "document_attached"
	EventStyleSelected    EventType = "style_selected"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NodeDeletedPayload lists the node and the edges removed with it
type NodeDeletedPayload struct {
	NodeID       string   `json:"node_id"`
	RemovedEdges []string `json:"removed_edges"`
}

// EdgeDeletedPayload names a removed edge
type EdgeDeletedPayload struct {
	EdgeID string `json:"edge_id"`
}

// DocumentAttachedPayload describes a new document without its content
type DocumentAttachedPayload struct {
	NodeID     string `json:"node_id"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	MIMEType   string `json:"type"`
	Size       int64  `json:"size"`
	Position   int    `json:"position"`
}

// StyleSelectedPayload carries the style new edges will get
type StyleSelectedPayload struct {
	Style domain.StyleID `json:"style"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers and returns how many were
// skipped because their buffer was full
func (eb *EventBus) Publish(event Event) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	dropped := 0
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
			dropped++
		}
	}
	return dropped
}

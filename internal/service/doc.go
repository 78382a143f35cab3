// Package service implements the coordinator that owns the diagram.
//
// GraphService holds the node and edge registries and applies every mutation
// from one goroutine started by Run. HTTP handlers, the deletion relay and
// document reads submit operations to that loop and wait for the result.
// Events for an operation are published before the next operation starts.
//
// # Event System
//
// Every mutation publishes an Event on the EventBus. The SSE hub subscribes
// to the bus and forwards events to connected canvases.
//
// # Deletion Relay
//
// Node widgets never touch the registries. They hold a domain.NodeView whose
// Delete call goes through the Relay, and the coordinator listens on the relay
// while Run is active.
//
// # Attachments
//
// Attach validates each file, reads the accepted ones concurrently and
// submits one append per finished read. Reads that finish after their node was
// deleted are discarded.
package service

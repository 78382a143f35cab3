// Package graph holds the node and edge registries of a diagram.
//
// Registry keeps both collections in insertion order and enforces the
// structural rules: node IDs are never reused, edges need live endpoints
// when created, and deleting a node deletes every edge touching it.
//
// A Registry is not safe for concurrent use. The service layer owns exactly
// one and applies every mutation from a single goroutine.
package graph

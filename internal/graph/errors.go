package graph

import "errors"

var (
	// ErrNodeNotFound is returned when an operation names a node that does not exist
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an operation names an edge that does not exist
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrDanglingEndpoint is returned by Connect when an endpoint does not exist
	ErrDanglingEndpoint = errors.New("edge endpoint does not exist")
	// ErrUnknownStyle is returned by Connect for a style outside the catalog
	ErrUnknownStyle = errors.New("unknown connection style")
)

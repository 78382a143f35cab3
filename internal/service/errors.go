package service

import "errors"

var (
	// ErrStopped is returned for operations submitted after Run returned
	ErrStopped = errors.New("graph service stopped")
	// ErrListenerAttached is returned by Relay.Listen while another listener is active
	ErrListenerAttached = errors.New("deletion relay already has a listener")
	// ErrDocumentNotFound is returned when a node has no document with the given ID
	ErrDocumentNotFound = errors.New("document not found")
	// ErrTooManyFiles is returned when an attach batch exceeds the configured limit
	ErrTooManyFiles = errors.New("too many files in one batch")
)

// Package domain defines the core types of the mindmap diagramming backend.
//
// This package contains the entities and value objects the rest of the
// system passes around: nodes, edges, attached documents, connection styles
// and the graph snapshot handed to the canvas and the summary generator.
//
// # Core Types
//
// Node is a labeled vertex with an optional color override, an ordered list
// of attached documents and a canvas position the core never interprets.
//
// Edge is a directed connection between two nodes. It records the
// connection style that was selected when it was drawn.
//
// ConnectionStyle is one of five fixed catalog entries describing how the
// canvas strokes an edge (color, width, dash pattern, markers, animation).
//
// Document is a file attached to a node. Text documents keep decoded text;
// everything else keeps a base64 data URL a browser can open directly.
//
// Graph is an immutable snapshot of both registries in registry order.
//
// # Design Principles
//
// - Value types; registries copy on read and write
// - No storage, transport or logging dependencies
// - Deterministic defaults (palette by creation ordinal, fixed style catalog)
package domain

// Package handler implements the HTTP API the browser canvas talks to.
//
// # Handlers
//
// GraphHandler serves nodes, edges, style selection, canvas change lists,
// document upload and viewing, the summary report and snapshot export. All
// state changes go through service.GraphService.
//
// # API Design
//
// Routes live under /api and follow REST conventions. Request bodies are
// JSON, validated with struct tags before the service is called. Document
// upload is multipart/form-data with one or more "files" parts.
//
// # Response Format
//
// Success responses return JSON with 200, 201 or 202. Error responses return
// JSON with an {error, details} structure. Rejected files are not errors:
// they come back in the upload result next to the attached documents.
package handler

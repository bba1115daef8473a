// Package http contains the Chi handlers for the lead/lag analysis service.
//
// Handlers are thin: they validate the request, call into the loader and
// analysis packages, and render JSON (or RFC 7807 problem documents on
// failure). Long-running analysis diagnostics are streamed to clients over
// the WebSocket hub rather than held in the response.
package http

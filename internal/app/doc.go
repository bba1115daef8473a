// Package app wires the lead/lag analysis service together: configuration,
// logging, OpenTelemetry, the WebSocket diagnostics hub, and the HTTP server
// with graceful shutdown.
package app

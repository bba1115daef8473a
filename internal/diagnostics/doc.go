// Package diagnostics provides the structured diagnostic event channel used
// by the analysis engine. Components emit events carrying a severity and a
// component tag through an Emitter instead of writing to any specific sink;
// callers decide where events go (logger, WebSocket hub, nowhere).
package diagnostics

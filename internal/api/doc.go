// Package api implements the HTTP surface of pindrop.
//
// New(store, pins, registry, maxResultBytes) returns an http.Handler serving:
//
//	POST /pin/{namespace}        — issue a fresh pin: 200 {pin, result: null};
//	                               429 when generation exhausts its retry budget
//	POST /pin/{namespace}/{pin}  — poll-or-issue: 200 {pin, result}; result is
//	                               null while waiting; a populated result is
//	                               delivered at most once (the entry is deleted);
//	                               an unknown or expired pin yields a brand-new
//	                               pin with a null result instead of an error
//	PUT  /pin/{namespace}/{pin}  — submit a result: 202 text ack; 404 unknown
//	                               pin; 413 payload over the size ceiling;
//	                               500 body not a JSON object
//	GET  /health                 — 200 fixed text
//	GET  /metrics                — Prometheus text exposition
//
// Unmatched methods on known paths get 405 from the method-scoped mux
// patterns. Error bodies are JSON ({"error": "..."}); the submit ack and
// health body are plain text. No external HTTP framework is used.
//
// The poll fallback (reissue instead of 404) is deliberate and part of the
// client contract: a poller holding a consumed or swept pin is handed a fresh
// one to restart the handoff with.
//
// middleware.go provides Chain, RequestLog (uuid request IDs + slog access
// log) and config-driven CORS.
package api

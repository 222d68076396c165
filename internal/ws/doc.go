// Package ws implements the operational stats WebSocket hub.
//
// Hub manages a set of connected clients and broadcasts store occupancy
// (total entries plus per-namespace counts — never pin payloads) on a
// configurable interval (default 5s in production).
//
// New(store, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// stats immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "stats",
//	  "data":  { "entries": 3, "namespaces": {"acme": 3}, "generated_at": "..." }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stats by the server.
package ws

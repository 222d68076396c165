// Package metrics exposes pindrop's operation counters in Prometheus text
// exposition format on GET /metrics.
//
// Registry holds atomic counters bumped by the HTTP handlers and the sweeper,
// plus a store-occupancy gauge sampled at scrape time. gather() builds
// client_model metric families by hand and ServeHTTP encodes them with
// expfmt — no collector registry, since every metric here is a plain counter
// owned by this process.
package metrics

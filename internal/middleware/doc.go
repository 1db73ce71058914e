// Package middleware provides the HTTP middleware chain of the streamer.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with segment, static
//     asset and health check requests optionally filtered out
//   - Prometheus request metrics with bounded path cardinality
//   - gzip compression of JSON, UI and playlist responses
package middleware

// Package metrics declares the Prometheus collectors exported by the
// streamer and a small periodic collector for output directory gauges.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough to expose them on the /metrics endpoint
// served by promhttp.
//
// # Metric Families
//
//   - bedtime_streamer_http_*: request counts, durations and in-flight gauge
//   - bedtime_streamer_probe_*: ffprobe invocations by outcome and duration
//   - bedtime_streamer_streams_started_total: started streams by preset and subtitle mode
//   - bedtime_streamer_transcoder_*: running gauge, exits by reason, stop latency
//   - bedtime_streamer_output_*: artifacts removed, segment count, bytes on disk
//   - bedtime_streamer_library_*: scans, cache hits, watcher activity
//   - bedtime_streamer_filesystem_*: stale file handle errors and retry outcomes
//   - bedtime_streamer_db_*: stream history queries
//
// Call [InitializeMetrics] once at startup so labelled series exist before
// the first event.
package metrics

// Package main provides the entry point for Bedtime Streamer.
//
// Bedtime Streamer turns one video file from a local library into a live
// HLS stream (fragmented MP4 segments in an event playlist) that any HLS
// player on the network can follow, burning in subtitles when asked.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables, prepares directories
//  2. History Database: opens the SQLite stream history (optional)
//  3. Component Initialization:
//     - Prober and Supervisor for ffprobe and ffmpeg
//     - Stream service, which owns the single running transcoder
//     - Library scanner with a filesystem watcher
//     - Metrics collector for the output directory
//  4. HTTP Server Setup: routes, middleware, static UI and HLS files
//  5. Graceful Shutdown: on SIGINT/SIGTERM the stream is stopped first so
//     no ffmpeg process outlives the server
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 5000):
//     - Player UI from STATIC_DIR
//     - JSON API under /api
//     - HLS output under /hls
//     - Health and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// See [bedtime-streamer/internal/startup] for the environment variables.
package main

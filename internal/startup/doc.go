// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - LIBRARY_PATH: media library root (default: ./media)
//   - HLS_DIR: stream output directory (default: ./hls)
//   - DATABASE_DIR: stream history database directory (default: ./data)
//   - STATIC_DIR: player UI directory (default: ./static)
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - HISTORY_ENABLED: record stream history (default: true)
//   - FFMPEG_PATH, FFPROBE_PATH: binaries (default: ffmpeg, ffprobe on PATH)
//   - PROBE_TIMEOUT: ffprobe time limit as Go duration (default: 10s)
//   - STOP_TIMEOUT: grace period before a stopping transcoder is killed (default: 5s)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: log static file and segment requests (default: false)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//
// Directory paths are made absolute and use forward slashes. The HLS output
// directory is required and must be writable; the history database is
// disabled when its directory is not.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup

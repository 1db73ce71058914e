package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedtime_streamer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Probe metrics
var (
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_probe_total",
			Help: "Total number of ffprobe invocations",
		},
		[]string{"status"}, // "success", "error", "timeout"
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bedtime_streamer_probe_duration_seconds",
			Help:    "ffprobe invocation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Stream lifecycle metrics
var (
	StreamsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_streams_started_total",
			Help: "Total number of streams started",
		},
		[]string{"preset", "subtitles"}, // subtitles: "external", "text", "pgs", "none"
	)

	StreamStartErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_stream_start_errors_total",
			Help: "Total number of rejected or failed stream starts",
		},
		[]string{"reason"}, // "unknown_preset", "probe", "build", "cleanup", "launch"
	)

	TranscoderRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_transcoder_running",
			Help: "Whether a transcoder process is currently running (1 = running, 0 = idle)",
		},
	)

	TranscoderExitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_transcoder_exits_total",
			Help: "Total number of transcoder process exits",
		},
		[]string{"reason"}, // "stopped", "completed", "crashed"
	)

	TranscoderStopDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bedtime_streamer_transcoder_stop_duration_seconds",
			Help:    "Time from stop request until the transcoder process exited",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	TranscoderForcedKills = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_transcoder_forced_kills_total",
			Help: "Total number of transcoder processes killed after the stop timeout",
		},
	)
)

// Output directory metrics
var (
	OutputFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_output_files_removed_total",
			Help: "Total number of stale stream artifacts removed from the output directory",
		},
	)

	OutputSegments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_output_segments",
			Help: "Number of media segments currently in the output directory",
		},
	)

	OutputSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_output_size_bytes",
			Help: "Total size of stream artifacts in the output directory",
		},
	)
)

// Filesystem metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors by operation",
		},
		[]string{"operation"},
	)

	FilesystemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_filesystem_retries_total",
			Help: "Total number of retried filesystem operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// Library metrics
var (
	LibraryScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_library_scans_total",
			Help: "Total number of library scans",
		},
		[]string{"status"},
	)

	LibraryScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bedtime_streamer_library_scan_duration_seconds",
			Help:    "Library scan duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	LibraryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_library_cache_hits_total",
			Help: "Total number of library listings served from cache",
		},
	)

	LibraryWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_library_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	LibraryWatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_library_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	LibraryWatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_library_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)
)

// History database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_streamer_db_queries_total",
			Help: "Total number of history database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedtime_streamer_db_query_duration_seconds",
			Help:    "History database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bedtime_streamer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

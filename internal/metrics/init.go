package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error", "timeout"} {
		ProbeTotal.WithLabelValues(status)
	}

	for _, reason := range []string{"invalid", "unknown_preset", "probe", "build", "stop", "cleanup", "launch"} {
		StreamStartErrors.WithLabelValues(reason)
	}

	for _, reason := range []string{"stopped", "completed", "crashed"} {
		TranscoderExitsTotal.WithLabelValues(reason)
	}

	for _, status := range []string{"success", "error"} {
		LibraryScansTotal.WithLabelValues(status)
	}

	for _, op := range []string{"readdir", "remove", "stat"} {
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetries.WithLabelValues(op, "recovered")
		FilesystemRetries.WithLabelValues(op, "exhausted")
	}

	for _, op := range []string{"initialize_schema", "record_start", "record_end", "recent"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}

// Package outputdir owns the on-disk layout of the HLS/CMAF output
// directory: the artifact names ffmpeg is told to write and the sweep that
// removes a previous stream's artifacts before a new one starts.
package outputdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bedtime-streamer/internal/filesystem"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
)

// Artifact names, relative to the output directory.
const (
	InitSegment     = "init.mp4"
	SegmentTemplate = "chunk_%d.m4s"
	Playlist        = "index.m3u8"
)

// artifactExtensions are swept by Cleanup.
var artifactExtensions = map[string]bool{
	".m4s":  true,
	".m3u8": true,
	".mp4":  true,
}

// IsArtifact reports whether name has one of the stream artifact extensions.
func IsArtifact(name string) bool {
	return artifactExtensions[strings.ToLower(filepath.Ext(name))]
}

// Prepare creates dir and its parents. It is safe to call repeatedly.
func Prepare(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// Cleanup removes every stream artifact directly inside dir and returns how
// many were removed. Files that cannot be removed are logged and skipped.
// A missing directory is not an error.
func Cleanup(dir string) (int, error) {
	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsArtifact(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := filesystem.RemoveWithRetry(path, filesystem.DefaultRetryConfig()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logging.Warn("failed to remove stale artifact %s: %v", path, err)
			}
			continue
		}
		removed++
	}

	metrics.OutputFilesRemoved.Add(float64(removed))
	logging.Debug("Output cleanup removed %d files from %s", removed, dir)
	return removed, nil
}

// Dir reports statistics about the artifacts in an output directory.
type Dir string

// OutputStats counts media segments and sums artifact sizes.
func (d Dir) OutputStats() (metrics.Stats, error) {
	var stats metrics.Stats

	entries, err := filesystem.ReadDirWithRetry(string(d), filesystem.DefaultRetryConfig())
	if err != nil {
		return stats, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsArtifact(entry.Name()) {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".m4s") {
			stats.Segments++
		}
		if info, err := entry.Info(); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

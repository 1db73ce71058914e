package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns defaults suited to a NFS mount on a home network.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isStaleError checks if an error is an NFS stale file handle error
func isStaleError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}
	return false
}

// withRetry runs fn until it succeeds, fails with a non-stale error, or the
// retries are used up.
func withRetry(op, path string, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s succeeded on retry %d for %s", op, attempt, path)
				metrics.FilesystemRetries.WithLabelValues(op, "recovered").Inc()
			}
			return nil
		}
		if !isStaleError(err) {
			return err
		}

		lastErr = err
		metrics.FilesystemStaleErrors.WithLabelValues(op).Inc()

		if attempt < config.MaxRetries {
			logging.Debug("%s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("%s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	metrics.FilesystemRetries.WithLabelValues(op, "exhausted").Inc()
	return lastErr
}

// ReadDirWithRetry performs os.ReadDir, retrying stale file handle errors.
func ReadDirWithRetry(dir string, config RetryConfig) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := withRetry("readdir", dir, config, func() error {
		var err error
		entries, err = os.ReadDir(dir)
		return err
	})
	return entries, err
}

// RemoveWithRetry performs os.Remove, retrying stale file handle errors.
func RemoveWithRetry(path string, config RetryConfig) error {
	return withRetry("remove", path, config, func() error {
		return os.Remove(path)
	})
}

// StatWithRetry performs os.Stat, retrying stale file handle errors.
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := withRetry("stat", path, config, func() error {
		var err error
		info, err = os.Stat(path)
		return err
	})
	return info, err
}

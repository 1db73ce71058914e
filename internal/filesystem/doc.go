/*
Package filesystem retries directory operations that fail with a stale file
handle (ESTALE).

The library and the HLS output directory are often NFS or SMB mounts in home
setups. A sweep of the output directory that races a server-side rename can
fail with ESTALE even though a second attempt succeeds, so the calls the
streamer depends on go through this package:

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())
	err = filesystem.RemoveWithRetry(path, filesystem.DefaultRetryConfig())

Only ESTALE is retried. Any other error is returned immediately, including
os.ErrNotExist, which callers usually treat as success.

# Metrics

  - bedtime_streamer_filesystem_stale_errors_total{operation}
  - bedtime_streamer_filesystem_retries_total{operation,outcome}
*/
package filesystem

// Package memory sets the Go soft memory limit from the container limit.
//
// The streamer shares its container with one ffmpeg process, which holds
// decode and encode buffers far larger than the Go heap. ConfigureFromEnv
// gives the Go runtime only a slice of the container limit so garbage
// collection kicks in before the pair is OOM-killed.
//
// Environment variables:
//
//	GOMEMLIMIT    standard Go variable; when set it wins and is only reported
//	MEMORY_LIMIT  container limit in bytes (Kubernetes Downward API)
//	MEMORY_RATIO  share of MEMORY_LIMIT for the Go heap (default 0.25)
package memory

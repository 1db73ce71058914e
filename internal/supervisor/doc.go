// Package supervisor owns the one transcoder process the service may run.
//
// A [Supervisor] is either Idle or Running. Start replaces a running
// process (stop, then start), Stop asks the process to terminate, waits a
// bounded time for it to exit and kills it otherwise, and returns only once
// the process is gone. Every exit, requested or not, is reported on the
// [Supervisor.Exits] channel so callers can tell a crash from a stop.
package supervisor

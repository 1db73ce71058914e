// Package stream coordinates starting and stopping the single HLS stream.
//
// A [Service] resolves the encoding preset, probes the source, builds the
// ffmpeg command, stops any running transcoder, sweeps the output directory
// and launches the new process, all under one lock so concurrent requests
// cannot interleave. [Service.Run] follows transcoder exits and finalizes
// the stream history.
package stream

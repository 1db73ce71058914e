// Package handlers provides the HTTP API of the streamer.
//
// It includes handlers for:
//   - Library listing and preset listing
//   - Probing a file for subtitle tracks
//   - Starting, stopping and inspecting the stream
//   - Stream history
//   - Serving the HLS output directory
//   - Health checks and version information
package handlers

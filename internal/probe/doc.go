// Package probe inspects media files with ffprobe and reduces the stream
// listing to the few facts the command builder needs: the first video
// stream's codec and resolution, and which subtitle tracks can be burned in.
//
// Subtitle tracks are addressed by their ordinal among subtitle streams
// only, the same numbering the subtitles filter (si=N) and stream
// specifiers (0:s:N) use. Text codecs are rendered by libass; PGS tracks
// are bitmaps and must be composited with the overlay filter.
package probe

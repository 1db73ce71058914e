// Package ffmpeg builds the argument vector for the single ffmpeg process
// that turns a library file into a CMAF HLS stream.
//
// [Build] is pure: it performs no I/O and the same request always yields
// the same arguments. ffmpeg is sensitive to flag position, so the
// construction order is fixed:
//
//  1. Global and input options (-y, force-sync input robustness)
//  2. Input file
//  3. Force-sync output timing and stream selection
//  4. Video filter: external subtitle, internal text subtitle, PGS overlay
//     or plain pixel-format normalisation, in that priority
//  5. Video encoder from the preset
//  6. Audio encoder, stereo at 192k
//  7. HLS muxer writing fMP4 segments with relative file names
//
// The returned [Command] carries the output directory as its working
// directory because the muxer arguments are relative.
package ffmpeg

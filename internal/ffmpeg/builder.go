package ffmpeg

import (
	"errors"
	"strconv"
	"strings"

	"bedtime-streamer/internal/outputdir"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
)

// SyncMode selects between the default argument set and the variant with
// extra timestamp and A/V sync repair for problematic (often MKV) inputs.
type SyncMode int

const (
	// SyncStandard builds the default command.
	SyncStandard SyncMode = iota
	// SyncForce regenerates timestamps, forces constant frame rate,
	// resamples audio against drift and fixes the keyframe interval.
	SyncForce
)

func (m SyncMode) String() string {
	if m == SyncForce {
		return "force"
	}
	return "standard"
}

// Fixed encoding parameters.
const (
	AudioBitrate     = "192k"
	AudioChannels    = "2"
	SegmentSeconds   = "6"
	KeyframeInterval = "48"
	queueSize        = "1024"
	pixelFormat      = "format=yuv420p"
	timestampReset   = "setpts=PTS-STARTPTS"
	audioResample    = "aresample=async=1:first_pts=0"
	overlayOutput    = "[vout]"
)

// Request is everything Build needs for one stream.
type Request struct {
	Input     string
	Preset    presets.Preset
	Metadata  *probe.Metadata
	OutputDir string
	// SubtitlePath, when non-empty, is burned in and takes priority over
	// any internal subtitle track.
	SubtitlePath string
	Sync         SyncMode
}

// Command is an ffmpeg argument vector (without the binary) and the
// directory the process must run in.
type Command struct {
	Args []string
	Dir  string
}

// Build assembles the ffmpeg arguments for req.
func Build(req Request) (*Command, error) {
	if req.Input == "" {
		return nil, errors.New("input path is empty")
	}
	if req.OutputDir == "" {
		return nil, errors.New("output directory is empty")
	}
	if req.Preset.VideoCodec == "" || req.Preset.AudioCodec == "" {
		return nil, errors.New("preset has no codec")
	}

	force := req.Sync == SyncForce
	filter := selectFilter(req)

	args := make([]string, 0, 64)

	args = append(args, "-y")
	if force {
		args = append(args, "-fflags", "+genpts", "-thread_queue_size", queueSize)
	}

	args = append(args, "-i", req.Input)

	if force {
		videoMap := "0:v:0"
		if filter.complex {
			videoMap = overlayOutput
		}
		args = append(args,
			"-fps_mode", "cfr",
			"-async", "1",
			"-max_muxing_queue_size", queueSize,
			"-map", videoMap,
			"-map", "0:a:0",
		)
	}

	if filter.complex {
		args = append(args, "-filter_complex", filter.graph)
	} else {
		args = append(args, "-vf", filter.graph)
	}

	args = append(args, "-c:v", req.Preset.VideoCodec)
	args = append(args, req.Preset.VideoFlags...)
	if force {
		args = append(args,
			"-g", KeyframeInterval,
			"-keyint_min", KeyframeInterval,
			"-sc_threshold", "0",
		)
	}

	args = append(args,
		"-c:a", req.Preset.AudioCodec,
		"-b:a", AudioBitrate,
		"-ac", AudioChannels,
	)
	if force {
		args = append(args, "-af", audioResample)
	}

	args = append(args,
		"-f", "hls",
		"-hls_playlist_type", "event",
		"-hls_flags", "independent_segments+omit_endlist",
		"-hls_segment_type", "fmp4",
		"-hls_time", SegmentSeconds,
		"-hls_list_size", "0",
		"-hls_fmp4_init_filename", outputdir.InitSegment,
		"-hls_segment_filename", outputdir.SegmentTemplate,
		outputdir.Playlist,
	)

	return &Command{Args: args, Dir: ToSlash(req.OutputDir)}, nil
}

type videoFilter struct {
	graph   string
	complex bool
}

// selectFilter picks exactly one burn-in branch.
func selectFilter(req Request) videoFilter {
	force := req.Sync == SyncForce
	meta := req.Metadata

	chain := func(parts ...string) videoFilter {
		if force {
			parts = append([]string{timestampReset}, parts...)
		}
		return videoFilter{graph: strings.Join(parts, ",")}
	}

	switch {
	case req.SubtitlePath != "":
		return chain("subtitles='"+EscapeFilterPath(req.SubtitlePath)+"'", pixelFormat)

	case meta != nil && meta.TextSubtitleIndex != nil:
		sub := "subtitles='" + EscapeFilterPath(req.Input) + "':si=" + strconv.Itoa(*meta.TextSubtitleIndex)
		return chain(sub, pixelFormat)

	case meta != nil && meta.PGSSubtitleIndex != nil:
		idx := strconv.Itoa(*meta.PGSSubtitleIndex)
		if force {
			return videoFilter{
				graph:   "[0:v:0][0:s:" + idx + "]overlay," + pixelFormat + "," + timestampReset + overlayOutput,
				complex: true,
			}
		}
		return videoFilter{graph: "[0:v][0:s:" + idx + "]overlay," + pixelFormat, complex: true}

	default:
		return chain(pixelFormat)
	}
}

// ToSlash converts Windows separators to forward slashes regardless of the
// host OS.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// EscapeFilterPath makes p safe inside a single-quoted filtergraph option
// value: separators become forward slashes, each quote closes the literal,
// emits an escaped quote and reopens it, and colons are escaped.
func EscapeFilterPath(p string) string {
	p = ToSlash(p)
	p = strings.ReplaceAll(p, "'", `'\\\''`)
	p = strings.ReplaceAll(p, ":", `\:`)
	return p
}

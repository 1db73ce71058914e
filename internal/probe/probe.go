package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"bedtime-streamer/internal/filesystem"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
)

// DefaultTimeout bounds a single ffprobe invocation.
const DefaultTimeout = 10 * time.Second

// PGSCodec is the ffprobe codec name of Blu-ray presentation graphics.
const PGSCodec = "hdmv_pgs_subtitle"

var (
	// ErrProbe wraps every probe failure.
	ErrProbe = errors.New("probe failed")
	// ErrTimeout marks a probe that exceeded its deadline. Errors carrying it
	// also match ErrProbe.
	ErrTimeout = errors.New("probe timed out")
)

// textSubtitleCodecs are the codecs libass can render via the subtitles filter.
var textSubtitleCodecs = map[string]bool{
	"ass":      true,
	"ssa":      true,
	"subrip":   true,
	"srt":      true,
	"mov_text": true,
}

// Metadata is the per-call summary of a media file.
type Metadata struct {
	HasInternalSubtitles bool   `json:"has_internal_subs"`
	TextSubtitleIndex    *int   `json:"text_sub_index"`
	PGSSubtitleIndex     *int   `json:"pgs_sub_index"`
	VideoCodec           string `json:"codec"`
	Resolution           string `json:"resolution"`
}

// SubtitleMode names the burn-in branch the metadata selects when no
// external subtitle file is given.
func (m *Metadata) SubtitleMode() string {
	switch {
	case m == nil:
		return "none"
	case m.TextSubtitleIndex != nil:
		return "text"
	case m.PGSSubtitleIndex != nil:
		return "pgs"
	default:
		return "none"
	}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Prober runs ffprobe with a bounded timeout.
type Prober struct {
	binary  string
	timeout time.Duration
}

// New creates a Prober. An empty binary means "ffprobe" from PATH and a
// non-positive timeout means DefaultTimeout.
func New(binary string, timeout time.Duration) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{binary: binary, timeout: timeout}
}

// Probe inspects filePath. Metadata is never cached.
func (p *Prober) Probe(ctx context.Context, filePath string) (meta *Metadata, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		switch {
		case errors.Is(err, ErrTimeout):
			status = "timeout"
		case err != nil:
			status = "error"
		}
		metrics.ProbeTotal.WithLabelValues(status).Inc()
		metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	}()

	if _, statErr := filesystem.StatWithRetry(filePath, filesystem.DefaultRetryConfig()); statErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbe, statErr)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_streams",
		"-of", "json",
		filePath,
	)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: ffprobe %q after %v", ErrProbe, ErrTimeout, filePath, p.timeout)
		}
		return nil, fmt.Errorf("%w: ffprobe %q: %v - %s", ErrProbe, filePath, runErr, strings.TrimSpace(stderr.String()))
	}

	meta, err = ParseJSON(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	logging.Debug("Probed %s: codec=%s resolution=%s subtitles=%s",
		filePath, meta.VideoCodec, meta.Resolution, meta.SubtitleMode())
	return meta, nil
}

// ParseJSON reduces raw `ffprobe -show_streams -of json` output to Metadata.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe JSON: %v", ErrProbe, err)
	}
	return summarize(raw.Streams), nil
}

func summarize(streams []ffprobeStream) *Metadata {
	meta := &Metadata{
		VideoCodec: "unknown",
		Resolution: "unknown",
	}

	subOrdinal := 0
	for _, s := range streams {
		if s.CodecType != "subtitle" {
			continue
		}
		switch {
		case textSubtitleCodecs[s.CodecName]:
			if meta.TextSubtitleIndex == nil {
				idx := subOrdinal
				meta.TextSubtitleIndex = &idx
			}
		case s.CodecName == PGSCodec:
			if meta.PGSSubtitleIndex == nil {
				idx := subOrdinal
				meta.PGSSubtitleIndex = &idx
			}
		}
		subOrdinal++
	}
	meta.HasInternalSubtitles = meta.TextSubtitleIndex != nil || meta.PGSSubtitleIndex != nil

	for _, s := range streams {
		if s.CodecType == "video" {
			meta.VideoCodec = s.CodecName
			meta.Resolution = fmt.Sprintf("%dx%d", s.Width, s.Height)
			break
		}
	}

	return meta
}

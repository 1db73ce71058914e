package probe

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func equalIndex(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantText   *int
		wantPGS    *int
		wantSubs   bool
		wantCodec  string
		wantRes    string
		wantSubMod string
	}{
		{
			name: "text and pgs counted among subtitle streams only",
			input: `{"streams":[
				{"index":0,"codec_type":"video","codec_name":"h264","width":1920,"height":1080},
				{"index":1,"codec_type":"audio","codec_name":"aac"},
				{"index":2,"codec_type":"subtitle","codec_name":"subrip"},
				{"index":3,"codec_type":"subtitle","codec_name":"hdmv_pgs_subtitle"}
			]}`,
			wantText:   intPtr(0),
			wantPGS:    intPtr(1),
			wantSubs:   true,
			wantCodec:  "h264",
			wantRes:    "1920x1080",
			wantSubMod: "text",
		},
		{
			name: "first text stream wins",
			input: `{"streams":[
				{"codec_type":"video","codec_name":"hevc","width":3840,"height":2160},
				{"codec_type":"subtitle","codec_name":"dvd_subtitle"},
				{"codec_type":"subtitle","codec_name":"ass"},
				{"codec_type":"subtitle","codec_name":"subrip"}
			]}`,
			wantText:   intPtr(1),
			wantSubs:   true,
			wantCodec:  "hevc",
			wantRes:    "3840x2160",
			wantSubMod: "text",
		},
		{
			name: "first pgs stream wins",
			input: `{"streams":[
				{"codec_type":"video","codec_name":"h264","width":1280,"height":720},
				{"codec_type":"subtitle","codec_name":"hdmv_pgs_subtitle"},
				{"codec_type":"subtitle","codec_name":"hdmv_pgs_subtitle"}
			]}`,
			wantPGS:    intPtr(0),
			wantSubs:   true,
			wantCodec:  "h264",
			wantRes:    "1280x720",
			wantSubMod: "pgs",
		},
		{
			name: "mov_text and srt are text codecs",
			input: `{"streams":[
				{"codec_type":"subtitle","codec_name":"mov_text"},
				{"codec_type":"subtitle","codec_name":"srt"}
			]}`,
			wantText:   intPtr(0),
			wantSubs:   true,
			wantCodec:  "unknown",
			wantRes:    "unknown",
			wantSubMod: "text",
		},
		{
			name: "unsupported subtitle codecs still advance the ordinal",
			input: `{"streams":[
				{"codec_type":"video","codec_name":"h264","width":720,"height":576},
				{"codec_type":"subtitle","codec_name":"dvb_subtitle"},
				{"codec_type":"subtitle","codec_name":"hdmv_pgs_subtitle"},
				{"codec_type":"subtitle","codec_name":"ssa"}
			]}`,
			wantText:   intPtr(2),
			wantPGS:    intPtr(1),
			wantSubs:   true,
			wantCodec:  "h264",
			wantRes:    "720x576",
			wantSubMod: "text",
		},
		{
			name: "first video stream is used",
			input: `{"streams":[
				{"codec_type":"audio","codec_name":"ac3"},
				{"codec_type":"video","codec_name":"mpeg4","width":640,"height":480},
				{"codec_type":"video","codec_name":"mjpeg","width":320,"height":240}
			]}`,
			wantCodec:  "mpeg4",
			wantRes:    "640x480",
			wantSubMod: "none",
		},
		{
			name:       "no video stream",
			input:      `{"streams":[{"codec_type":"audio","codec_name":"flac"}]}`,
			wantCodec:  "unknown",
			wantRes:    "unknown",
			wantSubMod: "none",
		},
		{
			name:       "empty stream list",
			input:      `{}`,
			wantCodec:  "unknown",
			wantRes:    "unknown",
			wantSubMod: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseJSON() error: %v", err)
			}
			if !equalIndex(meta.TextSubtitleIndex, tt.wantText) {
				t.Errorf("TextSubtitleIndex = %v, want %v", deref(meta.TextSubtitleIndex), deref(tt.wantText))
			}
			if !equalIndex(meta.PGSSubtitleIndex, tt.wantPGS) {
				t.Errorf("PGSSubtitleIndex = %v, want %v", deref(meta.PGSSubtitleIndex), deref(tt.wantPGS))
			}
			if meta.HasInternalSubtitles != tt.wantSubs {
				t.Errorf("HasInternalSubtitles = %v, want %v", meta.HasInternalSubtitles, tt.wantSubs)
			}
			if meta.VideoCodec != tt.wantCodec {
				t.Errorf("VideoCodec = %q, want %q", meta.VideoCodec, tt.wantCodec)
			}
			if meta.Resolution != tt.wantRes {
				t.Errorf("Resolution = %q, want %q", meta.Resolution, tt.wantRes)
			}
			if got := meta.SubtitleMode(); got != tt.wantSubMod {
				t.Errorf("SubtitleMode() = %q, want %q", got, tt.wantSubMod)
			}
		})
	}
}

func deref(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func TestParseJSONMalformed(t *testing.T) {
	for _, input := range []string{"", "not json", `{"streams": "nope"}`} {
		_, err := ParseJSON([]byte(input))
		if !errors.Is(err, ErrProbe) {
			t.Errorf("ParseJSON(%q) error = %v, want ErrProbe", input, err)
		}
	}
}

func TestSubtitleModeNil(t *testing.T) {
	var m *Metadata
	if got := m.SubtitleMode(); got != "none" {
		t.Errorf("nil Metadata SubtitleMode() = %q, want none", got)
	}
}

func TestNewDefaults(t *testing.T) {
	p := New("", 0)
	if p.binary != "ffprobe" {
		t.Errorf("binary = %q, want ffprobe", p.binary)
	}
	if p.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", p.timeout, DefaultTimeout)
	}
}

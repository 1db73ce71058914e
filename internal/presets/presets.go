// Package presets holds the static catalog of encoder presets a stream can
// be started with.
package presets

import (
	"errors"
	"fmt"
)

// DefaultKey is used when a start request does not name a preset.
const DefaultKey = "cpu_fast"

// ErrUnknownPreset is returned when a preset identifier is not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named bundle of encoder choices.
type Preset struct {
	Key        string
	VideoCodec string
	// VideoFlags are passed to ffmpeg verbatim, in order, after -c:v.
	VideoFlags []string
	AudioCodec string
}

// Catalog is an ordered, immutable set of presets.
type Catalog struct {
	order  []string
	byName map[string]Preset
}

// NewCatalog builds a catalog preserving the given order. Duplicate keys
// are rejected.
func NewCatalog(list ...Preset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Preset, len(list))}
	for _, p := range list {
		if p.Key == "" {
			return nil, errors.New("preset key is empty")
		}
		if _, dup := c.byName[p.Key]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Key)
		}
		p.VideoFlags = append([]string(nil), p.VideoFlags...)
		c.byName[p.Key] = p
		c.order = append(c.order, p.Key)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(
		Preset{
			Key:        "cpu_fast",
			VideoCodec: "libx264",
			VideoFlags: []string{"-preset", "veryfast", "-crf", "23"},
			AudioCodec: "aac",
		},
		Preset{
			Key:        "gpu_nvenc",
			VideoCodec: "h264_nvenc",
			VideoFlags: []string{"-preset", "p4", "-b:v", "4M"},
			AudioCodec: "aac",
		},
		Preset{
			Key:        "gpu_nvenc_high_quality",
			VideoCodec: "h264_nvenc",
			VideoFlags: []string{"-preset", "p7", "-b:v", "8M"},
			AudioCodec: "aac",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the preset for key. The returned flags slice is a copy.
func (c *Catalog) Lookup(key string) (Preset, error) {
	p, ok := c.byName[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	p.VideoFlags = append([]string(nil), p.VideoFlags...)
	return p, nil
}

// Keys returns the preset identifiers in declared order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

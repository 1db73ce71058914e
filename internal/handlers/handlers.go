package handlers

import (
	"context"

	"bedtime-streamer/internal/database"
	"bedtime-streamer/internal/library"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
	"bedtime-streamer/internal/stream"
)

// StreamController starts and stops the stream.
type StreamController interface {
	Start(ctx context.Context, req stream.Request) (*stream.Session, error)
	Stop() error
	Status() stream.Status
}

// Library lists media and bounds which paths may be streamed.
type Library interface {
	Scan() ([]library.Folder, error)
	Contains(path string) bool
}

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Metadata, error)
}

// HistoryReader lists past streams.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]database.Session, error)
}

// Config holds the dependencies of Handlers. History may be nil when
// stream history is disabled.
type Config struct {
	Stream  StreamController
	Library Library
	Prober  Prober
	History HistoryReader
	Presets *presets.Catalog
	HLSDir  string
}

// Handlers implements the HTTP endpoints.
type Handlers struct {
	stream  StreamController
	library Library
	prober  Prober
	history HistoryReader
	presets *presets.Catalog
	hlsDir  string
}

// New creates Handlers from cfg.
func New(cfg Config) *Handlers {
	if cfg.Presets == nil {
		cfg.Presets = presets.Default()
	}
	return &Handlers{
		stream:  cfg.Stream,
		library: cfg.Library,
		prober:  cfg.Prober,
		history: cfg.History,
		presets: cfg.Presets,
		hlsDir:  cfg.HLSDir,
	}
}

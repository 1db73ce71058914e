package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bedtime-streamer/internal/database"
	"bedtime-streamer/internal/ffmpeg"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
	"bedtime-streamer/internal/outputdir"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
	"bedtime-streamer/internal/supervisor"
)

const historyTimeout = 5 * time.Second

// ErrInvalidRequest is returned for requests missing required fields.
var ErrInvalidRequest = errors.New("invalid stream request")

// Prober inspects a source file.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Metadata, error)
}

// Transcoder runs the ffmpeg process.
type Transcoder interface {
	Start(cmd *ffmpeg.Command) (supervisor.Info, error)
	Stop() error
	State() supervisor.State
	Exits() <-chan supervisor.Exit
}

// History persists started streams.
type History interface {
	RecordStart(ctx context.Context, s *database.Session) error
	RecordEnd(ctx context.Context, id uuid.UUID, endedAt time.Time, status string) error
}

// Request asks for a stream of Path.
type Request struct {
	Path string `json:"path"`
	// Preset defaults to presets.DefaultKey when empty.
	Preset       string `json:"preset"`
	SubtitlePath string `json:"sub_path"`
	ForceSync    bool   `json:"force_sync"`
}

// Session describes the stream the service started.
type Session struct {
	ID           uuid.UUID       `json:"id"`
	Path         string          `json:"path"`
	Preset       string          `json:"preset"`
	SubtitlePath string          `json:"sub_path,omitempty"`
	Subtitles    string          `json:"subtitles"`
	ForceSync    bool            `json:"force_sync"`
	PID          int             `json:"pid"`
	StartedAt    time.Time       `json:"started_at"`
	Metadata     *probe.Metadata `json:"metadata"`
}

// ExitInfo describes how the last stream ended.
type ExitInfo struct {
	SessionID  uuid.UUID `json:"session_id"`
	PID        int       `json:"pid"`
	Status     string    `json:"status"`
	ExitedAt   time.Time `json:"exited_at"`
	StderrTail string    `json:"stderr_tail,omitempty"`
}

// Status is a snapshot of the service.
type Status struct {
	Running  bool      `json:"running"`
	Session  *Session  `json:"session,omitempty"`
	LastExit *ExitInfo `json:"last_exit,omitempty"`
}

// Config holds the collaborators of a Service. History may be nil.
type Config struct {
	Presets    *presets.Catalog
	Prober     Prober
	Transcoder Transcoder
	History    History
	OutputDir  string
}

// Service owns the stream lifecycle.
type Service struct {
	presets    *presets.Catalog
	prober     Prober
	transcoder Transcoder
	history    History
	outputDir  string

	mu       sync.Mutex
	current  *Session
	lastExit *ExitInfo
	// exited holds sessions whose process ended before handleExit saw it,
	// keyed by pid.
	exited map[int]*Session
}

// New creates a Service.
func New(cfg Config) *Service {
	if cfg.Presets == nil {
		cfg.Presets = presets.Default()
	}
	return &Service{
		presets:    cfg.Presets,
		prober:     cfg.Prober,
		transcoder: cfg.Transcoder,
		history:    cfg.History,
		outputDir:  cfg.OutputDir,
		exited:     make(map[int]*Session),
	}
}

// Start replaces whatever is streaming with req. Nothing is stopped or
// removed unless the request resolves, probes and builds successfully.
// Only the stop, cleanup and launch steps hold the lock.
func (s *Service) Start(ctx context.Context, req Request) (*Session, error) {
	if req.Path == "" {
		metrics.StreamStartErrors.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: path is required", ErrInvalidRequest)
	}
	if req.Preset == "" {
		req.Preset = presets.DefaultKey
	}

	preset, err := s.presets.Lookup(req.Preset)
	if err != nil {
		metrics.StreamStartErrors.WithLabelValues("unknown_preset").Inc()
		return nil, err
	}

	meta, err := s.prober.Probe(ctx, req.Path)
	if err != nil {
		metrics.StreamStartErrors.WithLabelValues("probe").Inc()
		return nil, err
	}

	mode := ffmpeg.SyncStandard
	if req.ForceSync {
		mode = ffmpeg.SyncForce
	}
	cmd, err := ffmpeg.Build(ffmpeg.Request{
		Input:        req.Path,
		Preset:       preset,
		Metadata:     meta,
		OutputDir:    s.outputDir,
		SubtitlePath: req.SubtitlePath,
		Sync:         mode,
	})
	if err != nil {
		metrics.StreamStartErrors.WithLabelValues("build").Inc()
		return nil, fmt.Errorf("failed to build transcoder command: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopLocked(); err != nil {
		metrics.StreamStartErrors.WithLabelValues("stop").Inc()
		return nil, err
	}

	if err := outputdir.Prepare(s.outputDir); err != nil {
		metrics.StreamStartErrors.WithLabelValues("cleanup").Inc()
		return nil, err
	}
	removed, err := outputdir.Cleanup(s.outputDir)
	if err != nil {
		metrics.StreamStartErrors.WithLabelValues("cleanup").Inc()
		return nil, err
	}
	logging.Debug("Removed %d stale artifacts from %s", removed, s.outputDir)

	info, err := s.transcoder.Start(cmd)
	if err != nil {
		metrics.StreamStartErrors.WithLabelValues("launch").Inc()
		return nil, err
	}

	subtitles := meta.SubtitleMode()
	if req.SubtitlePath != "" {
		subtitles = "external"
	}
	session := &Session{
		ID:           uuid.New(),
		Path:         req.Path,
		Preset:       preset.Key,
		SubtitlePath: req.SubtitlePath,
		Subtitles:    subtitles,
		ForceSync:    req.ForceSync,
		PID:          info.PID,
		StartedAt:    info.StartedAt,
		Metadata:     meta,
	}
	s.current = session
	metrics.StreamsStartedTotal.WithLabelValues(preset.Key, subtitles).Inc()
	logging.Info("Stream started: %s (preset=%s, subtitles=%s, sync=%s, pid=%d)",
		req.Path, preset.Key, subtitles, mode, info.PID)

	s.recordStart(session)

	copied := *session
	return &copied, nil
}

// Stop ends the current stream. It is safe to call when nothing runs.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Service) stopLocked() error {
	session := s.current
	if session != nil && s.transcoder.State() == supervisor.Idle {
		// The process is gone but its exit is still queued for Run.
		s.exited[session.PID] = session
		s.current = nil
		return nil
	}

	if err := s.transcoder.Stop(); err != nil {
		return fmt.Errorf("failed to stop transcoder: %w", err)
	}
	if session != nil {
		logging.Info("Stream stopped: %s", session.Path)
		s.current = nil
		s.finishLocked(session, database.StatusStopped, time.Now(), "")
	}
	return nil
}

// Status returns a snapshot of the running stream and the last exit.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.current != nil && s.transcoder.State() == supervisor.Running}
	if s.current != nil {
		cur := *s.current
		st.Session = &cur
	}
	if s.lastExit != nil {
		last := *s.lastExit
		st.LastExit = &last
	}
	return st
}

// Run follows transcoder exits until ctx is done.
func (s *Service) Run(ctx context.Context) {
	exits := s.transcoder.Exits()
	for {
		select {
		case <-ctx.Done():
			return
		case exit, ok := <-exits:
			if !ok {
				return
			}
			s.handleExit(exit)
		}
	}
}

func (s *Service) handleExit(exit supervisor.Exit) {
	reason := exitReason(exit)
	metrics.TranscoderExitsTotal.WithLabelValues(reason).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.exited[exit.PID]
	switch {
	case ok:
		delete(s.exited, exit.PID)
	case s.current != nil && s.current.PID == exit.PID:
		session = s.current
		s.current = nil
	default:
		logging.Debug("Transcoder (pid %d) exit already accounted for: %s", exit.PID, reason)
		return
	}

	status := database.StatusCompleted
	if exit.Err != nil {
		status = fmt.Sprintf("%s: %v", database.StatusCrashed, exit.Err)
		logging.Warn("Transcoder (pid %d) exited unexpectedly: %v\n%s", exit.PID, exit.Err, exit.StderrTail)
	} else {
		logging.Info("Transcoder (pid %d) finished %s", exit.PID, session.Path)
	}
	s.finishLocked(session, status, exit.ExitedAt, exit.StderrTail)
}

// finishLocked records how session ended.
func (s *Service) finishLocked(session *Session, status string, endedAt time.Time, stderrTail string) {
	s.lastExit = &ExitInfo{
		SessionID:  session.ID,
		PID:        session.PID,
		Status:     status,
		ExitedAt:   endedAt,
		StderrTail: stderrTail,
	}

	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := s.history.RecordEnd(ctx, session.ID, endedAt, status); err != nil {
		logging.Warn("failed to record end of session %s: %v", session.ID, err)
	}
}

func (s *Service) recordStart(session *Session) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	err := s.history.RecordStart(ctx, &database.Session{
		ID:           session.ID,
		SourcePath:   session.Path,
		Preset:       session.Preset,
		SubtitlePath: session.SubtitlePath,
		ForceSync:    session.ForceSync,
		StartedAt:    session.StartedAt,
	})
	if err != nil {
		logging.Warn("failed to record session %s: %v", session.ID, err)
	}
}

func exitReason(exit supervisor.Exit) string {
	switch {
	case exit.Stopped:
		return "stopped"
	case exit.Err != nil:
		return "crashed"
	default:
		return "completed"
	}
}

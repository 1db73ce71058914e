package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"bedtime-streamer/internal/ffmpeg"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
)

// DefaultStopTimeout is how long Stop waits after the termination signal
// before killing the process.
const DefaultStopTimeout = 5 * time.Second

const (
	stderrTailSize = 4 * 1024
	exitBuffer     = 16
	waitDelay      = 2 * time.Second
)

// ErrLaunch wraps failures to start the transcoder binary.
var ErrLaunch = errors.New("failed to launch transcoder")

// State is the supervisor's lifecycle state.
type State int

const (
	// Idle means no process is held.
	Idle State = iota
	// Running means a process has been started and has not exited.
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Options configures a Supervisor.
type Options struct {
	StopTimeout time.Duration
	// Env is appended to the service's environment for each process.
	Env []string
}

// Info describes the running process.
type Info struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Args      []string  `json:"args"`
	Dir       string    `json:"dir"`
}

// Exit reports the end of a process.
type Exit struct {
	PID       int
	StartedAt time.Time
	ExitedAt  time.Time
	Err       error
	// Stopped is true when the exit followed a Stop or a replacing Start.
	Stopped bool
	// Killed is true when the stop timeout elapsed and the process was killed.
	Killed     bool
	StderrTail string
}

type process struct {
	cmd      *exec.Cmd
	info     Info
	stderr   *tailBuffer
	done     chan struct{}
	err      error
	exitedAt time.Time
	stopping atomic.Bool
	killed   atomic.Bool
}

// Supervisor starts, replaces and stops a single external process.
type Supervisor struct {
	binary string
	opts   Options

	mu   sync.Mutex
	proc *process

	exits chan Exit
}

// New creates a Supervisor that runs binary.
func New(binary string, opts Options) *Supervisor {
	if binary == "" {
		binary = "ffmpeg"
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	return &Supervisor{
		binary: binary,
		opts:   opts,
		exits:  make(chan Exit, exitBuffer),
	}
}

// Exits delivers one notification per process exit. Notifications are
// dropped if nobody drains the channel.
func (s *Supervisor) Exits() <-chan Exit {
	return s.exits
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return Idle
	}
	return Running
}

// Current returns information about the running process, if any.
func (s *Supervisor) Current() (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return Info{}, false
	}
	return s.proc.info, true
}

// Start launches the transcoder for cmd without waiting for it. A running
// process is stopped first and has exited before the new one is spawned.
func (s *Supervisor) Start(cmd *ffmpeg.Command) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != nil {
		logging.Info("Replacing running transcoder (pid %d)", s.proc.info.PID)
		if err := s.stopLocked(); err != nil {
			return Info{}, err
		}
	}

	c := exec.Command(s.binary, cmd.Args...)
	c.Dir = cmd.Dir
	if len(s.opts.Env) > 0 {
		c.Env = append(os.Environ(), s.opts.Env...)
	}
	tail := newTailBuffer(stderrTailSize)
	c.Stderr = tail
	c.WaitDelay = waitDelay
	setProcessGroup(c)

	if err := c.Start(); err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrLaunch, s.binary, err)
	}

	p := &process{
		cmd: c,
		info: Info{
			PID:       c.Process.Pid,
			StartedAt: time.Now(),
			Args:      append([]string(nil), cmd.Args...),
			Dir:       cmd.Dir,
		},
		stderr: tail,
		done:   make(chan struct{}),
	}
	s.proc = p
	metrics.TranscoderRunning.Set(1)

	go s.wait(p)

	logging.Info("Transcoder started (pid %d) in %s", p.info.PID, cmd.Dir)
	logging.Debug("Transcoder args: %q", cmd.Args)
	return p.info, nil
}

// Stop terminates the running process and waits for it to exit. It is a
// no-op when Idle.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Supervisor) stopLocked() error {
	p := s.proc
	if p == nil {
		return nil
	}

	start := time.Now()
	p.stopping.Store(true)

	if err := terminate(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logging.Warn("failed to signal transcoder (pid %d): %v", p.info.PID, err)
	}

	select {
	case <-p.done:
	case <-time.After(s.opts.StopTimeout):
		logging.Warn("Transcoder (pid %d) did not exit within %v, killing", p.info.PID, s.opts.StopTimeout)
		p.killed.Store(true)
		metrics.TranscoderForcedKills.Inc()
		if err := kill(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill transcoder (pid %d): %w", p.info.PID, err)
		}
		<-p.done
	}

	s.proc = nil
	metrics.TranscoderRunning.Set(0)
	metrics.TranscoderStopDuration.Observe(time.Since(start).Seconds())
	logging.Info("Transcoder stopped (pid %d) after %v", p.info.PID, time.Since(start).Round(time.Millisecond))
	return nil
}

// wait reaps p and publishes its exit.
func (s *Supervisor) wait(p *process) {
	p.err = p.cmd.Wait()
	p.exitedAt = time.Now()
	close(p.done)

	s.mu.Lock()
	if s.proc == p {
		s.proc = nil
		metrics.TranscoderRunning.Set(0)
	}
	s.mu.Unlock()

	exit := Exit{
		PID:        p.info.PID,
		StartedAt:  p.info.StartedAt,
		ExitedAt:   p.exitedAt,
		Err:        p.err,
		Stopped:    p.stopping.Load(),
		Killed:     p.killed.Load(),
		StderrTail: p.stderr.String(),
	}

	select {
	case s.exits <- exit:
	default:
		logging.Warn("Dropped exit notification for transcoder (pid %d)", p.info.PID)
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// Package session runs the simulation loop: it owns the current grid,
// advances it on a schedule, and publishes rendered frames to a sink.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/thejezzi/conway/logging"
	"github.com/thejezzi/conway/model"
	"github.com/thejezzi/conway/utils"
)

// State describes where a session is in its lifecycle.
type State int

const (
	// StateIdle means the session exists but Start has not been called.
	StateIdle State = iota
	// StateRunning means ticks are scheduled and generations advance.
	StateRunning
	// StatePaused means the grid is preserved but ticks are suspended.
	StatePaused
	// StateStopped is terminal; a stopped session never ticks again.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrNoActiveSession is returned by lifecycle operations that need a live
// simulation when there is none. Callers may treat it as advisory.
var ErrNoActiveSession = errors.New("no active session")

// Frame is one rendered generation as published to the sink.
type Frame struct {
	Generation int            `json:"generation"`
	Population int            `json:"population"`
	Lines      []string       `json:"lines"`
	Stagnant   bool           `json:"stagnant"`
	Stats      utils.Snapshot `json:"stats"`
}

// Sink receives frames from a running session. PublishFrame is called with
// the session lock held, so implementations must return quickly and must
// not call back into the session. In exchange, no frame is ever delivered
// after Stop returns.
type Sink interface {
	PublishFrame(f Frame)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(f Frame)

// PublishFrame calls fn(f).
func (fn SinkFunc) PublishFrame(f Frame) { fn(f) }

// StateSink is an optional upgrade for sinks that also want lifecycle
// transitions. The session checks for it with a type assertion; the same
// calling rules as PublishFrame apply.
type StateSink interface {
	PublishState(s State)
}

// Grids at or above this many cells are stepped with the sharded parallel
// path; smaller ones single-threaded, where goroutine overhead dominates.
const parallelCellThreshold = 4096

// Sessions keep this many recent grid hashes to flag still lifes and short
// oscillators as stagnant.
const hashHistoryLimit = 5

// Session drives one simulation: seed it via Start, control it with Pause,
// Resume and Stop. Sessions are single-use; after Stop the caller builds a
// fresh one. All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	cfg       utils.Config
	sched     Scheduler
	sink      Sink
	logger    *slog.Logger
	formatter model.Formatter
	pool      *model.GridPool

	cur        *model.Grid
	handle     Handle
	state      State
	epoch      uint64
	generation int
	stats      *utils.Stats
	history    []string
	lastTick   time.Time
}

// New builds an idle session. A nil scheduler falls back to real timers, a
// nil sink drops frames and a nil logger discards logs.
func New(cfg utils.Config, sched Scheduler, sink Sink, logger *slog.Logger) *Session {
	if sched == nil {
		sched = TickerScheduler{}
	}
	if sink == nil {
		sink = SinkFunc(func(Frame) {})
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		cfg:       cfg,
		sched:     sched,
		sink:      sink,
		logger:    logger,
		formatter: model.NewFormatter(cfg.AliveGlyph, cfg.DeadGlyph),
		pool:      model.NewGridPool(),
		state:     StateIdle,
		stats:     utils.NewStats(),
	}
}

// Start seeds the session with grid and begins ticking. The initial state
// is published immediately as generation zero; the first step lands one
// interval later. Starting over a running or paused session discards the
// old grid and restarts from the new one. A stopped session cannot be
// restarted.
func (s *Session) Start(grid *model.Grid) error {
	if grid == nil {
		return errors.New("[Start] nil grid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return errors.Wrap(ErrNoActiveSession, "[Start] session already stopped")
	}

	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.releaseCurrentLocked()

	s.epoch++
	s.cur = grid
	s.generation = 0
	s.stats = utils.NewStats()
	s.history = s.history[:0]
	s.lastTick = time.Now()

	s.setStateLocked(StateRunning)
	s.logger.Info("session started",
		"width", grid.GetWidth(),
		"height", grid.GetHeight(),
		"population", grid.CountLivingCells(),
		"interval", s.cfg.Interval(),
	)

	s.publishLocked(false)
	s.armLocked()
	return nil
}

// Pause suspends ticking while keeping the grid. Pausing a paused session
// is a no-op; pausing before Start or after Stop reports ErrNoActiveSession.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePaused:
		return nil
	case StateIdle, StateStopped:
		return errors.Wrap(ErrNoActiveSession, "[Pause] nothing to pause")
	}

	s.epoch++
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.setStateLocked(StatePaused)
	s.logger.Debug("session paused", "generation", s.generation)
	return nil
}

// Resume continues a paused session. The next step lands one full interval
// after the call. Resuming a running session is a no-op; resuming before
// Start or after Stop reports ErrNoActiveSession.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return nil
	case StateIdle, StateStopped:
		return errors.Wrap(ErrNoActiveSession, "[Resume] nothing to resume")
	}

	s.epoch++
	s.setStateLocked(StateRunning)
	s.armLocked()
	s.logger.Debug("session resumed", "generation", s.generation)
	return nil
}

// Stop ends the session for good and releases its grids. Once Stop returns
// no further frame is published. Stopping twice, or before Start, reports
// ErrNoActiveSession.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle || s.state == StateStopped {
		return errors.Wrap(ErrNoActiveSession, "[Stop] nothing to stop")
	}

	s.epoch++
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.releaseCurrentLocked()
	s.setStateLocked(StateStopped)
	s.logger.Info("session stopped", "generations", s.generation)
	return nil
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation reports how many steps have been applied since Start.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Current returns the newest generation, or nil when no grid is live. The
// grid is recycled on a later tick, so callers must not hold it across
// ticks.
func (s *Session) Current() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Stats returns a copy of the current throughput figures.
func (s *Session) Stats() utils.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Snapshot()
}

// armLocked schedules the repeating tick for the current epoch. Callers
// hold s.mu.
func (s *Session) armLocked() {
	epoch := s.epoch
	s.handle = s.sched.ScheduleRepeating(s.cfg.Interval(), func() {
		s.tick(epoch)
	})
}

// tick advances the simulation by one generation. Callbacks from canceled
// schedules may still arrive here; the epoch check drops them.
func (s *Session) tick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.state != StateRunning || s.cur == nil {
		return
	}

	var next *model.Grid
	if s.cur.GetWidth()*s.cur.GetHeight() >= parallelCellThreshold {
		next = s.cur.StepParallel(s.pool)
	} else {
		next = s.cur.Step(s.pool)
	}

	prev := s.cur
	s.cur = next
	s.generation++
	// Generation zero is the caller's seed and stays theirs; everything
	// after came out of the pool and can go back.
	if s.generation >= 2 {
		s.pool.Put(prev)
	}

	now := time.Now()
	s.stats.Update(s.generation, s.cur.CountLivingCells(), now.Sub(s.lastTick))
	s.lastTick = now

	stagnant := s.observeHashLocked(s.cur.GetGridHash())
	s.publishLocked(stagnant)
}

// observeHashLocked records the hash of the newest grid and reports whether
// it matches any recent one, which marks a still life or a short-period
// oscillator.
func (s *Session) observeHashLocked(hash string) bool {
	stagnant := false
	for _, h := range s.history {
		if h == hash {
			stagnant = true
			break
		}
	}
	s.history = append(s.history, hash)
	if len(s.history) > hashHistoryLimit {
		s.history = s.history[len(s.history)-hashHistoryLimit:]
	}
	return stagnant
}

// publishLocked renders the current grid and hands the frame to the sink.
// Frames are trimmed; only the blank editing canvas needs full-width rows.
// Callers hold s.mu, which is what guarantees no frame lands after Stop.
func (s *Session) publishLocked(stagnant bool) {
	s.sink.PublishFrame(Frame{
		Generation: s.generation,
		Population: s.cur.CountLivingCells(),
		Lines:      s.formatter.Lines(s.cur, true),
		Stagnant:   stagnant,
		Stats:      s.stats.Snapshot(),
	})
}

// setStateLocked transitions the lifecycle state and tells interested
// sinks. Callers hold s.mu.
func (s *Session) setStateLocked(state State) {
	s.state = state
	if ss, ok := s.sink.(StateSink); ok {
		ss.PublishState(state)
	}
}

// releaseCurrentLocked returns the current grid to the pool if the session
// produced it. The caller's seed grid is never pooled.
func (s *Session) releaseCurrentLocked() {
	if s.cur != nil && s.generation >= 1 {
		s.pool.Put(s.cur)
	}
	s.cur = nil
}

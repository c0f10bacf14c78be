package rotation

import (
	"context"
	"sync"
	"time"

	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/pkg/logger"
)

// Config holds scheduler timing and observers. Callbacks run on the
// scheduler goroutine and must not block.
type Config struct {
	PageSize         int
	AdvanceInterval  time.Duration
	TickInterval     time.Duration
	InitialDirection board.Direction

	OnChange          func(State)
	OnDirectionChange func(board.Direction)
}

type recomputeRequest struct {
	flightCount int
	pageSize    int
}

// Scheduler drives a State from two independent tickers. A single goroutine
// owns the state; other goroutines talk to it through Recompute and read
// the last published copy with State.
type Scheduler struct {
	cfg    Config
	logger *logger.Logger

	state       State
	recomputeCh chan recomputeRequest

	mu        sync.RWMutex
	published State

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler creates a stopped scheduler
func NewScheduler(cfg Config, loggerObj *logger.Logger) *Scheduler {
	if cfg.AdvanceInterval <= 0 {
		cfg.AdvanceInterval = DefaultStepSeconds * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	step := int(cfg.AdvanceInterval / cfg.TickInterval)
	state := NewState(cfg.PageSize, step, cfg.InitialDirection)

	return &Scheduler{
		cfg:         cfg,
		logger:      loggerObj.Named("rotation"),
		state:       state,
		published:   state,
		recomputeCh: make(chan recomputeRequest, 1),
		stopCh:      make(chan struct{}),
	}
}

// Start launches the scheduler goroutine. Calls after the first are no-ops.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.logger.Info("Starting rotation",
			logger.Duration("advance_interval", s.cfg.AdvanceInterval),
			logger.Duration("tick_interval", s.cfg.TickInterval),
			logger.String("direction", string(s.state.Direction)),
		)
		s.wg.Add(1)
		go s.run(ctx)
	})
}

// Stop halts both timers and waits for the goroutine to exit. It is safe
// to call more than once, and before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// Recompute asks the scheduler to resize for a new board length. It never
// blocks; if a request is still pending it is replaced.
func (s *Scheduler) Recompute(flightCount, pageSize int) {
	req := recomputeRequest{flightCount: flightCount, pageSize: pageSize}
	for {
		select {
		case s.recomputeCh <- req:
			return
		default:
		}
		// Drop the stale request and retry
		select {
		case <-s.recomputeCh:
		default:
		}
	}
}

// State returns the last published state
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	advanceTicker := time.NewTicker(s.cfg.AdvanceInterval)
	defer advanceTicker.Stop()
	countdownTicker := time.NewTicker(s.cfg.TickInterval)
	defer countdownTicker.Stop()

	s.publish()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Rotation stopped by context")
			return
		case <-s.stopCh:
			s.logger.Debug("Rotation stopped")
			return
		case req := <-s.recomputeCh:
			s.state.Recompute(req.flightCount, req.pageSize)
			s.publish()
		case <-countdownTicker.C:
			s.state.Tick()
			s.publish()
		case <-advanceTicker.C:
			flipped := s.state.Advance()
			s.publish()
			if flipped {
				s.logger.Debug("Direction flipped", logger.String("direction", string(s.state.Direction)))
				if s.cfg.OnDirectionChange != nil {
					s.cfg.OnDirectionChange(s.state.Direction)
				}
			}
		}
	}
}

func (s *Scheduler) publish() {
	s.mu.Lock()
	s.published = s.state
	s.mu.Unlock()

	if s.cfg.OnChange != nil {
		s.cfg.OnChange(s.state)
	}
}

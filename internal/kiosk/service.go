// Package kiosk keeps a flight board fresh: it loads reference data, polls
// the traffic feed, runs the enrichment pipeline and optionally cycles pages
// and directions for unattended display.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/internal/refdata"
	"github.com/yegors/flightboard/internal/rotation"
	"github.com/yegors/flightboard/internal/vatsim"
	"github.com/yegors/flightboard/pkg/logger"
)

// SnapshotSource provides traffic snapshots
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*vatsim.Snapshot, error)
}

// TablesLoader provides the reference registries
type TablesLoader interface {
	Load(ctx context.Context) (*refdata.Tables, error)
}

// Config contains the kiosk settings
type Config struct {
	Airport         string
	Direction       board.Direction
	Locale          string
	PageSize        int
	FetchInterval   time.Duration
	Rotate          bool
	AdvanceInterval time.Duration
	TickInterval    time.Duration
}

// Service owns the refresh loop, the current board and the rotation
type Service struct {
	cfg    Config
	source SnapshotSource
	loader TablesLoader
	logger *logger.Logger

	mu         sync.RWMutex
	tables     *refdata.Tables
	pipeline   *board.Pipeline
	snapshot   *vatsim.Snapshot
	direction  board.Direction
	lastErr    error
	lastFetch  time.Time
	fetchOK    bool
	fetchCount int

	cache     *BoardCache
	group     singleflight.Group
	scheduler *rotation.Scheduler
	updates   chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewService creates a new kiosk service
func NewService(cfg Config, source SnapshotSource, loader TablesLoader, loggerObj *logger.Logger) *Service {
	if cfg.Direction == "" {
		cfg.Direction = board.Departure
	}
	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = 15 * time.Second
	}

	s := &Service{
		cfg:       cfg,
		source:    source,
		loader:    loader,
		logger:    loggerObj.Named("kiosk").With(logger.String("airport", cfg.Airport)),
		direction: cfg.Direction,
		cache:     NewBoardCache(loggerObj),
		updates:   make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}

	if cfg.Rotate {
		s.scheduler = rotation.NewScheduler(rotation.Config{
			PageSize:          cfg.PageSize,
			AdvanceInterval:   cfg.AdvanceInterval,
			TickInterval:      cfg.TickInterval,
			InitialDirection:  cfg.Direction,
			OnChange:          func(rotation.State) { s.notify() },
			OnDirectionChange: s.onDirectionChange,
		}, loggerObj)
	}

	return s
}

// Start performs the first refresh and starts the background loops
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting kiosk service",
		logger.String("direction", string(s.cfg.Direction)),
		logger.Duration("fetch_interval", s.cfg.FetchInterval),
		logger.Bool("rotate", s.cfg.Rotate),
	)

	// Initial refresh; a failure is retried by the loop
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("Initial refresh failed", logger.Error(err))
	}

	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}

	s.wg.Add(1)
	go s.fetchLoop(ctx)

	return nil
}

// Stop stops the refresh loop and the rotation. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping kiosk service")
		close(s.stopCh)
	})
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.wg.Wait()
}

// fetchLoop periodically refreshes the board
func (s *Service) fetchLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("Refresh failed", logger.Error(err))
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Refresh loads reference data if needed, fetches a snapshot and rebuilds
// the board for the current direction. On failure the previous board is
// kept.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.ensureTables(ctx); err != nil {
		s.setFetchStatus(err)
		return err
	}

	snap, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		err = fmt.Errorf("failed to fetch snapshot: %w", err)
		s.setFetchStatus(err)
		return err
	}

	s.mu.Lock()
	s.snapshot = snap
	dir := s.direction
	s.mu.Unlock()
	s.setFetchStatus(nil)

	return s.rebuild(dir)
}

// ensureTables loads the registries on first use
func (s *Service) ensureTables(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.tables != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	tables, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables == nil {
		s.tables = tables
		s.pipeline = board.NewPipeline(tables.Airports, tables.Airlines, s.cfg.Locale, s.logger)
	}
	return nil
}

// rebuild runs the pipeline for dir against the latest snapshot. Concurrent
// calls for the same direction share one run.
func (s *Service) rebuild(dir board.Direction) error {
	key := s.cfg.Airport + "/" + string(dir)

	_, err, shared := s.group.Do(key, func() (any, error) {
		s.mu.RLock()
		snap := s.snapshot
		pipeline := s.pipeline
		tables := s.tables
		s.mu.RUnlock()

		if pipeline == nil {
			return nil, board.ErrNoSnapshot
		}

		queried := tables.Airports.Lookup(s.cfg.Airport)
		if queried == nil {
			s.logger.Warn("Airport not in reference data")
		}

		flights, err := pipeline.Run(snap, s.cfg.Airport, dir, queried)
		if err != nil {
			return nil, err
		}

		b := &Board{
			Airport:     s.cfg.Airport,
			AirportInfo: queried,
			Direction:   dir,
			Flights:     flights,
			FeedUpdated: snap.General.UpdateTimestamp,
			BuiltAt:     time.Now(),
		}
		if !s.commit(b) {
			s.logger.Debug("Dropped board built for a stale direction",
				logger.String("direction", string(dir)),
				logger.Int("flights", len(flights)),
			)
			return b, nil
		}
		s.notify()
		return b, nil
	})

	if shared {
		s.logger.Debug("Joined in-flight board build", logger.String("key", key))
	}
	if errors.Is(err, board.ErrNoSnapshot) {
		// Nothing fetched yet; the next refresh builds the board
		return nil
	}
	return err
}

// commit publishes b unless the direction changed while it was being built.
// The check and the publish happen under s.mu so a direction switch cannot
// slip in between.
func (s *Service) commit(b *Board) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Direction != s.direction {
		return false
	}
	s.cache.Set(b)
	if s.scheduler != nil {
		s.scheduler.Recompute(len(b.Flights), s.cfg.PageSize)
	}
	return true
}

// onDirectionChange is called by the scheduler after a flip
func (s *Service) onDirectionChange(dir board.Direction) {
	s.mu.Lock()
	s.direction = dir
	s.mu.Unlock()

	if err := s.rebuild(dir); err != nil {
		s.logger.Error("Failed to rebuild board after direction change", logger.Error(err))
	}
}

// SetDirection switches the board direction and rebuilds it from the
// current snapshot
func (s *Service) SetDirection(dir board.Direction) error {
	s.mu.Lock()
	s.direction = dir
	s.mu.Unlock()
	return s.rebuild(dir)
}

// Direction returns the direction currently shown
func (s *Service) Direction() board.Direction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direction
}

// Board returns the latest board, or nil if none has been built
func (s *Service) Board() *Board {
	return s.cache.Get()
}

// Rotation returns the rotation state and whether rotation is enabled
func (s *Service) Rotation() (rotation.State, bool) {
	if s.scheduler == nil {
		return rotation.State{}, false
	}
	return s.scheduler.State(), true
}

// Updates delivers a signal whenever the board or rotation changes
func (s *Service) Updates() <-chan struct{} {
	return s.updates
}

// LastError returns the error of the last refresh, or nil
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// GetStats returns service statistics
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	stats := map[string]any{
		"airport":     s.cfg.Airport,
		"direction":   string(s.direction),
		"fetch_ok":    s.fetchOK,
		"fetch_count": s.fetchCount,
		"last_fetch":  s.lastFetch,
		"tables":      s.tables != nil,
	}
	s.mu.RUnlock()

	stats["board"] = s.cache.GetStats()
	return stats
}

func (s *Service) setFetchStatus(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.fetchOK = err == nil
	if err == nil {
		s.lastFetch = time.Now()
		s.fetchCount++
	}
}

func (s *Service) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

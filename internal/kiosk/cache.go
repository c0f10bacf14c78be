package kiosk

import (
	"sync"
	"time"

	"github.com/yegors/flightboard/internal/airports"
	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/pkg/logger"
)

// Board is one finished pipeline run
type Board struct {
	Airport     string                 `json:"airport"`
	AirportInfo *airports.Airport      `json:"airport_info,omitempty"`
	Direction   board.Direction        `json:"direction"`
	Flights     []board.EnrichedFlight `json:"flights"`
	FeedUpdated time.Time              `json:"feed_updated"`
	BuiltAt     time.Time              `json:"built_at"`
}

// BoardCache holds the latest board with thread-safe operations. A new
// board replaces the old one wholesale.
type BoardCache struct {
	board  *Board
	logger *logger.Logger
	mu     sync.RWMutex
}

// NewBoardCache creates an empty board cache
func NewBoardCache(logger *logger.Logger) *BoardCache {
	return &BoardCache{
		logger: logger.Named("board-cache"),
	}
}

// Get returns the current board
// Returns nil if no board has been built yet
func (c *BoardCache) Get() *Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.board
}

// Set replaces the current board
func (c *BoardCache) Set(b *Board) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.board = b

	c.logger.Debug("Board cached",
		logger.String("direction", string(b.Direction)),
		logger.Int("flights", len(b.Flights)),
		logger.Time("feed_updated", b.FeedUpdated),
	)
}

// GetStats returns cache statistics
func (c *BoardCache) GetStats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]any{
		"has_data": c.board != nil,
		"flights":  0,
		"built_at": time.Time{},
	}

	if c.board != nil {
		stats["flights"] = len(c.board.Flights)
		stats["built_at"] = c.board.BuiltAt
		stats["direction"] = string(c.board.Direction)
	}

	return stats
}

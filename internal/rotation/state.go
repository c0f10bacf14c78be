package rotation

import (
	"github.com/yegors/flightboard/internal/board"
)

// DefaultStepSeconds is the countdown shown between page changes
const DefaultStepSeconds = 15

// State is the pagination and direction cycle of an unattended board
type State struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	PageSize   int             `json:"page_size"`
	Direction  board.Direction `json:"direction"`
	Countdown  int             `json:"countdown"`

	step int
}

// NewState returns the initial state: first page of the given direction
// with a full countdown
func NewState(pageSize, stepSeconds int, dir board.Direction) State {
	if stepSeconds <= 0 {
		stepSeconds = DefaultStepSeconds
	}
	if dir == "" {
		dir = board.Departure
	}
	return State{
		Page:       0,
		TotalPages: 1,
		PageSize:   max(1, pageSize),
		Direction:  dir,
		Countdown:  stepSeconds,
		step:       stepSeconds,
	}
}

// Recompute updates the page count for a new board length
func (s *State) Recompute(flightCount, pageSize int) {
	s.PageSize = max(1, pageSize)
	s.TotalPages = max(1, (flightCount+s.PageSize-1)/s.PageSize)
	if s.Page >= s.TotalPages {
		s.Page = 0
	}
}

// Advance moves to the next page, or flips the direction after the last
// one. It reports whether the direction changed.
func (s *State) Advance() bool {
	s.Countdown = s.step

	if s.Page < s.TotalPages-1 {
		s.Page++
		return false
	}

	s.Page = 0
	s.Direction = s.Direction.Opposite()
	return true
}

// Tick decrements the display countdown, restarting it at zero
func (s *State) Tick() {
	s.Countdown--
	if s.Countdown <= 0 {
		s.Countdown = s.step
	}
}

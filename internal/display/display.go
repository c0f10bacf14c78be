// Package display renders the flight board to a terminal.
package display

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/internal/kiosk"
	"github.com/yegors/flightboard/internal/rotation"
	"github.com/yegors/flightboard/pkg/logger"
)

// NoDataMessage is shown until the first board has been built
const NoDataMessage = "No data available yet, will retry"

// Source is what the display reads from
type Source interface {
	Board() *kiosk.Board
	Rotation() (rotation.State, bool)
	Direction() board.Direction
	SetDirection(dir board.Direction) error
	LastError() error
	Updates() <-chan struct{}
}

// Options controls the look of the board
type Options struct {
	Title     string
	ShowClock bool
	PageSize  int
}

// Display draws a Source onto a tcell screen
type Display struct {
	screen tcell.Screen
	src    Source
	opts   Options
	logger *logger.Logger

	// Manual paging when rotation is off
	page int
	now  func() time.Time
}

// New creates a display. The screen must already be initialised.
func New(screen tcell.Screen, src Source, opts Options, loggerObj *logger.Logger) *Display {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Display{
		screen: screen,
		src:    src,
		opts:   opts,
		logger: loggerObj.Named("display"),
		now:    time.Now,
	}
}

// Run redraws on every update until ctx is cancelled or the user quits
func (d *Display) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				// Screen finalised
				close(events)
				return
			}
			events <- ev
		}
	}()

	clock := time.NewTicker(time.Second)
	defer clock.Stop()

	d.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.src.Updates():
			d.draw()
		case <-clock.C:
			if d.opts.ShowClock {
				d.draw()
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if d.handleEvent(ev) {
				return nil
			}
			d.draw()
		}
	}
}

// handleEvent processes a tcell event and reports whether to quit
func (d *Display) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		d.screen.Sync()

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyLeft, tcell.KeyPgUp:
			d.page--
		case tcell.KeyRight, tcell.KeyPgDn:
			d.page++
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case 'd', 'D':
				if _, rotating := d.src.Rotation(); !rotating {
					d.page = 0
					if err := d.src.SetDirection(d.src.Direction().Opposite()); err != nil {
						d.logger.Error("Failed to switch direction", logger.Error(err))
					}
				}
			}
		}
	}
	return false
}

func (d *Display) draw() {
	d.render()
	d.screen.Show()
}

// render draws the whole board into the screen buffer
func (d *Display) render() {
	d.screen.Clear()
	width, height := d.screen.Size()

	styleHeader := tcell.StyleDefault.Bold(true).Reverse(true)
	styleColumn := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleRow := tcell.StyleDefault
	styleHelp := tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError := tcell.StyleDefault.Foreground(tcell.ColorRed)

	b := d.src.Board()
	state, rotating := d.src.Rotation()

	direction := d.src.Direction()
	if b != nil {
		direction = b.Direction
	}

	var flights []board.EnrichedFlight
	page, totalPages := 0, 1
	if b != nil {
		flights = b.Flights
		if rotating {
			page, totalPages = state.Page, state.TotalPages
		} else {
			totalPages = max(1, int(math.Ceil(float64(len(flights))/float64(d.opts.PageSize))))
			d.page = min(max(d.page, 0), totalPages-1)
			page = d.page
		}
	}

	// Header
	left := " " + d.title(b) + "  " + directionLabel(direction)
	right := fmt.Sprintf("Page %d/%d ", page+1, totalPages)
	if rotating {
		right = fmt.Sprintf("Next in %2ds  %s", state.Countdown, right)
	}
	if d.opts.ShowClock {
		right = d.now().UTC().Format("15:04:05Z") + "  " + right
	}
	drawText(d.screen, 0, 0, width, styleHeader,
		left+strings.Repeat(" ", max(1, width-runeLen(left)-runeLen(right)))+right)

	if b == nil {
		drawText(d.screen, 1, 2, width-1, styleRow, NoDataMessage)
		if err := d.src.LastError(); err != nil {
			drawText(d.screen, 1, 3, width-1, styleError, err.Error())
		}
		d.drawHelp(width, height, rotating, styleHelp)
		return
	}

	drawText(d.screen, 0, 1, width, styleColumn, formatHeader(direction))
	drawText(d.screen, 0, 2, width, styleColumn, strings.Repeat("─", width))

	rows := board.Paginate(flights, page, d.opts.PageSize)
	if len(rows) == 0 {
		drawText(d.screen, 1, 3, width-1, styleRow, "No "+strings.ToLower(directionLabel(direction)))
	}
	for i, f := range rows {
		y := 3 + i
		if y >= height-1 {
			break
		}
		drawText(d.screen, 0, y, width, styleRow, formatRow(f))
	}

	d.drawHelp(width, height, rotating, styleHelp)
}

func (d *Display) drawHelp(width, height int, rotating bool, style tcell.Style) {
	help := " [q]=Quit "
	if !rotating {
		help = " [d]=Departures/Arrivals  [←/→]=Page  [q]=Quit "
	}
	drawText(d.screen, 0, height-1, width, style, help)
}

func (d *Display) title(b *kiosk.Board) string {
	if d.opts.Title != "" {
		return d.opts.Title
	}
	if b == nil {
		return "Flight Board"
	}
	if b.AirportInfo != nil {
		return fmt.Sprintf("%s (%s)", b.AirportInfo.Name, b.Airport)
	}
	return b.Airport
}

func directionLabel(d board.Direction) string {
	if d == board.Arrival {
		return "ARRIVALS"
	}
	return "DEPARTURES"
}

const rowFormat = "%-9s %-22s %-6s %-5s %-24s %-10s %7s %6s"

func formatHeader(d board.Direction) string {
	route := "DESTINATION"
	if d == board.Arrival {
		route = "ORIGIN"
	}
	return fmt.Sprintf(rowFormat, "FLIGHT", "AIRLINE", "TYPE", "ICAO", route, "STATUS", "DIST", "ETE")
}

func formatRow(f board.EnrichedFlight) string {
	airline := ""
	if f.Airline.Name != nil {
		airline = *f.Airline.Name
	}
	ete := "--"
	if f.ETE != nil {
		ete = fmt.Sprintf("%dm", int(math.Round(*f.ETE)))
	}
	return fmt.Sprintf(rowFormat,
		truncate(f.Callsign, 9),
		truncate(airline, 22),
		truncate(f.Aircraft, 6),
		truncate(f.RouteICAO, 5),
		truncate(f.RouteName, 24),
		strings.ToUpper(string(f.Stage)),
		fmt.Sprintf("%.0fnm", f.Distance),
		ete,
	)
}

// drawText draws a string at the given position.
func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	// Fill remaining space
	for col < maxWidth {
		screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}

// truncate truncates a string to fit within maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func runeLen(s string) int {
	return len([]rune(s))
}

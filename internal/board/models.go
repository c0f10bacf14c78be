package board

import (
	"fmt"
	"strings"

	"github.com/yegors/flightboard/internal/airlines"
	"github.com/yegors/flightboard/internal/airports"
	"github.com/yegors/flightboard/internal/stage"
	"github.com/yegors/flightboard/internal/vatsim"
)

// Unknown is shown for any route field that cannot be resolved
const Unknown = "Unknown"

// Direction selects the departure board or the arrival board
type Direction string

const (
	Departure Direction = "departure"
	Arrival   Direction = "arrival"
)

// ParseDirection accepts "departure(s)"/"dep" and "arrival(s)"/"arr"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "departure", "departures", "dep":
		return Departure, nil
	case "arrival", "arrivals", "arr":
		return Arrival, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Opposite returns the other direction
func (d Direction) Opposite() Direction {
	if d == Departure {
		return Arrival
	}
	return Departure
}

// EnrichedFlight is a pilot report with everything the board displays.
// A fresh slice of these is produced by every pipeline run.
type EnrichedFlight struct {
	vatsim.Pilot

	Aircraft  string      `json:"aircraft"`
	Departure string      `json:"departure"`
	Arrival   string      `json:"arrival"`
	RouteICAO string      `json:"route_icao"`
	RouteName string      `json:"route_name"`
	Stage     stage.Stage `json:"stage"`

	// Distance from the queried airport in nautical miles
	Distance float64 `json:"distance"`
	// ETE in minutes; nil when it cannot be estimated
	ETE *float64 `json:"ete"`

	DepartureAirport *airports.Airport `json:"departure_airport,omitempty"`
	ArrivalAirport   *airports.Airport `json:"arrival_airport,omitempty"`

	Airline         airlines.Classification `json:"airline"`
	MagneticHeading float64                 `json:"magnetic_heading"`
}

// Paginate returns the flights on page (zero based). Out of range pages
// and non-positive sizes yield an empty slice.
func Paginate(flights []EnrichedFlight, page, pageSize int) []EnrichedFlight {
	if pageSize <= 0 || page < 0 {
		return []EnrichedFlight{}
	}
	start := page * pageSize
	if start >= len(flights) {
		return []EnrichedFlight{}
	}
	end := min(start+pageSize, len(flights))
	return flights[start:end]
}

package board

import (
	"errors"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yegors/flightboard/internal/airlines"
	"github.com/yegors/flightboard/internal/airports"
	"github.com/yegors/flightboard/internal/geo"
	"github.com/yegors/flightboard/internal/stage"
	"github.com/yegors/flightboard/internal/vatsim"
	"github.com/yegors/flightboard/pkg/logger"
)

// Local traffic without a filed departure is shown on the departure board
// when it is this close to the airport and this low
const (
	LocalTrafficRadiusNM    = 10.0
	LocalTrafficMaxAltitude = 3000
	MinETEGroundspeedKts    = 50
)

// ErrNoSnapshot is returned when there is no snapshot to enrich yet
var ErrNoSnapshot = errors.New("no traffic snapshot")

// AirportLookup resolves ICAO codes to airports
type AirportLookup interface {
	Lookup(icao string) *airports.Airport
}

// CallsignClassifier resolves callsigns to airlines
type CallsignClassifier interface {
	Classify(callsign string) airlines.Classification
}

// Pipeline turns a traffic snapshot into a sorted board for one airport
// and direction. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	airports AirportLookup
	airlines CallsignClassifier
	locale   language.Tag
	now      func() time.Time
	logger   *logger.Logger
}

// NewPipeline creates a pipeline over the given registries. locale selects
// the collation used to sort route names; an unparseable locale falls back
// to English.
func NewPipeline(airportReg AirportLookup, airlineReg CallsignClassifier, locale string, loggerObj *logger.Logger) *Pipeline {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Pipeline{
		airports: airportReg,
		airlines: airlineReg,
		locale:   tag,
		now:      time.Now,
		logger:   loggerObj.Named("pipeline"),
	}
}

// Run filters, enriches and sorts the flights of snap for the queried
// airport. queried may be nil when the airport is not in the registry.
func (p *Pipeline) Run(snap *vatsim.Snapshot, icao string, dir Direction, queried *airports.Airport) ([]EnrichedFlight, error) {
	// STEP 1: Nothing to enrich
	if snap == nil {
		return []EnrichedFlight{}, ErrNoSnapshot
	}
	if len(snap.Pilots) == 0 {
		return []EnrichedFlight{}, nil
	}

	// STEP 2: Normalise the query
	icao = normalizeICAO(icao)

	when := snap.General.UpdateTimestamp
	if when.IsZero() {
		when = p.now()
	}

	// STEP 3 + 4: Filter and enrich
	out := make([]EnrichedFlight, 0)
	for i := range snap.Pilots {
		pilot := &snap.Pilots[i]

		distance := 0.0
		if queried != nil {
			distance = geo.Distance(pilot.Latitude, pilot.Longitude, queried.Lat, queried.Lon)
		}

		if !p.include(pilot, icao, dir, queried, distance) {
			continue
		}

		out = append(out, p.enrich(pilot, dir, distance, when))
	}

	// STEP 5: Sort by route name, keeping feed order for ties
	col := collate.New(p.locale)
	slices.SortStableFunc(out, func(a, b EnrichedFlight) int {
		return col.CompareString(a.RouteName, b.RouteName)
	})

	p.logger.Debug("Board built",
		logger.String("airport", icao),
		logger.String("direction", string(dir)),
		logger.Int("pilots", len(snap.Pilots)),
		logger.Int("flights", len(out)),
	)

	return out, nil
}

// include applies the direction filter
func (p *Pipeline) include(pilot *vatsim.Pilot, icao string, dir Direction, queried *airports.Airport, distance float64) bool {
	switch dir {
	case Departure:
		dep := normalizeICAO(pilot.DepartureICAO())
		if dep != "" {
			return dep == icao
		}
		// No declared departure; keep it if it looks like local traffic
		return queried != nil &&
			distance <= LocalTrafficRadiusNM &&
			pilot.Altitude < LocalTrafficMaxAltitude
	case Arrival:
		arr := normalizeICAO(pilot.ArrivalICAO())
		return arr != "" && arr == icao
	}
	return false
}

func (p *Pipeline) enrich(pilot *vatsim.Pilot, dir Direction, distance float64, when time.Time) EnrichedFlight {
	depICAO := normalizeICAO(pilot.DepartureICAO())
	arrICAO := normalizeICAO(pilot.ArrivalICAO())

	var depAirport, arrAirport *airports.Airport
	if depICAO != "" {
		depAirport = p.airports.Lookup(depICAO)
	}
	if arrICAO != "" {
		arrAirport = p.airports.Lookup(arrICAO)
	}

	// The departure board shows where a flight is going and vice versa
	routeICAO, routeAirport := arrICAO, arrAirport
	if dir == Arrival {
		routeICAO, routeAirport = depICAO, depAirport
	}

	f := EnrichedFlight{
		Pilot:            *pilot,
		Aircraft:         orUnknown(pilot.AircraftType()),
		Departure:        orUnknown(depICAO),
		Arrival:          orUnknown(arrICAO),
		RouteICAO:        orUnknown(routeICAO),
		RouteName:        Unknown,
		Distance:         distance,
		DepartureAirport: depAirport,
		ArrivalAirport:   arrAirport,
		Airline:          p.airlines.Classify(pilot.Callsign),
	}
	if routeAirport != nil && routeAirport.Name != "" {
		f.RouteName = routeAirport.Name
	}

	f.Stage = stage.Classify(stage.Position{
		Lat:         pilot.Latitude,
		Lon:         pilot.Longitude,
		AltitudeFt:  float64(pilot.Altitude),
		Groundspeed: float64(pilot.Groundspeed),
	}, depAirport, arrAirport)
	if !f.Stage.Valid() {
		p.logger.Warn("Stage classifier returned an unknown stage",
			logger.String("callsign", pilot.Callsign),
			logger.String("stage", string(f.Stage)),
			logger.Float64("altitude_ft", float64(pilot.Altitude)),
		)
	}

	// Distance is to the queried airport in both directions
	if pilot.Groundspeed > MinETEGroundspeedKts && distance > 0 {
		ete := distance / float64(pilot.Groundspeed) * 60
		f.ETE = &ete
	}

	variation := geo.MagneticVariation(pilot.Latitude, pilot.Longitude, float64(pilot.Altitude), when)
	f.MagneticHeading = geo.MagneticHeading(float64(pilot.Heading), variation)

	return f
}

func normalizeICAO(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

package stage

/*
FLIGHT STAGE DETECTION
======================

A flight is placed in one of four stages from a single snapshot. Nothing is
remembered between snapshots, so the rules only look at altitude, ground
speed and the distance to the filed departure and arrival airports:

   - GROUND:    slow and low (parked, taxiing, holding short)
   - DEPARTING: low and still close to the departure airport
   - ARRIVING:  low and close to the arrival airport
   - CRUISING:  high altitude

The rules are a priority chain; the first rule that matches wins. An airport
that cannot be resolved is treated as infinitely far away, so it never
satisfies a proximity rule and loses every tie-break.
*/

import (
	"math"

	"github.com/yegors/flightboard/internal/airports"
	"github.com/yegors/flightboard/internal/geo"
)

// Stage is the phase of a flight relative to its route
type Stage string

const (
	Ground    Stage = "ground"
	Departing Stage = "departing"
	Cruising  Stage = "cruising"
	Arriving  Stage = "arriving"
)

// Thresholds
const (
	GroundMaxSpeedKts     = 50.0
	GroundMaxAltitudeFt   = 500.0
	TerminalMaxAltitudeFt = 10000.0
	DepartureRadiusNM     = 50.0
	ArrivalRadiusNM       = 100.0
	CruiseMinAltitudeFt   = 25000.0
)

// Position is the subset of a pilot report the classifier needs
type Position struct {
	Lat         float64
	Lon         float64
	AltitudeFt  float64
	Groundspeed float64
}

// Classify determines the stage of a flight. dep and arr may be nil.
func Classify(p Position, dep, arr *airports.Airport) Stage {
	// STEP 1: On the ground
	if p.Groundspeed < GroundMaxSpeedKts && p.AltitudeFt < GroundMaxAltitudeFt {
		return Ground
	}

	// STEP 2: Distances; unknown airports are unbounded
	distFromDep := distanceTo(p, dep)
	distFromArr := distanceTo(p, arr)

	// STEP 3: Low and near the departure airport
	if p.AltitudeFt < TerminalMaxAltitudeFt && distFromDep < DepartureRadiusNM {
		return Departing
	}

	// STEP 4: Low and near the arrival airport
	if p.AltitudeFt < TerminalMaxAltitudeFt && distFromArr < ArrivalRadiusNM {
		return Arriving
	}

	// STEP 5: High enough to be en route
	if p.AltitudeFt > CruiseMinAltitudeFt {
		return Cruising
	}

	// STEP 6: Whichever end is closer
	if distFromDep < distFromArr {
		return Departing
	}
	return Arriving
}

func distanceTo(p Position, a *airports.Airport) float64 {
	if a == nil {
		return math.Inf(1)
	}
	return geo.Distance(p.Lat, p.Lon, a.Lat, a.Lon)
}

// Valid reports whether s is one of the defined stages
func (s Stage) Valid() bool {
	switch s {
	case Ground, Departing, Cruising, Arriving:
		return true
	}
	return false
}

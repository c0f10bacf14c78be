package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	EarthRadiusNM = 3440.065 // Mean Earth radius in nautical miles
	FeetToMeters  = 0.3048   // Conversion factor from feet to meters
)

// Distance returns the great-circle distance in nautical miles between two
// points given in decimal degrees, using the haversine formula
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	// Rounding can push a slightly past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusNM * c
}

// MagneticVariation calculates the magnetic declination for a given position and time
// Returns declination in degrees (+East, -West)
func MagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(lat, lon, altFt*FeetToMeters)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Outside the model's validity window; fall back to true
		return 0.0
	}

	return mag.D()
}

// MagneticHeading converts a true heading to magnetic using the given
// variation (+East, -West), normalised to [0, 360)
func MagneticHeading(trueHeading, variation float64) float64 {
	heading := math.Mod(trueHeading-variation, 360)
	if heading < 0 {
		heading += 360
	}
	return heading
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceCoincidentPoints(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{42.3629, -71.0064},
		{-33.9461, 151.1772},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceSymmetric(t *testing.T) {
	// KBOS -> EGLL
	ab := Distance(42.3629, -71.0064, 51.4700, -0.4543)
	ba := Distance(51.4700, -0.4543, 42.3629, -71.0064)
	assert.InDelta(t, ab, ba, 1e-9)
	assert.InDelta(t, 2829, ab, 10)
}

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	d := Distance(0, 0, 0, 1)
	assert.InDelta(t, 60.0, d, 0.1)
}

func TestDistanceNonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, Distance(10, 10, -10, -170), 0.0)
	assert.LessOrEqual(t, Distance(0, 0, 0, 180), EarthRadiusNM*3.1416)
}

func TestMagneticHeading(t *testing.T) {
	tests := []struct {
		name      string
		heading   float64
		variation float64
		want      float64
	}{
		{"no variation", 90, 0, 90},
		{"west variation adds", 350, -15, 5},
		{"east variation subtracts", 10, 14, 356},
		{"full circle", 360, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MagneticHeading(tt.heading, tt.variation), 1e-9)
		})
	}
}

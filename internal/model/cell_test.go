package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"origin", 0, 0, true},
		{"poles", 90, 0, true},
		{"date line", -45, -180, true},
		{"lat too high", 90.001, 0, false},
		{"lat too low", -91, 0, false},
		{"lon too high", 0, 180.5, false},
		{"lon too low", 0, -181, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lon", 0, math.NaN(), false},
		{"inf", math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinate(tt.lat, tt.lon))
		})
	}
}

func TestHaversineKm(t *testing.T) {
	// London to Paris is roughly 344 km.
	d := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, d, 5)

	assert.Zero(t, HaversineKm(10, 20, 10, 20))

	// Symmetric.
	a := HaversineKm(40.7, -74.0, 34.05, -118.24)
	b := HaversineKm(34.05, -118.24, 40.7, -74.0)
	assert.InDelta(t, a, b, 1e-9)
}

func TestPolygonAreaKm2(t *testing.T) {
	// 1x1 degree square near the equator is about 111 x 111 km.
	square, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
	}})
	require.NoError(t, err)

	area := PolygonAreaKm2(square)
	assert.InDelta(t, 111.0*111.0, area, 500)
}

func TestPolygonAreaKm2_ShrinksWithLatitude(t *testing.T) {
	atLat := func(lat float64) float64 {
		p, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
			{0, lat}, {1, lat}, {1, lat + 1}, {0, lat + 1}, {0, lat},
		}})
		require.NoError(t, err)
		return PolygonAreaKm2(p)
	}

	assert.Greater(t, atLat(0), atLat(60))
}

func TestBoundaryCoords(t *testing.T) {
	cell := SpatialCell{}
	assert.Nil(t, cell.BoundaryCoords())

	p, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
		{10, 20}, {11, 20}, {11, 21}, {10, 20},
	}})
	require.NoError(t, err)

	cell.Boundary = p
	coords := cell.BoundaryCoords()
	require.Len(t, coords, 4)
	assert.Equal(t, [2]float64{10, 20}, coords[0])
}

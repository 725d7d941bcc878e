// Package land classifies cell boundaries by land coverage so that open-ocean
// cells can be short-circuited before any analysis runs.
package land

import (
	"context"

	"github.com/twpayne/go-geom"
)

// Classifier reports the land coverage of a boundary polygon as a percentage
// in [0, 100].
type Classifier interface {
	Coverage(ctx context.Context, boundary *geom.Polygon) (float64, error)
}

// pointInRing tests a lon/lat point against a closed ring via ray casting.
func pointInRing(lon, lat float64, ring [][2]float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// samplePoints generates an n×n lattice of points inside the polygon's outer
// ring. Points outside the ring are discarded.
func samplePoints(boundary *geom.Polygon, n int) [][2]float64 {
	if boundary == nil || boundary.NumLinearRings() == 0 || n <= 0 {
		return nil
	}
	coords := boundary.LinearRing(0).Coords()
	if len(coords) < 3 {
		return nil
	}

	ring := make([][2]float64, 0, len(coords))
	minX, minY := coords[0].X(), coords[0].Y()
	maxX, maxY := minX, minY
	for _, c := range coords {
		ring = append(ring, [2]float64{c.X(), c.Y()})
		if c.X() < minX {
			minX = c.X()
		}
		if c.X() > maxX {
			maxX = c.X()
		}
		if c.Y() < minY {
			minY = c.Y()
		}
		if c.Y() > maxY {
			maxY = c.Y()
		}
	}

	var pts [][2]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lon := minX + (maxX-minX)*(float64(i)+0.5)/float64(n)
			lat := minY + (maxY-minY)*(float64(j)+0.5)/float64(n)
			if pointInRing(lon, lat, ring) {
				pts = append(pts, [2]float64{lon, lat})
			}
		}
	}
	return pts
}

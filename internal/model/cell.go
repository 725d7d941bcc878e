package model

import (
	"math"

	"github.com/twpayne/go-geom"
)

// KMPerDegree is an approximate conversion factor for latitude degrees to
// kilometers. At mid-latitudes, 1 degree of latitude is approximately 111 km.
const KMPerDegree = 111.0

// SpatialCell is one fixed-resolution unit of the hexagonal partition of the
// globe. Cells are resolved on demand and never persisted; the struct is
// immutable once built.
type SpatialCell struct {
	ID         string        `json:"id"`
	Resolution int           `json:"resolution"`
	CenterLat  float64       `json:"center_lat"`
	CenterLon  float64       `json:"center_lon"`
	Boundary   *geom.Polygon `json:"-"`
	AreaKm2    float64       `json:"area_km2"`
}

// BoundaryCoords returns the outer ring of the boundary as [lon, lat] pairs,
// or nil when no boundary is attached.
func (c SpatialCell) BoundaryCoords() [][2]float64 {
	if c.Boundary == nil || c.Boundary.NumLinearRings() == 0 {
		return nil
	}
	ring := c.Boundary.LinearRing(0)
	coords := ring.Coords()
	out := make([][2]float64, 0, len(coords))
	for _, co := range coords {
		out = append(out, [2]float64{co.X(), co.Y()})
	}
	return out
}

// PolygonAreaKm2 approximates the area of a lon/lat polygon in km². It uses
// the planar shoelace formula scaled by the latitude-dependent longitude
// compression at the ring's centroid, which is adequate at cell scale.
func PolygonAreaKm2(p *geom.Polygon) float64 {
	if p == nil || p.NumLinearRings() == 0 {
		return 0
	}
	coords := p.LinearRing(0).Coords()
	if len(coords) < 3 {
		return 0
	}

	var sumLat float64
	for _, co := range coords {
		sumLat += co.Y()
	}
	meanLat := sumLat / float64(len(coords))
	cosLat := math.Cos(meanLat * math.Pi / 180)

	var area float64
	for i := 0; i < len(coords); i++ {
		j := (i + 1) % len(coords)
		area += coords[i].X() * coords[j].Y()
		area -= coords[j].X() * coords[i].Y()
	}
	area = math.Abs(area) / 2

	return area * KMPerDegree * KMPerDegree * cosLat
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// ValidCoordinate reports whether lat/lon are finite and in range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

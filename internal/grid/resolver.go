// Package grid resolves coordinates to cells of the hierarchical hexagonal
// partition used to key all scoring.
package grid

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	h3 "github.com/uber/h3-go/v4"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Resolver maps a coordinate to its spatial cell at a fixed resolution.
// Implementations must be deterministic and stateless.
type Resolver interface {
	Cell(lat, lon float64) (model.SpatialCell, error)
}

// H3Resolver resolves cells on the H3 hexagonal grid.
type H3Resolver struct {
	resolution int
}

// NewH3Resolver creates a resolver at the given H3 resolution (0-15).
func NewH3Resolver(resolution int) (*H3Resolver, error) {
	if resolution < 0 || resolution > 15 {
		return nil, eris.Errorf("grid: resolution %d out of range 0-15", resolution)
	}
	return &H3Resolver{resolution: resolution}, nil
}

// Resolution returns the fixed resolution of this resolver.
func (r *H3Resolver) Resolution() int { return r.resolution }

// Cell resolves lat/lon to its H3 cell with center, boundary polygon, and
// approximate area.
func (r *H3Resolver) Cell(lat, lon float64) (model.SpatialCell, error) {
	if !model.ValidCoordinate(lat, lon) {
		return model.SpatialCell{}, eris.Errorf("grid: invalid coordinate (%f, %f)", lat, lon)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), r.resolution)
	if err != nil {
		return model.SpatialCell{}, eris.Wrap(err, "grid: lat/lng to cell")
	}

	center, err := h3.CellToLatLng(cell)
	if err != nil {
		return model.SpatialCell{}, eris.Wrap(err, "grid: cell center")
	}

	boundary, err := h3.CellToBoundary(cell)
	if err != nil {
		return model.SpatialCell{}, eris.Wrap(err, "grid: cell boundary")
	}

	poly, err := boundaryPolygon(boundary)
	if err != nil {
		return model.SpatialCell{}, err
	}

	return model.SpatialCell{
		ID:         cell.String(),
		Resolution: r.resolution,
		CenterLat:  center.Lat,
		CenterLon:  center.Lng,
		Boundary:   poly,
		AreaKm2:    model.PolygonAreaKm2(poly),
	}, nil
}

// boundaryPolygon converts an H3 cell boundary into a closed go-geom polygon
// in lon/lat order.
func boundaryPolygon(boundary h3.CellBoundary) (*geom.Polygon, error) {
	if len(boundary) < 3 {
		return nil, eris.New("grid: degenerate cell boundary")
	}

	ring := make([]geom.Coord, 0, len(boundary)+1)
	for _, v := range boundary {
		ring = append(ring, geom.Coord{v.Lng, v.Lat})
	}
	// Close the ring.
	ring = append(ring, geom.Coord{boundary[0].Lng, boundary[0].Lat})

	poly := geom.NewPolygon(geom.XY)
	if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
		return nil, eris.Wrap(err, "grid: build boundary polygon")
	}
	return poly, nil
}

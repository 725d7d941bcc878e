package land

import (
	"context"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// landPolygon is one land polygon loaded from a shapefile, pre-split into
// rings with a bounding box for cheap rejection.
type landPolygon struct {
	minX, minY, maxX, maxY float64
	rings                  [][][2]float64
}

// ShapefileClassifier tests cell boundaries against land polygons loaded
// from an ESRI shapefile (e.g. Natural Earth land). The whole file is held
// in memory; coverage is estimated by lattice sampling.
type ShapefileClassifier struct {
	polygons   []landPolygon
	sampleGrid int
}

// NewShapefileClassifier loads land polygons from the given shapefile.
// sampleGrid controls the sampling lattice density per cell (n×n points).
func NewShapefileClassifier(path string, sampleGrid int) (*ShapefileClassifier, error) {
	if sampleGrid <= 0 {
		sampleGrid = 8
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "land: open shapefile %s", path)
	}
	defer reader.Close() //nolint:errcheck

	var polygons []landPolygon
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		polygons = append(polygons, splitParts(poly))
	}

	zap.L().Info("land: shapefile loaded",
		zap.String("path", path),
		zap.Int("polygons", len(polygons)),
	)

	return &ShapefileClassifier{polygons: polygons, sampleGrid: sampleGrid}, nil
}

// splitParts converts a shapefile polygon into rings.
func splitParts(p *shp.Polygon) landPolygon {
	lp := landPolygon{
		minX: p.Box.MinX, minY: p.Box.MinY,
		maxX: p.Box.MaxX, maxY: p.Box.MaxY,
	}
	parts := append([]int32{}, p.Parts...)
	parts = append(parts, int32(len(p.Points)))
	for i := 0; i < len(parts)-1; i++ {
		ring := make([][2]float64, 0, parts[i+1]-parts[i])
		for _, pt := range p.Points[parts[i]:parts[i+1]] {
			ring = append(ring, [2]float64{pt.X, pt.Y})
		}
		lp.rings = append(lp.rings, ring)
	}
	return lp
}

// Coverage estimates the land percentage of the boundary by sampling.
func (c *ShapefileClassifier) Coverage(ctx context.Context, boundary *geom.Polygon) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pts := samplePoints(boundary, c.sampleGrid)
	if len(pts) == 0 {
		return 0, eris.New("land: empty boundary sample")
	}

	onLand := 0
	for _, pt := range pts {
		if c.isLand(pt[0], pt[1]) {
			onLand++
		}
	}
	return float64(onLand) / float64(len(pts)) * 100, nil
}

func (c *ShapefileClassifier) isLand(lon, lat float64) bool {
	for i := range c.polygons {
		p := &c.polygons[i]
		if lon < p.minX || lon > p.maxX || lat < p.minY || lat > p.maxY {
			continue
		}
		// Shapefile polygons: clockwise outer rings, counter-clockwise holes.
		// A point inside an odd number of rings is on land.
		hits := 0
		for _, ring := range p.rings {
			if pointInRing(lon, lat, ring) {
				hits++
			}
		}
		if hits%2 == 1 {
			return true
		}
	}
	return false
}

// StaticClassifier approximates land coverage from coarse continental
// bounding boxes. It exists for offline runs and tests where no shapefile
// is available.
type StaticClassifier struct{}

// continentBoxes are rough lon/lat extents of the major landmasses.
var continentBoxes = [][4]float64{ // minLon, minLat, maxLon, maxLat
	{-168, 7, -52, 72},   // North & Central America
	{-82, -56, -34, 13},  // South America
	{-18, -35, 52, 38},   // Africa
	{-11, 36, 60, 71},    // Europe
	{26, 5, 180, 78},     // Asia
	{112, -44, 154, -10}, // Australia
}

// Coverage returns 100 when the boundary centroid falls inside a continental
// box, 0 otherwise.
func (StaticClassifier) Coverage(ctx context.Context, boundary *geom.Polygon) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if boundary == nil || boundary.NumLinearRings() == 0 {
		return 0, eris.New("land: nil boundary")
	}

	coords := boundary.LinearRing(0).Coords()
	var lon, lat float64
	for _, c := range coords {
		lon += c.X()
		lat += c.Y()
	}
	lon /= float64(len(coords))
	lat /= float64(len(coords))

	for _, b := range continentBoxes {
		if lon >= b[0] && lon <= b[2] && lat >= b[1] && lat <= b[3] {
			return 100, nil
		}
	}
	return 0, nil
}

package validation

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Benchmark is a reference location with a known opportunity score, used by
// cross-validation and the Bayesian prior.
type Benchmark struct {
	ID    string  `yaml:"id" json:"id"`
	Lat   float64 `yaml:"lat" json:"lat"`
	Lon   float64 `yaml:"lon" json:"lon"`
	Score float64 `yaml:"score" json:"score"`
}

// benchmarkFile is the on-disk YAML layout.
type benchmarkFile struct {
	Benchmarks []Benchmark `yaml:"benchmarks"`
}

// LoadBenchmarks reads a benchmark reference set from a YAML file.
func LoadBenchmarks(path string) ([]Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "validation: read benchmarks %s", path)
	}

	var f benchmarkFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "validation: parse benchmarks %s", path)
	}

	for i, b := range f.Benchmarks {
		if !model.ValidCoordinate(b.Lat, b.Lon) {
			return nil, eris.Errorf("validation: benchmark %d (%s) has invalid coordinates", i, b.ID)
		}
	}

	zap.L().Info("validation: benchmarks loaded",
		zap.String("path", path),
		zap.Int("count", len(f.Benchmarks)),
	)
	return f.Benchmarks, nil
}

// similarBenchmarks returns the benchmarks within radiusKm of the point.
func similarBenchmarks(benchmarks []Benchmark, lat, lon, radiusKm float64) []Benchmark {
	var out []Benchmark
	for _, b := range benchmarks {
		if model.HaversineKm(lat, lon, b.Lat, b.Lon) <= radiusKm {
			out = append(out, b)
		}
	}
	return out
}

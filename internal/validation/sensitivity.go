package validation

import (
	"math"
	"sort"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
	"github.com/jonloone/nx1-space-sub002/internal/scoring"
)

// perturbDelta is the relative perturbation applied to each parameter.
const perturbDelta = 0.1

// sensitivityAnalysis perturbs each component score ±10%, reaggregates, and
// measures how strongly the overall score responds. Influence is normalized
// by the perturbation size; importance also weighs how far the perturbed
// mean drifts from baseline (nonzero only where interval clamping bites).
func sensitivityAnalysis(set model.ComponentScoreSet, cfg config.ScoringConfig, importanceThreshold float64) model.SensitivityResult {
	baseline := scoring.Aggregate(set, cfg).Value

	parameters := map[string]func(model.ComponentScoreSet, float64) model.ComponentScoreSet{
		"proximity":   func(s model.ComponentScoreSet, f float64) model.ComponentScoreSet { s.Proximity.Value = clampScore(s.Proximity.Value * f); return s },
		"competitive": func(s model.ComponentScoreSet, f float64) model.ComponentScoreSet { s.Competitive.Value = clampScore(s.Competitive.Value * f); return s },
		"market":      func(s model.ComponentScoreSet, f float64) model.ComponentScoreSet { s.Market.Value = clampScore(s.Market.Value * f); return s },
		"maritime":    func(s model.ComponentScoreSet, f float64) model.ComponentScoreSet { s.Maritime.Value = clampScore(s.Maritime.Value * f); return s },
		"risk":        func(s model.ComponentScoreSet, f float64) model.ComponentScoreSet { s.Risk.Value = clampScore(s.Risk.Value * f); return s },
	}

	influence := make(map[string]float64, len(parameters))
	var critical []string
	var sensitivities []float64

	for name, perturb := range parameters {
		up := scoring.Aggregate(perturb(set, 1+perturbDelta), cfg).Value
		down := scoring.Aggregate(perturb(set, 1-perturbDelta), cfg).Value

		sensitivity := 0.0
		if baseline > 0 {
			sensitivity = math.Abs(up-down) / (2 * perturbDelta * baseline)
		}
		importance := sensitivity * math.Abs((up+down)/2-baseline)

		influence[name] = sensitivity
		sensitivities = append(sensitivities, sensitivity)
		if importance > importanceThreshold {
			critical = append(critical, name)
		}
	}
	sort.Strings(critical)

	return model.SensitivityResult{
		ParameterInfluence: influence,
		CriticalParameters: critical,
		StabilityScore:     1 / (1 + mean(sensitivities)),
	}
}

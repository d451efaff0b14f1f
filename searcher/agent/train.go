package agent

import (
	"math"

	"tabletop/experiments/metrics"
	"tabletop/game"
	"tabletop/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. It
// samples actions in proportion to visits^(1/temperature).
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, rng *rand.Rand) Agent {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	return trainingAgent{mcts: mcts, temperature: temperature, rng: rng}
}

func (a trainingAgent) FindAction(fm *game.ForwardModel, view *game.GameState, player int) (game.Action, metrics.SearchMetric) {
	policy, metric := a.mcts.Simulate(fm, view, player)
	legal := fm.LegalActions(view)
	probs := adjustTemperature(legalPolicy(legal, policy), a.temperature)
	return legal[sample(probs, a.rng)], metric
}

func adjustTemperature(visits []float64, temperature float64) []float64 {
	// Compute temperature-adjusted action probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(visits))
	for i, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 { // Nothing explored
		for i := range adjusted {
			adjusted[i] = 1 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample(probs []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(probs) - 1 // Fallback in case of rounding errors
}

package agent

import (
	"tabletop/experiments/metrics"
	"tabletop/game"
)

type Agent interface {
	// FindAction picks one of the legal actions of view, a copy of the game
	// redacted for player, and returns search metrics (if collected).
	FindAction(fm *game.ForwardModel, view *game.GameState, player int) (game.Action, metrics.SearchMetric)
}

// legalPolicy restricts a search policy to the actions legal in view, in
// the order the forward model lists them.
func legalPolicy(legal []game.Action, policy map[string]float64) []float64 {
	visits := make([]float64, len(legal))
	for i, a := range legal {
		visits[i] = policy[a.Key()]
	}
	return visits
}

package agent

import (
	"tabletop/experiments/metrics"
	"tabletop/game"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent that plays uniformly at random.
func NewRandomAgent(rng *rand.Rand) Agent {
	return randomAgent{rng: rng}
}

func (a randomAgent) FindAction(fm *game.ForwardModel, view *game.GameState, player int) (game.Action, metrics.SearchMetric) {
	legal := fm.LegalActions(view)
	return legal[a.rng.Intn(len(legal))], metrics.SearchMetric{}
}

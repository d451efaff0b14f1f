package agent

import (
	"tabletop/experiments/metrics"
	"tabletop/game"
	"tabletop/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindAction(fm *game.ForwardModel, view *game.GameState, player int) (game.Action, metrics.SearchMetric) {
	policy, metric := a.mcts.Simulate(fm, view, player)
	legal := fm.LegalActions(view)
	return legal[findMax(legalPolicy(legal, policy))], metric
}

// findMax returns the index of the most visited action; ties go to the
// first.
func findMax(visits []float64) int {
	maxIndex := 0
	for i, v := range visits {
		if v > visits[maxIndex] {
			maxIndex = i
		}
	}
	return maxIndex
}

package skirmish

import "tabletop/game"

var _ game.Evaluate = Evaluate

// Evaluate scores a position for player by their share of the total score,
// with negative scores clamped to zero. Finished games are scored by their
// results.
func Evaluate(gs *game.GameState, player int) float64 {
	if gs.Ended() {
		return gs.Results()[player]
	}
	total := 0.0
	own := 0.0
	for p := 0; p < gs.NumPlayers; p++ {
		score := float64(max(gs.Counter(ScoreCounter(p)), 0))
		total += score
		if p == player {
			own = score
		}
	}
	if total == 0 {
		return 1 / float64(gs.NumPlayers)
	}
	return own / total
}

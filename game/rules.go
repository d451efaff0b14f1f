package game

import "golang.org/x/exp/rand"

// Rules supplies a game's base rules to the ForwardModel. Everything that
// happens inside a Sequence is left to the sequence itself.
type Rules interface {
	// Setup populates a fresh state: components, decks, pools, first player.
	Setup(gs *GameState, rng *rand.Rand)

	// LegalActions lists the base actions for the turn owner when no
	// sequence is in progress. Returning nil for a live game is a bug.
	LegalActions(gs *GameState) []Action

	// EndOfTurn reports whether the turn ended after last resolved with an
	// empty stack.
	EndOfTurn(gs *GameState, last Action) bool

	// EndOfRound runs after every player still in the game has taken a
	// turn. It may end the game.
	EndOfRound(gs *GameState)
}

// Evaluate estimates how favourable gs is for player, in [0, 1].
type Evaluate func(gs *GameState, player int) float64

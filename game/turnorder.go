package game

import "fmt"

// TurnOrder tracks the nominal turn owner, independent of whichever
// sequence currently controls play.
type TurnOrder struct {
	NumPlayers int
	MaxRounds  int // 0 for no limit

	First       int // first player of each round
	Owner       int // owner of the current turn
	TurnCounter int // turns taken in this round
	Round       int
}

func NewTurnOrder(numPlayers, maxRounds int) *TurnOrder {
	if numPlayers < 1 || numPlayers > MaxPlayers {
		panic(fmt.Sprintf("invalid number of players %d", numPlayers))
	}
	return &TurnOrder{NumPlayers: numPlayers, MaxRounds: maxRounds}
}

func (t *TurnOrder) Current() int {
	return t.Owner
}

// Reset restarts the order at round 0 with first as the turn owner.
func (t *TurnOrder) Reset(first int) {
	t.checkPlayer(first)
	t.First = first
	t.Owner = first
	t.TurnCounter = 0
	t.Round = 0
}

// Advance ends the current turn and reports whether it also ended the
// round. A round is one turn per player still in the game, and a new round
// starts again from First. Players for which out reports true are skipped;
// a nil out means everyone plays. If every player is out the order is left
// as it is and none is true.
func (t *TurnOrder) Advance(out func(player int) bool) (roundEnded, none bool) {
	t.checkPlayer(t.Owner)
	active := t.NumPlayers
	if out != nil {
		active = 0
		for p := 0; p < t.NumPlayers; p++ {
			if !out(p) {
				active++
			}
		}
	}
	if active == 0 {
		return false, true
	}

	t.TurnCounter++
	next := (t.Owner + 1) % t.NumPlayers
	if t.TurnCounter >= active {
		t.TurnCounter = 0
		t.Round++
		next = t.First
		roundEnded = true
	}
	for out != nil && out(next) {
		next = (next + 1) % t.NumPlayers
	}
	t.Owner = next
	return roundEnded, false
}

// SetOwner hands the turn to player without touching the counters.
func (t *TurnOrder) SetOwner(player int) {
	t.checkPlayer(player)
	t.Owner = player
}

// RoundsExhausted reports whether MaxRounds have been played.
func (t *TurnOrder) RoundsExhausted() bool {
	return t.MaxRounds > 0 && t.Round >= t.MaxRounds
}

func (t *TurnOrder) Copy() *TurnOrder {
	cp := *t
	return &cp
}

func (t *TurnOrder) checkPlayer(player int) {
	if player < 0 || player >= t.NumPlayers {
		panic(fmt.Sprintf("turn order: invalid player id %d for %d players", player, t.NumPlayers))
	}
}

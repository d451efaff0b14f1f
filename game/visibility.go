package game

import (
	"fmt"
	"math/bits"
)

// MaxPlayers is the number of observers a Visibility row can track.
const MaxPlayers = 64

// AllObservers is the observer id of the omniscient referee. Copies taken
// for AllObservers are never redacted.
const AllObservers = -1

// Visibility is one row of the visibility ledger: bit p is set when player p
// knows the identity of the item in that slot.
type Visibility uint64

// VisibleTo returns a row with exactly the given players set.
func VisibleTo(players ...int) Visibility {
	var v Visibility
	for _, p := range players {
		v = v.With(p)
	}
	return v
}

// VisibleToAll returns a row with every one of n players set.
func VisibleToAll(n int) Visibility {
	checkPlayer(n - 1)
	if n == MaxPlayers {
		return ^Visibility(0)
	}
	return Visibility(1)<<uint(n) - 1
}

// HiddenToAll is the empty row.
const HiddenToAll Visibility = 0

func (v Visibility) Has(player int) bool {
	if player == AllObservers {
		return true
	}
	checkPlayer(player)
	return v&(1<<uint(player)) != 0
}

// With returns v with player's bit set. It never clears a bit.
func (v Visibility) With(player int) Visibility {
	checkPlayer(player)
	return v | 1<<uint(player)
}

func (v Visibility) Union(other Visibility) Visibility {
	return v | other
}

// Count returns the number of observers in the row.
func (v Visibility) Count() int {
	return bits.OnesCount64(uint64(v))
}

// Players lists the observers below n that can see the item.
func (v Visibility) Players(n int) []int {
	players := []int{}
	for p := 0; p < n; p++ {
		if v.Has(p) {
			players = append(players, p)
		}
	}
	return players
}

func checkPlayer(player int) {
	if player < 0 || player >= MaxPlayers {
		panic(fmt.Sprintf("player id %d out of range [0,%d)", player, MaxPlayers))
	}
}

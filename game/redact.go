package game

import "golang.org/x/exp/rand"

type slot struct {
	deck  *Deck
	index int
}

// Redact re-determinises the decks in place for observer, treating them as
// one logical pool: an observer who cannot see a card cannot tell which of
// the pool's decks it sits in either.
//
// Every slot hidden from observer receives an identity drawn without
// replacement from the multiset of hidden identities across the pool.
// Visible slots keep their identity. Every slot keeps its visibility row,
// even when another player could see the original item; the result is a
// self-consistent world that later redactions treat as ground truth.
func Redact(observer int, rng *rand.Rand, decks ...*Deck) {
	if observer == AllObservers {
		return
	}
	var hidden []slot
	var pool []ComponentID
	for _, d := range decks {
		d.checkLedger()
		for i := range d.items {
			if !d.rows[i].Has(observer) {
				hidden = append(hidden, slot{deck: d, index: i})
				pool = append(pool, d.items[i])
			}
		}
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for i, s := range hidden {
		s.deck.items[s.index] = pool[i]
	}
}

package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pool builds a hand visible to player 0 and a hidden draw pile from kinds,
// the first handSize of which go to the hand.
func pool(t *testing.T, reg *Registry, kinds []string, handSize int) (hand, draw *Deck) {
	t.Helper()
	hand = NewDeck("hand", 0, VisibleTo(0))
	draw = NewDeck("draw", 0, HiddenToAll)
	for i, kind := range kinds {
		id := reg.Create(kind, 0)
		if i < handSize {
			hand.AddToBottom(id)
		} else {
			draw.AddToBottom(id)
		}
	}
	return hand, draw
}

func TestRedact(t *testing.T) {
	t.Run("visible slots and rows are kept, hidden identities permuted", func(t *testing.T) {
		reg := NewRegistry()
		hand, draw := pool(t, reg, []string{"a", "b", "c", "d", "e", "f", "g"}, 3)
		draw.RevealTo(1, VisibleTo(1))
		wantHand, wantDraw := hand.FullCopy(), draw.FullCopy()

		Redact(1, newTestRand(7), hand, draw)

		require.Equal(t, wantDraw.At(1), draw.At(1), "Slot visible to the observer keeps its identity")
		for i := 0; i < hand.Len(); i++ {
			require.Equal(t, wantHand.VisibilityOf(i), hand.VisibilityOf(i))
		}
		for i := 0; i < draw.Len(); i++ {
			require.Equal(t, wantDraw.VisibilityOf(i), draw.VisibilityOf(i))
		}
		all := append(hand.Items(), draw.Items()...)
		wantAll := append(wantHand.Items(), wantDraw.Items()...)
		require.ElementsMatch(t, wantAll, all, "Redaction should preserve the multiset of the pool")
		require.Equal(t, 3, hand.Len())
		require.Equal(t, 4, draw.Len())
	})

	t.Run("the owner's own view is preserved", func(t *testing.T) {
		reg := NewRegistry()
		hand, draw := pool(t, reg, []string{"a", "b", "c", "d", "e"}, 2)
		want := hand.Items()

		Redact(0, newTestRand(7), hand, draw)

		require.Equal(t, want, hand.Items())
	})

	t.Run("all observers is a no-op", func(t *testing.T) {
		reg := NewRegistry()
		hand, draw := pool(t, reg, []string{"a", "b", "c", "d"}, 2)
		wantHand, wantDraw := hand.FullCopy(), draw.FullCopy()

		Redact(AllObservers, nil, hand, draw)

		require.True(t, wantHand.Equal(hand))
		require.True(t, wantDraw.Equal(draw))
	})

	t.Run("hidden slots sample hidden identities at their frequency", func(t *testing.T) {
		// 8 items, 2 visible to the observer; the 6 hidden ones hold 2 copies
		// of x.
		reg := NewRegistry()
		kinds := []string{"a", "b", "x", "c", "x", "d", "e", "f"}
		hand := NewDeck("hand", 1, VisibleTo(1))
		draw := NewDeck("draw", 1, HiddenToAll)
		for i, kind := range kinds {
			id := reg.Create(kind, 1)
			if i < 4 {
				hand.AddToBottom(id)
			} else {
				draw.AddToBottom(id)
			}
		}
		hand.RevealTo(0, VisibleTo(0))
		draw.RevealTo(3, VisibleTo(0))
		rng := newTestRand(42)

		const copies = 1000
		hits := 0
		for i := 0; i < copies; i++ {
			h, d := hand.FullCopy(), draw.FullCopy()
			Redact(0, rng, h, d)
			require.Equal(t, hand.At(0), h.At(0))
			require.Equal(t, draw.At(3), d.At(3))
			if reg.Kind(h.At(3)) == "x" {
				hits++
			}
		}

		freq := float64(hits) / copies
		require.InDelta(t, 2.0/6.0, freq, 0.06)
		require.NotZero(t, hits)
		require.Less(t, hits, copies)
	})

	t.Run("a redacted copy is ground truth for further redaction", func(t *testing.T) {
		// Player 1 knows the top of player 0's draw pile. After redacting for
		// player 2 that slot may hold a different item, but its row still
		// says player 1 knows it, so redacting the copy for player 1 keeps
		// the copy's item there.
		reg := NewRegistry()
		hand, draw := pool(t, reg, []string{"a", "b", "c", "d", "e", "f"}, 2)
		draw.RevealTo(0, VisibleTo(1))

		rng := newTestRand(11)
		changed := false
		for i := 0; i < 50; i++ {
			h, d := hand.FullCopy(), draw.FullCopy()
			Redact(2, rng, h, d)
			require.Equal(t, VisibleTo(1), d.VisibilityOf(0))
			if d.At(0) != draw.At(0) {
				changed = true
			}

			top := d.At(0)
			h2, d2 := h.FullCopy(), d.FullCopy()
			Redact(1, rng, h2, d2)
			require.Equal(t, top, d2.At(0))
		}
		require.True(t, changed, "Redaction for an outsider should eventually move the known card")
	})

	t.Run("panics when the ledger is out of sync", func(t *testing.T) {
		d := NewDeck("draw", -1, HiddenToAll)
		d.Add(1)
		d.rows = d.rows[:0]

		require.PanicsWithError(t,
			"visibility ledger out of sync with items: deck draw has 0 rows for 1 items",
			func() { Redact(0, newTestRand(1), d) })
	})
}

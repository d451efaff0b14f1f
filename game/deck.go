package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Deck is an ordered container of components with a visibility row per
// slot. Index 0 is the top of the deck.
type Deck struct {
	Name  string
	Owner int // -1 for shared decks

	defaultVis Visibility
	items      []ComponentID
	rows       []Visibility
}

// NewDeck creates an empty deck whose new items get defaultVis.
func NewDeck(name string, owner int, defaultVis Visibility) *Deck {
	return &Deck{
		Name:       name,
		Owner:      owner,
		defaultVis: defaultVis,
	}
}

func (d *Deck) Len() int {
	return len(d.items)
}

func (d *Deck) DefaultVisibility() Visibility {
	return d.defaultVis
}

// At returns the true identity of the item at slot i.
func (d *Deck) At(i int) ComponentID {
	d.checkIndex(i)
	return d.items[i]
}

// Items returns a copy of the identities in slot order.
func (d *Deck) Items() []ComponentID {
	items := make([]ComponentID, len(d.items))
	copy(items, d.items)
	return items
}

func (d *Deck) VisibilityOf(i int) Visibility {
	d.checkIndex(i)
	return d.rows[i]
}

func (d *Deck) IsVisible(i, player int) bool {
	return d.VisibilityOf(i).Has(player)
}

// VisibleItems returns the deck as seen by player: hidden slots are
// reported as NoComponent.
func (d *Deck) VisibleItems(player int) []ComponentID {
	items := make([]ComponentID, len(d.items))
	for i, id := range d.items {
		if d.rows[i].Has(player) {
			items[i] = id
		} else {
			items[i] = NoComponent
		}
	}
	return items
}

// Index returns the slot holding id, or -1.
func (d *Deck) Index(id ComponentID) int {
	for i, item := range d.items {
		if item == id {
			return i
		}
	}
	return -1
}

// Add puts id on top of the deck with the default visibility.
func (d *Deck) Add(id ComponentID) {
	d.AddAt(id, 0, d.defaultVis)
}

// AddWithVisibility puts id on top of the deck. The slot is visible to the
// union of vis and the deck default.
func (d *Deck) AddWithVisibility(id ComponentID, vis Visibility) {
	d.AddAt(id, 0, vis.Union(d.defaultVis))
}

func (d *Deck) AddToBottom(id ComponentID) {
	d.AddAt(id, len(d.items), d.defaultVis)
}

// AddAt inserts id at slot i with exactly the given row.
func (d *Deck) AddAt(id ComponentID, i int, vis Visibility) {
	if i < 0 || i > len(d.items) {
		panic(fmt.Sprintf("deck %s: insert index %d out of range [0,%d]", d.Name, i, len(d.items)))
	}
	d.items = append(d.items, NoComponent)
	copy(d.items[i+1:], d.items[i:])
	d.items[i] = id
	d.rows = append(d.rows, HiddenToAll)
	copy(d.rows[i+1:], d.rows[i:])
	d.rows[i] = vis
}

// Draw removes and returns the top item. ok is false on an empty deck.
func (d *Deck) Draw() (id ComponentID, vis Visibility, ok bool) {
	if len(d.items) == 0 {
		return NoComponent, HiddenToAll, false
	}
	id, vis = d.Remove(0)
	return id, vis, true
}

// Remove takes the item at slot i out of the deck and returns it with its
// visibility row.
func (d *Deck) Remove(i int) (ComponentID, Visibility) {
	d.checkIndex(i)
	id, vis := d.items[i], d.rows[i]
	d.items = append(d.items[:i], d.items[i+1:]...)
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	return id, vis
}

// RevealTo adds observers to the row of slot i. It is idempotent and never
// clears a bit.
func (d *Deck) RevealTo(i int, observers Visibility) {
	d.checkIndex(i)
	d.rows[i] = d.rows[i].Union(observers)
}

// RevealAll makes slot i visible to every one of numPlayers.
func (d *Deck) RevealAll(i, numPlayers int) {
	d.RevealTo(i, VisibleToAll(numPlayers))
}

// Clear empties the deck.
func (d *Deck) Clear() {
	d.items = d.items[:0]
	d.rows = d.rows[:0]
}

// Shuffle randomises the order. Nobody keeps track of positions, so every
// row falls back to the deck default.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.items), func(i, j int) {
		d.items[i], d.items[j] = d.items[j], d.items[i]
	})
	for i := range d.rows {
		d.rows[i] = d.defaultVis
	}
}

// ShuffleKeepVisibility randomises the order while each item keeps its row,
// so observers still recognise the items they knew.
func (d *Deck) ShuffleKeepVisibility(rng *rand.Rand) {
	rng.Shuffle(len(d.items), func(i, j int) {
		d.items[i], d.items[j] = d.items[j], d.items[i]
		d.rows[i], d.rows[j] = d.rows[j], d.rows[i]
	})
}

// FullCopy returns an exact, independent copy.
func (d *Deck) FullCopy() *Deck {
	cp := &Deck{
		Name:       d.Name,
		Owner:      d.Owner,
		defaultVis: d.defaultVis,
		items:      make([]ComponentID, len(d.items)),
		rows:       make([]Visibility, len(d.rows)),
	}
	copy(cp.items, d.items)
	copy(cp.rows, d.rows)
	return cp
}

// RedactedCopy returns a copy in which every item hidden from observer is
// replaced by a random permutation of the hidden items of this deck alone.
// Use Redact to redact several decks as one pool.
func (d *Deck) RedactedCopy(observer int, rng *rand.Rand) *Deck {
	cp := d.FullCopy()
	if observer != AllObservers {
		Redact(observer, rng, cp)
	}
	return cp
}

func (d *Deck) Equal(other *Deck) bool {
	if d.Name != other.Name || d.Owner != other.Owner || d.defaultVis != other.defaultVis {
		return false
	}
	if len(d.items) != len(other.items) || len(d.rows) != len(other.rows) {
		return false
	}
	for i := range d.items {
		if d.items[i] != other.items[i] || d.rows[i] != other.rows[i] {
			return false
		}
	}
	return true
}

func (d *Deck) String() string {
	return fmt.Sprintf("%s%v", d.Name, d.items)
}

func (d *Deck) checkIndex(i int) {
	if i < 0 || i >= len(d.items) {
		panic(fmt.Sprintf("deck %s: index %d out of range [0,%d)", d.Name, i, len(d.items)))
	}
}

// checkLedger fails when the visibility ledger and the items disagree.
func (d *Deck) checkLedger() {
	if len(d.rows) != len(d.items) {
		panic(fmt.Errorf("%w: deck %s has %d rows for %d items", ErrRedaction, d.Name, len(d.rows), len(d.items)))
	}
}

package game

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/rand"
)

type Status int

const (
	Ongoing Status = iota
	Ended
)

type StateHash uint64

// Move is one applied action: who chose it and its key at the time.
type Move struct {
	Player int
	Action string
}

// GameState is the mutable aggregate root of a game: its decks, counters,
// turn order and action stack. Everything is owned by the state, so a copy
// never aliases another state's mutable data.
type GameState struct {
	NumPlayers int
	Components *Registry
	Turn       *TurnOrder
	Stack      *ActionStack

	decks     map[string]*Deck
	deckOrder []string   // insertion order, for deterministic iteration
	pools     [][]string // decks redacted together
	counters  map[string]int
	status    Status
	players   []Status // per player; Ended once a player is out
	results   []float64
	tick      int

	// Append-only log of applied actions. Copies share the backing array
	// up to their own length. Rules read the present state, never the log,
	// so it is left out of Hash and Equal.
	history []Move

	// Source of in-play randomness (reshuffles). Not part of the game's
	// observable content, so it is excluded from Hash and Equal.
	src rand.PCGSource
	rng *rand.Rand
}

// NewGameState creates an empty state for numPlayers, with player 0 as the
// first turn owner.
func NewGameState(numPlayers, maxRounds int, seed uint64) *GameState {
	gs := &GameState{
		NumPlayers: numPlayers,
		Components: NewRegistry(),
		Turn:       NewTurnOrder(numPlayers, maxRounds),
		Stack:      NewActionStack(),
		decks:      make(map[string]*Deck),
		counters:   make(map[string]int),
		players:    make([]Status, numPlayers),
		results:    make([]float64, numPlayers),
	}
	gs.src.Seed(seed)
	gs.rng = rand.New(&gs.src)
	return gs
}

// CurrentPlayer is the innermost sequence's actor when one is in progress,
// otherwise the turn owner.
func (gs *GameState) CurrentPlayer() int {
	if top := gs.Stack.Top(); top != nil {
		return top.CurrentPlayer()
	}
	return gs.Turn.Current()
}

// Rand is the state's own random source for rules that shuffle in play.
func (gs *GameState) Rand() *rand.Rand {
	return gs.rng
}

// AddDeck registers a deck under its name.
func (gs *GameState) AddDeck(d *Deck) {
	if _, ok := gs.decks[d.Name]; ok {
		panic(fmt.Sprintf("deck %q already exists", d.Name))
	}
	gs.decks[d.Name] = d
	gs.deckOrder = append(gs.deckOrder, d.Name)
}

// Deck returns the named deck. Asking for an unknown deck is fatal.
func (gs *GameState) Deck(name string) *Deck {
	d, ok := gs.decks[name]
	if !ok {
		panic(fmt.Sprintf("unknown deck %q", name))
	}
	return d
}

// Decks returns every deck in registration order.
func (gs *GameState) Decks() []*Deck {
	decks := make([]*Deck, len(gs.deckOrder))
	for i, name := range gs.deckOrder {
		decks[i] = gs.decks[name]
	}
	return decks
}

// DefinePool declares that the named decks form one logical pool for
// redaction. A deck belongs to at most one pool; decks outside any pool are
// redacted on their own.
func (gs *GameState) DefinePool(names ...string) {
	for _, name := range names {
		gs.Deck(name)
		for _, pool := range gs.pools {
			for _, other := range pool {
				if other == name {
					panic(fmt.Sprintf("deck %q already belongs to a pool", name))
				}
			}
		}
	}
	pool := make([]string, len(names))
	copy(pool, names)
	gs.pools = append(gs.pools, pool)
}

// MoveCard removes slot i of from and puts it on top of to. A public move
// keeps the item visible to everyone; otherwise it takes the destination's
// default visibility.
func (gs *GameState) MoveCard(from *Deck, i int, to *Deck, public bool) ComponentID {
	id, _ := from.Remove(i)
	if public {
		to.AddWithVisibility(id, VisibleToAll(gs.NumPlayers))
	} else {
		to.Add(id)
	}
	return id
}

func (gs *GameState) Counter(name string) int {
	return gs.counters[name]
}

func (gs *GameState) SetCounter(name string, value int) {
	gs.counters[name] = value
}

func (gs *GameState) AddCounter(name string, delta int) int {
	gs.counters[name] += delta
	return gs.counters[name]
}

// PlayerCounter names a per-player counter.
func PlayerCounter(name string, player int) string {
	return fmt.Sprintf("%s/%d", name, player)
}

// Start executes a copy of seq and, if it accepts, pushes the copy on the
// stack. Sequences use it to nest a sub-protocol from AfterAction.
func (gs *GameState) Start(seq Sequence) error {
	seq = seq.Copy()
	if err := seq.Execute(gs); err != nil {
		return err
	}
	gs.Stack.Push(seq)
	return nil
}

func (gs *GameState) Status() Status {
	return gs.status
}

func (gs *GameState) Ended() bool {
	return gs.status == Ended
}

// EndGame finishes the game with one result per player (1 win, 0 loss).
func (gs *GameState) EndGame(results []float64) {
	if len(results) != gs.NumPlayers {
		panic(fmt.Sprintf("got %d results for %d players", len(results), gs.NumPlayers))
	}
	copy(gs.results, results)
	gs.finish()
}

func (gs *GameState) finish() {
	gs.status = Ended
	for p := range gs.players {
		gs.players[p] = Ended
	}
}

// SetPlayerResult takes player out of the game with a final result. The
// others play on; the turn order skips player from now on.
func (gs *GameState) SetPlayerResult(player int, result float64) {
	gs.Turn.checkPlayer(player)
	gs.players[player] = Ended
	gs.results[player] = result
}

func (gs *GameState) PlayerStatus(player int) Status {
	return gs.players[player]
}

// PlayerOut reports whether player has finished, on its own or with the game.
func (gs *GameState) PlayerOut(player int) bool {
	return gs.players[player] == Ended
}

func (gs *GameState) Results() []float64 {
	results := make([]float64, len(gs.results))
	copy(results, gs.results)
	return results
}

// Winners lists the players holding the best result of a finished game.
func (gs *GameState) Winners() []int {
	if !gs.Ended() {
		return nil
	}
	best := math.Inf(-1)
	var winners []int
	for p, r := range gs.results {
		switch {
		case r > best:
			best = r
			winners = []int{p}
		case r == best:
			winners = append(winners, p)
		}
	}
	return winners
}

// Tick is the number of actions applied so far.
func (gs *GameState) Tick() int {
	return gs.tick
}

// History lists the applied actions, oldest first.
func (gs *GameState) History() []Move {
	history := make([]Move, len(gs.history))
	copy(history, gs.history)
	return history
}

func (gs *GameState) record(player int, key string) {
	gs.history = append(gs.history, Move{Player: player, Action: key})
}

// FullCopy is Copy(AllObservers, nil).
func (gs *GameState) FullCopy() *GameState {
	return gs.Copy(AllObservers, nil)
}

// Copy returns a deep copy as seen by observer. For AllObservers the copy
// is exact. Otherwise each pool is redacted for observer and the copy's own
// random source is reseeded from rng, so repeated copies give independent
// determinisations of everything the observer cannot see.
func (gs *GameState) Copy(observer int, rng *rand.Rand) *GameState {
	cp := &GameState{
		NumPlayers: gs.NumPlayers,
		Components: gs.Components.Copy(),
		Turn:       gs.Turn.Copy(),
		Stack:      gs.Stack.Copy(),
		decks:      make(map[string]*Deck, len(gs.decks)),
		deckOrder:  make([]string, len(gs.deckOrder)),
		pools:      make([][]string, len(gs.pools)),
		counters:   make(map[string]int, len(gs.counters)),
		status:     gs.status,
		players:    make([]Status, len(gs.players)),
		results:    make([]float64, len(gs.results)),
		tick:       gs.tick,
		history:    gs.history[:len(gs.history):len(gs.history)],
		src:        gs.src,
	}
	cp.rng = rand.New(&cp.src)
	copy(cp.deckOrder, gs.deckOrder)
	copy(cp.players, gs.players)
	copy(cp.results, gs.results)
	for name, d := range gs.decks {
		cp.decks[name] = d.FullCopy()
	}
	for i, pool := range gs.pools {
		cp.pools[i] = append([]string(nil), pool...)
	}
	for k, v := range gs.counters {
		cp.counters[k] = v
	}

	if observer == AllObservers {
		return cp
	}
	checkPlayer(observer)
	if rng == nil {
		panic("redacted copy needs a random source")
	}
	pooled := make(map[string]bool)
	for _, pool := range cp.pools {
		decks := make([]*Deck, len(pool))
		for i, name := range pool {
			decks[i] = cp.decks[name]
			pooled[name] = true
		}
		Redact(observer, rng, decks...)
	}
	for _, name := range cp.deckOrder {
		if !pooled[name] {
			Redact(observer, rng, cp.decks[name])
		}
	}
	cp.src.Seed(rng.Uint64())
	return cp
}

// Hash digests everything that affects future play.
func (gs *GameState) Hash() StateHash {
	h := xxhash.New()
	buf := make([]byte, 0, 8)
	writeInt := func(v int) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(v))
		h.Write(buf)
	}
	writeString := func(s string) {
		writeInt(len(s))
		h.WriteString(s)
	}

	writeInt(gs.NumPlayers)
	writeInt(gs.Turn.First)
	writeInt(gs.Turn.Owner)
	writeInt(gs.Turn.TurnCounter)
	writeInt(gs.Turn.Round)
	writeInt(gs.Turn.MaxRounds)
	writeInt(int(gs.status))
	for _, st := range gs.players {
		writeInt(int(st))
	}
	for _, r := range gs.results {
		writeInt(int(math.Float64bits(r)))
	}

	writeInt(gs.Components.Len())
	for _, name := range gs.deckOrder {
		d := gs.decks[name]
		writeString(name)
		writeInt(d.Owner)
		writeInt(int(d.defaultVis))
		writeInt(len(d.items))
		for i, id := range d.items {
			writeInt(int(id))
			writeInt(int(d.rows[i]))
		}
	}
	for _, pool := range gs.pools {
		writeInt(len(pool))
		for _, name := range pool {
			writeString(name)
		}
	}

	names := make([]string, 0, len(gs.counters))
	for k := range gs.counters {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		writeString(k)
		writeInt(gs.counters[k])
	}

	for _, key := range gs.Stack.Keys() {
		writeString(key)
	}
	return StateHash(h.Sum64())
}

// Equal compares every field covered by Hash.
func (gs *GameState) Equal(other *GameState) bool {
	if gs.NumPlayers != other.NumPlayers || gs.status != other.status {
		return false
	}
	if *gs.Turn != *other.Turn {
		return false
	}
	for i := range gs.results {
		if gs.players[i] != other.players[i] || gs.results[i] != other.results[i] {
			return false
		}
	}
	if !gs.Components.Equal(other.Components) {
		return false
	}
	if len(gs.deckOrder) != len(other.deckOrder) {
		return false
	}
	for i, name := range gs.deckOrder {
		if other.deckOrder[i] != name || !gs.decks[name].Equal(other.decks[name]) {
			return false
		}
	}
	if len(gs.pools) != len(other.pools) {
		return false
	}
	for i, pool := range gs.pools {
		if len(pool) != len(other.pools[i]) {
			return false
		}
		for j := range pool {
			if pool[j] != other.pools[i][j] {
				return false
			}
		}
	}
	if len(gs.counters) != len(other.counters) {
		return false
	}
	for k, v := range gs.counters {
		if ov, ok := other.counters[k]; !ok || ov != v {
			return false
		}
	}
	return gs.Stack.Equal(other.Stack)
}

// Package skirmish is a small deck-building game: players play cards from a
// hidden hand to score, raid each other and scout their draw pile.
package skirmish

import (
	"fmt"
	"sort"

	"tabletop/game"

	"golang.org/x/exp/rand"
)

// Card kinds.
const (
	Coin  = "coin"
	Gem   = "gem"
	Raid  = "raid"
	Scout = "scout"
	Ward  = "ward"
)

const (
	HandSize      = 5
	PlaysPerTurn  = 2
	DiscardLimit  = 3 // hand size a raided player discards down to
	ScoutDepth    = 2
	DefaultRounds = 5
)

// Starting deck of every player.
var StartingDeck = map[string]int{
	Coin:  6,
	Gem:   2,
	Raid:  1,
	Scout: 1,
	Ward:  2,
}

var cardValues = map[string]int{
	Coin: 1,
	Gem:  2,
}

func DrawDeck(player int) string    { return fmt.Sprintf("draw/%d", player) }
func HandDeck(player int) string    { return fmt.Sprintf("hand/%d", player) }
func PlayDeck(player int) string    { return fmt.Sprintf("play/%d", player) }
func DiscardDeck(player int) string { return fmt.Sprintf("discard/%d", player) }

func ScoreCounter(player int) string { return game.PlayerCounter("score", player) }

const playsCounter = "plays"

// Rules implements game.Rules for Skirmish.
type Rules struct {
	Rounds int
}

func NewRules(rounds int) *Rules {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return &Rules{Rounds: rounds}
}

// NewState creates an empty state sized for these rules. Call Setup (through
// the forward model) before playing.
func (r *Rules) NewState(numPlayers int, seed uint64) *game.GameState {
	return game.NewGameState(numPlayers, r.Rounds, seed)
}

func (r *Rules) Setup(gs *game.GameState, rng *rand.Rand) {
	kinds := make([]string, 0, len(StartingDeck))
	for kind := range StartingDeck {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	everyone := game.VisibleToAll(gs.NumPlayers)
	for p := 0; p < gs.NumPlayers; p++ {
		draw := game.NewDeck(DrawDeck(p), p, game.HiddenToAll)
		gs.AddDeck(draw)
		gs.AddDeck(game.NewDeck(HandDeck(p), p, game.VisibleTo(p)))
		gs.AddDeck(game.NewDeck(PlayDeck(p), p, everyone))
		gs.AddDeck(game.NewDeck(DiscardDeck(p), p, everyone))
		gs.DefinePool(HandDeck(p), DrawDeck(p))

		for _, kind := range kinds {
			for i := 0; i < StartingDeck[kind]; i++ {
				draw.Add(gs.Components.Create(kind, p))
			}
		}
		draw.Shuffle(rng)
		drawCards(gs, p, HandSize)
		gs.SetCounter(ScoreCounter(p), 0)
	}
	gs.SetCounter(playsCounter, 0)
	gs.Turn.Reset(0)
}

func (r *Rules) LegalActions(gs *game.GameState) []game.Action {
	p := gs.Turn.Current()
	var actions []game.Action
	if gs.Counter(playsCounter) < PlaysPerTurn {
		for _, kind := range handKinds(gs, p) {
			switch kind {
			case Raid:
				actions = append(actions, NewRaid(p))
			case Scout:
				actions = append(actions, NewScout(p))
			default:
				actions = append(actions, PlayCard{Player: p, Kind: kind})
			}
		}
	}
	return append(actions, EndTurn{Player: p})
}

// EndOfTurn ends the turn only when its owner says so.
func (r *Rules) EndOfTurn(gs *game.GameState, last game.Action) bool {
	_, ok := last.(EndTurn)
	return ok
}

// EndOfRound ends the game after the last round: the best score wins, and
// tied leaders share the win.
func (r *Rules) EndOfRound(gs *game.GameState) {
	if !gs.Turn.RoundsExhausted() {
		return
	}
	best := gs.Counter(ScoreCounter(0))
	for p := 1; p < gs.NumPlayers; p++ {
		if s := gs.Counter(ScoreCounter(p)); s > best {
			best = s
		}
	}
	var leaders []int
	for p := 0; p < gs.NumPlayers; p++ {
		if gs.Counter(ScoreCounter(p)) == best {
			leaders = append(leaders, p)
		}
	}
	results := make([]float64, gs.NumPlayers)
	for _, p := range leaders {
		results[p] = 1 / float64(len(leaders))
	}
	gs.EndGame(results)
}

// Scores returns every player's score.
func Scores(gs *game.GameState) []int {
	scores := make([]int, gs.NumPlayers)
	for p := range scores {
		scores[p] = gs.Counter(ScoreCounter(p))
	}
	return scores
}

// drawCards moves up to n cards from the player's draw pile to their hand,
// shuffling the discard pile back in when the draw pile runs out.
func drawCards(gs *game.GameState, player, n int) {
	draw, hand := gs.Deck(DrawDeck(player)), gs.Deck(HandDeck(player))
	for i := 0; i < n; i++ {
		if draw.Len() == 0 && !reshuffle(gs, player) {
			return
		}
		id, _, _ := draw.Draw()
		hand.Add(id)
	}
}

func reshuffle(gs *game.GameState, player int) bool {
	discard, draw := gs.Deck(DiscardDeck(player)), gs.Deck(DrawDeck(player))
	if discard.Len() == 0 {
		return false
	}
	for discard.Len() > 0 {
		id, _, _ := discard.Draw()
		draw.Add(id)
	}
	draw.Shuffle(gs.Rand())
	return true
}

// handKinds lists the distinct kinds in the player's hand, sorted.
func handKinds(gs *game.GameState, player int) []string {
	hand := gs.Deck(HandDeck(player))
	seen := make(map[string]bool)
	var kinds []string
	for _, id := range hand.Items() {
		kind := gs.Components.Kind(id)
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// findKind returns the first slot of d holding a card of kind, or -1.
func findKind(gs *game.GameState, d *game.Deck, kind string) int {
	for i, id := range d.Items() {
		if gs.Components.Kind(id) == kind {
			return i
		}
	}
	return -1
}

func checkActor(gs *game.GameState, player int) error {
	if actor := gs.CurrentPlayer(); actor != player {
		return fmt.Errorf("player %d, current actor %d: %w", player, actor, game.ErrWrongActor)
	}
	return nil
}

// playFromHand moves a card of kind from the player's hand to their play
// area and uses up one play.
func playFromHand(gs *game.GameState, player int, kind string) error {
	if gs.Counter(playsCounter) >= PlaysPerTurn {
		return fmt.Errorf("player %d has no plays left: %w", player, game.ErrPrecondition)
	}
	hand := gs.Deck(HandDeck(player))
	i := findKind(gs, hand, kind)
	if i < 0 {
		return fmt.Errorf("player %d holds no %s: %w", player, kind, game.ErrPrecondition)
	}
	gs.MoveCard(hand, i, gs.Deck(PlayDeck(player)), true)
	gs.AddCounter(playsCounter, 1)
	return nil
}

package skirmish

import (
	"fmt"

	"tabletop/game"
)

type scoutStage int

const (
	scoutPending  scoutStage = iota // not executed yet
	scoutChoosing                   // the player may discard a revealed card
	scoutDone
)

// ScoutSequence reveals the top of the player's draw pile to them; they may
// then discard one of the revealed cards.
type ScoutSequence struct {
	Player int

	revealed int
	stage    scoutStage
}

func NewScout(player int) *ScoutSequence {
	return &ScoutSequence{Player: player}
}

func (s *ScoutSequence) Execute(gs *game.GameState) error {
	if err := checkActor(gs, s.Player); err != nil {
		return err
	}
	if err := playFromHand(gs, s.Player, Scout); err != nil {
		return err
	}
	draw := gs.Deck(DrawDeck(s.Player))
	if draw.Len() < ScoutDepth {
		reshuffleUnder(gs, s.Player)
	}
	s.revealed = min(ScoutDepth, draw.Len())
	for i := 0; i < s.revealed; i++ {
		draw.RevealTo(i, game.VisibleTo(s.Player))
	}
	s.stage = scoutChoosing
	if s.revealed == 0 {
		s.stage = scoutDone
	}
	return nil
}

func (s *ScoutSequence) Key() string {
	return fmt.Sprintf("scout/%d/%d/%d", s.Player, s.revealed, s.stage)
}

func (s *ScoutSequence) CurrentPlayer() int {
	return s.Player
}

func (s *ScoutSequence) LegalActions(gs *game.GameState) []game.Action {
	actions := make([]game.Action, 0, s.revealed+1)
	for i := 0; i < s.revealed; i++ {
		actions = append(actions, DiscardTop{Player: s.Player, Slot: i})
	}
	return append(actions, game.Pass{Player: s.Player})
}

func (s *ScoutSequence) AfterAction(gs *game.GameState, a game.Action) {
	if s.stage != scoutChoosing {
		return
	}
	switch a.(type) {
	case DiscardTop, game.Pass:
		s.stage = scoutDone
	}
}

func (s *ScoutSequence) Done() bool {
	return s.stage == scoutDone
}

func (s *ScoutSequence) Copy() game.Sequence {
	cp := *s
	return &cp
}

// reshuffleUnder shuffles the discard pile and puts it under the draw pile,
// keeping the cards already on top in place.
func reshuffleUnder(gs *game.GameState, player int) {
	discard, draw := gs.Deck(DiscardDeck(player)), gs.Deck(DrawDeck(player))
	if discard.Len() == 0 {
		return
	}
	cards := make([]game.ComponentID, 0, discard.Len())
	for discard.Len() > 0 {
		id, _, _ := discard.Draw()
		cards = append(cards, id)
	}
	gs.Rand().Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	for _, id := range cards {
		draw.AddToBottom(id)
	}
}

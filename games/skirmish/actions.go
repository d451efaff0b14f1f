package skirmish

import (
	"fmt"

	"tabletop/game"
)

// PlayCard plays a scoring card (or a Ward, for nothing) from hand.
type PlayCard struct {
	Player int
	Kind   string
}

func (a PlayCard) Execute(gs *game.GameState) error {
	if err := checkActor(gs, a.Player); err != nil {
		return err
	}
	if a.Kind == Raid || a.Kind == Scout {
		return fmt.Errorf("%s must be played as a sequence: %w", a.Kind, game.ErrIllegalAction)
	}
	if err := playFromHand(gs, a.Player, a.Kind); err != nil {
		return err
	}
	gs.AddCounter(ScoreCounter(a.Player), cardValues[a.Kind])
	return nil
}

func (a PlayCard) Key() string {
	return fmt.Sprintf("play/%d/%s", a.Player, a.Kind)
}

// EndTurn discards the play area and the rest of the hand, then draws a new
// hand.
type EndTurn struct {
	Player int
}

func (a EndTurn) Execute(gs *game.GameState) error {
	if err := checkActor(gs, a.Player); err != nil {
		return err
	}
	discard := gs.Deck(DiscardDeck(a.Player))
	for _, name := range []string{PlayDeck(a.Player), HandDeck(a.Player)} {
		d := gs.Deck(name)
		for d.Len() > 0 {
			gs.MoveCard(d, 0, discard, true)
		}
	}
	drawCards(gs, a.Player, HandSize)
	gs.SetCounter(playsCounter, 0)
	return nil
}

func (a EndTurn) Key() string {
	return fmt.Sprintf("end/%d", a.Player)
}

// RevealWard shows a Ward from hand to every player to block a raid. The
// card stays in hand, revealed. A ward that is already public is shown
// again before a hidden one is given away.
type RevealWard struct {
	Player int
}

func (a RevealWard) Execute(gs *game.GameState) error {
	if err := checkActor(gs, a.Player); err != nil {
		return err
	}
	hand := gs.Deck(HandDeck(a.Player))
	everyone := game.VisibleToAll(gs.NumPlayers)
	slot := -1
	for i, id := range hand.Items() {
		if gs.Components.Kind(id) != Ward {
			continue
		}
		if hand.VisibilityOf(i) == everyone {
			return nil
		}
		if slot < 0 {
			slot = i
		}
	}
	if slot < 0 {
		return fmt.Errorf("player %d holds no ward: %w", a.Player, game.ErrPrecondition)
	}
	hand.RevealAll(slot, gs.NumPlayers)
	return nil
}

func (a RevealWard) Key() string {
	return fmt.Sprintf("ward/%d", a.Player)
}

// DiscardCard discards a card of the given kind from hand.
type DiscardCard struct {
	Player int
	Kind   string
}

func (a DiscardCard) Execute(gs *game.GameState) error {
	if err := checkActor(gs, a.Player); err != nil {
		return err
	}
	hand := gs.Deck(HandDeck(a.Player))
	i := findKind(gs, hand, a.Kind)
	if i < 0 {
		return fmt.Errorf("player %d holds no %s: %w", a.Player, a.Kind, game.ErrPrecondition)
	}
	gs.MoveCard(hand, i, gs.Deck(DiscardDeck(a.Player)), true)
	return nil
}

func (a DiscardCard) Key() string {
	return fmt.Sprintf("discard/%d/%s", a.Player, a.Kind)
}

// DiscardTop discards a scouted card from the top of the draw pile.
type DiscardTop struct {
	Player int
	Slot   int
}

func (a DiscardTop) Execute(gs *game.GameState) error {
	if err := checkActor(gs, a.Player); err != nil {
		return err
	}
	draw := gs.Deck(DrawDeck(a.Player))
	if a.Slot < 0 || a.Slot >= draw.Len() || !draw.IsVisible(a.Slot, a.Player) {
		return fmt.Errorf("player %d has not seen slot %d: %w", a.Player, a.Slot, game.ErrPrecondition)
	}
	gs.MoveCard(draw, a.Slot, gs.Deck(DiscardDeck(a.Player)), true)
	return nil
}

func (a DiscardTop) Key() string {
	return fmt.Sprintf("discardtop/%d/%d", a.Player, a.Slot)
}

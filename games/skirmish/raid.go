package skirmish

import (
	"fmt"

	"tabletop/game"
)

type raidStage int

const (
	raidPending    raidStage = iota // not executed yet
	raidAnswering                   // the target reveals a ward or gives in
	raidDiscarding                  // the target is discarding down
	raidDone
)

// RaidSequence lets every opponent, in seat order after the attacker, either
// reveal a Ward or give up a point. A player who gives in with more than
// DiscardLimit cards in hand then discards down.
type RaidSequence struct {
	Attacker int

	opponents int // set on Execute
	target    int // index into the opponents, 0-based
	stage     raidStage
}

func NewRaid(attacker int) *RaidSequence {
	return &RaidSequence{Attacker: attacker}
}

func (r *RaidSequence) Execute(gs *game.GameState) error {
	if err := checkActor(gs, r.Attacker); err != nil {
		return err
	}
	if err := playFromHand(gs, r.Attacker, Raid); err != nil {
		return err
	}
	r.opponents = gs.NumPlayers - 1
	r.stage = raidAnswering
	if r.opponents == 0 {
		r.stage = raidDone
	}
	return nil
}

func (r *RaidSequence) Key() string {
	return fmt.Sprintf("raid/%d/%d/%d/%d", r.Attacker, r.opponents, r.target, r.stage)
}

// Target is the opponent currently raided.
func (r *RaidSequence) Target() int {
	return (r.Attacker + 1 + r.target) % (r.opponents + 1)
}

func (r *RaidSequence) CurrentPlayer() int {
	if r.Done() {
		return r.Attacker
	}
	return r.Target()
}

func (r *RaidSequence) LegalActions(gs *game.GameState) []game.Action {
	target := r.Target()
	actions := []game.Action{}
	if findKind(gs, gs.Deck(HandDeck(target)), Ward) >= 0 {
		actions = append(actions, RevealWard{Player: target})
	}
	return append(actions, game.Pass{Player: target})
}

func (r *RaidSequence) AfterAction(gs *game.GameState, a game.Action) {
	switch r.stage {
	case raidAnswering:
		switch a.(type) {
		case RevealWard:
			r.nextTarget()
		case game.Pass:
			target := r.Target()
			gs.AddCounter(ScoreCounter(r.Attacker), 1)
			gs.AddCounter(ScoreCounter(target), -1)
			if err := gs.Start(NewDiscardDown(target)); err == nil {
				r.stage = raidDiscarding
				return
			}
			r.nextTarget()
		}
	case raidDiscarding:
		if _, ok := a.(*DiscardDownSequence); ok {
			r.nextTarget()
		}
	}
}

func (r *RaidSequence) nextTarget() {
	r.target++
	r.stage = raidAnswering
	if r.target >= r.opponents {
		r.stage = raidDone
	}
}

func (r *RaidSequence) Done() bool {
	return r.stage == raidDone
}

func (r *RaidSequence) Copy() game.Sequence {
	cp := *r
	return &cp
}

// DiscardDownSequence has a player discard one card at a time until
// DiscardLimit remain.
type DiscardDownSequence struct {
	Player int
	done   bool
}

func NewDiscardDown(player int) *DiscardDownSequence {
	return &DiscardDownSequence{Player: player}
}

func (d *DiscardDownSequence) Execute(gs *game.GameState) error {
	if err := checkActor(gs, d.Player); err != nil {
		return err
	}
	if n := gs.Deck(HandDeck(d.Player)).Len(); n <= DiscardLimit {
		return fmt.Errorf("player %d holds %d cards: %w", d.Player, n, game.ErrPrecondition)
	}
	return nil
}

func (d *DiscardDownSequence) Key() string {
	return fmt.Sprintf("discarddown/%d/%t", d.Player, d.done)
}

func (d *DiscardDownSequence) CurrentPlayer() int {
	return d.Player
}

func (d *DiscardDownSequence) LegalActions(gs *game.GameState) []game.Action {
	kinds := handKinds(gs, d.Player)
	actions := make([]game.Action, len(kinds))
	for i, kind := range kinds {
		actions[i] = DiscardCard{Player: d.Player, Kind: kind}
	}
	return actions
}

func (d *DiscardDownSequence) AfterAction(gs *game.GameState, a game.Action) {
	if gs.Deck(HandDeck(d.Player)).Len() <= DiscardLimit {
		d.done = true
	}
}

func (d *DiscardDownSequence) Done() bool {
	return d.done
}

func (d *DiscardDownSequence) Copy() game.Sequence {
	cp := *d
	return &cp
}

package game

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(fm *ForwardModel)

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(fm *ForwardModel) {
		fm.logger = logger
	}
}

// ActionFilter narrows the legal actions of a live state, e.g. to forbid
// passing in a search or to script part of a player's choices. It must leave
// at least one action.
type ActionFilter func(gs *GameState, actions []Action) []Action

// WithActionFilter applies filter after the rules and the action stack have
// produced the legal set. Filters run in the order they are given.
func WithActionFilter(filter ActionFilter) Option {
	return func(fm *ForwardModel) {
		fm.filters = append(fm.filters, filter)
	}
}

// ForwardModel drives a game: it routes action generation and application
// between the base rules and whichever sequence is in progress. It holds no
// game state and can be shared between goroutines.
type ForwardModel struct {
	rules   Rules
	filters []ActionFilter
	logger  zerolog.Logger
}

func NewForwardModel(rules Rules, options ...Option) *ForwardModel {
	fm := &ForwardModel{
		rules:  rules,
		logger: log.Logger,
	}
	for _, option := range options {
		option(fm)
	}
	return fm
}

func (fm *ForwardModel) Rules() Rules {
	return fm.rules
}

func (fm *ForwardModel) Setup(gs *GameState, rng *rand.Rand) {
	fm.rules.Setup(gs, rng)
}

// LegalActions lists the actions available to gs.CurrentPlayer(). A
// finished game has none; a live game always has at least one.
func (fm *ForwardModel) LegalActions(gs *GameState) []Action {
	if gs.Ended() {
		return nil
	}
	var actions []Action
	if top := gs.Stack.Top(); top != nil {
		actions = top.LegalActions(gs)
	} else {
		actions = fm.rules.LegalActions(gs)
	}
	for _, filter := range fm.filters {
		actions = filter(gs, actions)
	}
	if len(actions) == 0 {
		panic(fmt.Errorf("%w: player %d with stack %v", ErrNoLegalActions, gs.CurrentPlayer(), gs.Stack.Keys()))
	}
	return actions
}

// Apply plays a, which must be one of LegalActions(gs), and carries the
// state forward to the next decision. Applying an action outside the legal
// set, or to a finished game, panics with a *ProtocolViolation. An error
// means Execute rejected the action and the state is unchanged.
//
// A sequence is copied before it runs, so the value the caller passed in is
// never pushed or mutated and may be applied again to another state.
func (fm *ForwardModel) Apply(gs *GameState, a Action) error {
	if a == nil {
		panic(violation(a, ErrIllegalAction))
	}
	if gs.Ended() {
		panic(violation(a, ErrGameOver))
	}
	key := a.Key()
	if _, ok := FindAction(fm.LegalActions(gs), key); !ok {
		panic(violation(a, ErrIllegalAction))
	}

	player := gs.CurrentPlayer()
	top := gs.Stack.Top()
	seq, isSeq := a.(Sequence)
	if isSeq {
		seq = seq.Copy()
		a = seq
	}
	if err := a.Execute(gs); err != nil {
		return fmt.Errorf("apply %s: %w", key, err)
	}
	gs.tick++
	gs.record(player, key)

	if isSeq {
		gs.Stack.Push(seq)
		fm.logger.Debug().Str("sequence", seq.Key()).Int("depth", gs.Stack.Len()).Msg("push")
	} else if top != nil {
		top.AfterAction(gs, a)
	}

	// A completed sequence counts as the resolved action of its parent.
	for top := gs.Stack.Top(); top != nil && top.Done(); top = gs.Stack.Top() {
		done := gs.Stack.Pop()
		fm.logger.Debug().Str("sequence", done.Key()).Int("depth", gs.Stack.Len()).Msg("pop")
		if parent := gs.Stack.Top(); parent != nil {
			parent.AfterAction(gs, done)
		}
	}

	if gs.Ended() || !gs.Stack.Empty() {
		return nil
	}
	// A player who has just gone out cannot keep the turn.
	owner := gs.Turn.Current()
	if !fm.rules.EndOfTurn(gs, a) && !gs.PlayerOut(owner) {
		return nil
	}
	roundEnded, none := gs.Turn.Advance(gs.PlayerOut)
	if none {
		fm.logger.Debug().Int("tick", gs.tick).Msg("every player is out")
		gs.finish()
		return nil
	}
	if roundEnded {
		fm.logger.Debug().Int("round", gs.Turn.Round).Msg("round ended")
		fm.rules.EndOfRound(gs)
	}
	fm.logger.Debug().Int("from", owner).Int("to", gs.Turn.Current()).Msg("turn ended")
	return nil
}

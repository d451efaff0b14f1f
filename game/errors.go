package game

import (
	"errors"
	"fmt"
)

var (
	ErrWrongActor     = errors.New("action taken by a player who is not the current actor")
	ErrPrecondition   = errors.New("action precondition not met")
	ErrIllegalAction  = errors.New("action is not in the legal action set")
	ErrGameOver       = errors.New("game is over")
	ErrEmptyStack     = errors.New("action stack is empty")
	ErrRedaction      = errors.New("visibility ledger out of sync with items")
	ErrNoLegalActions = errors.New("no legal actions in a live game")
)

// ProtocolViolation is raised (as a panic value) when the action generator
// and the applier disagree. It is never recovered by the engine.
type ProtocolViolation struct {
	Action string // Key of the offending action
	Err    error
}

func (p *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation by %q: %v", p.Action, p.Err)
}

func (p *ProtocolViolation) Unwrap() error {
	return p.Err
}

func violation(a Action, err error) *ProtocolViolation {
	key := "<nil>"
	if a != nil {
		key = a.Key()
	}
	return &ProtocolViolation{Action: key, Err: err}
}

package game

import "fmt"

// Action is a single move. Key must encode the variant and every field that
// affects what Execute does: two actions with the same key are the same
// action.
type Action interface {
	// Execute applies the action's own effect. A non-nil error means the
	// action was rejected and the state is unchanged.
	Execute(gs *GameState) error
	Key() string
}

// Pass does nothing. Sequences offer it whenever a stage would otherwise
// have no legal action.
type Pass struct {
	Player int
}

func (p Pass) Execute(gs *GameState) error {
	if actor := gs.CurrentPlayer(); actor != p.Player {
		return fmt.Errorf("pass by player %d, current actor %d: %w", p.Player, actor, ErrWrongActor)
	}
	return nil
}

func (p Pass) Key() string {
	return fmt.Sprintf("pass/%d", p.Player)
}

// ActionKeys maps actions to their keys.
func ActionKeys(actions []Action) []string {
	keys := make([]string, len(actions))
	for i, a := range actions {
		keys[i] = a.Key()
	}
	return keys
}

// FindAction returns the action with the given key.
func FindAction(actions []Action, key string) (Action, bool) {
	for _, a := range actions {
		if a.Key() == key {
			return a, true
		}
	}
	return nil, false
}

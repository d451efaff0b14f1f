package game

// Sequence is an action that unfolds into a multi-stage sub-protocol. Once
// Execute accepts it, it sits on the action stack and controls play until
// Done reports true.
//
// Implementations keep a stage enumeration and the scalars captured along
// the way. Key must cover the variant, the stage and every captured field,
// since it feeds state equality and hashing.
type Sequence interface {
	Action

	// CurrentPlayer is the actor for the current stage. It depends only on
	// the sequence's own fields, never on who started it.
	CurrentPlayer() int

	// LegalActions lists the follow-up actions for the current stage. It
	// must never be empty: stages with no real choice offer Pass.
	LegalActions(gs *GameState) []Action

	// AfterAction advances the stage once a follow-up action resolves. When
	// a nested sequence completes, it is passed here as the action.
	AfterAction(gs *GameState, a Action)

	Done() bool

	// Copy returns an independent deep copy.
	Copy() Sequence
}

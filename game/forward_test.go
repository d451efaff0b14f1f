package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// counterRules is a minimal game: on their turn a player bumps a counter or
// starts one of the sequences below. The game ends after maxRounds.
type counterRules struct{}

func (counterRules) Setup(gs *GameState, rng *rand.Rand) {
	gs.Turn.Reset(0)
	hand := NewDeck("hand/0", 0, VisibleTo(0))
	draw := NewDeck("draw/0", 0, HiddenToAll)
	for i := 0; i < 6; i++ {
		id := gs.Components.Create(fmt.Sprintf("card%d", i), 0)
		if i < 2 {
			hand.Add(id)
		} else {
			draw.Add(id)
		}
	}
	draw.Shuffle(rng)
	gs.AddDeck(hand)
	gs.AddDeck(draw)
	gs.DefinePool("hand/0", "draw/0")
}

func (counterRules) LegalActions(gs *GameState) []Action {
	p := gs.Turn.Current()
	return []Action{
		bump{Player: p},
		&twoStage{player: p},
		&outer{player: p, target: (p + 1) % gs.NumPlayers},
		&instant{player: p},
		&guarded{player: p},
	}
}

func (counterRules) EndOfTurn(gs *GameState, last Action) bool {
	return true
}

func (counterRules) EndOfRound(gs *GameState) {
	if gs.Turn.RoundsExhausted() {
		results := make([]float64, gs.NumPlayers)
		results[0] = 1
		gs.EndGame(results)
	}
}

// resignRules lets a player bump or leave the game. Only a bump ends the
// turn on its own.
type resignRules struct {
	counterRules
}

func (resignRules) LegalActions(gs *GameState) []Action {
	p := gs.Turn.Current()
	return []Action{bump{Player: p}, resign{Player: p}}
}

func (resignRules) EndOfTurn(gs *GameState, last Action) bool {
	_, ok := last.(bump)
	return ok
}

func checkActor(gs *GameState, player int) error {
	if actor := gs.CurrentPlayer(); actor != player {
		return fmt.Errorf("player %d, current actor %d: %w", player, actor, ErrWrongActor)
	}
	return nil
}

type bump struct {
	Player int
}

func (b bump) Execute(gs *GameState) error {
	if err := checkActor(gs, b.Player); err != nil {
		return err
	}
	gs.AddCounter("bumps", 1)
	return nil
}

func (b bump) Key() string { return fmt.Sprintf("bump/%d", b.Player) }

type resign struct {
	Player int
}

func (r resign) Execute(gs *GameState) error {
	if err := checkActor(gs, r.Player); err != nil {
		return err
	}
	gs.SetPlayerResult(r.Player, 0)
	return nil
}

func (r resign) Key() string { return fmt.Sprintf("resign/%d", r.Player) }

type step struct {
	Player int
	Stage  int
}

func (s step) Execute(gs *GameState) error {
	if err := checkActor(gs, s.Player); err != nil {
		return err
	}
	gs.AddCounter("steps", 1)
	return nil
}

func (s step) Key() string { return fmt.Sprintf("step/%d/%d", s.Player, s.Stage) }

// twoStage takes two steps from its player.
type twoStage struct {
	player int
	stage  int
}

func (s *twoStage) Execute(gs *GameState) error {
	if err := checkActor(gs, s.player); err != nil {
		return err
	}
	s.stage = 1
	return nil
}

func (s *twoStage) Key() string        { return fmt.Sprintf("two/%d/%d", s.player, s.stage) }
func (s *twoStage) CurrentPlayer() int { return s.player }
func (s *twoStage) Done() bool         { return s.stage > 2 }
func (s *twoStage) Copy() Sequence     { cp := *s; return &cp }
func (s *twoStage) AfterAction(gs *GameState, a Action) {
	if _, ok := a.(step); ok {
		s.stage++
	}
}

func (s *twoStage) LegalActions(gs *GameState) []Action {
	return []Action{step{Player: s.player, Stage: s.stage}}
}

// outer hands control to target, who may answer with a nested inner
// sequence or pass, then returns to player for a final pass.
type outer struct {
	player, target int
	answered       bool
	answer         string
	done           bool
}

func (o *outer) Execute(gs *GameState) error {
	return checkActor(gs, o.player)
}

func (o *outer) Key() string {
	return fmt.Sprintf("outer/%d/%d/%t/%s/%t", o.player, o.target, o.answered, o.answer, o.done)
}

func (o *outer) CurrentPlayer() int {
	if o.answered {
		return o.player
	}
	return o.target
}

func (o *outer) LegalActions(gs *GameState) []Action {
	if o.answered {
		return []Action{Pass{Player: o.player}}
	}
	return []Action{&inner{player: o.target}, Pass{Player: o.target}}
}

func (o *outer) AfterAction(gs *GameState, a Action) {
	switch a := a.(type) {
	case *inner:
		o.answered = true
		o.answer = a.Key()
	case Pass:
		if o.answered {
			o.done = true
		} else {
			o.answered = true
			o.answer = "pass"
		}
	}
}

func (o *outer) Done() bool     { return o.done }
func (o *outer) Copy() Sequence { cp := *o; return &cp }

type inner struct {
	player int
	done   bool
}

func (s *inner) Execute(gs *GameState) error {
	return checkActor(gs, s.player)
}

func (s *inner) Key() string        { return fmt.Sprintf("inner/%d/%t", s.player, s.done) }
func (s *inner) CurrentPlayer() int { return s.player }
func (s *inner) Done() bool         { return s.done }
func (s *inner) Copy() Sequence     { cp := *s; return &cp }
func (s *inner) AfterAction(gs *GameState, a Action) {
	s.done = true
}

func (s *inner) LegalActions(gs *GameState) []Action {
	return []Action{step{Player: s.player}}
}

// instant completes as soon as it executes.
type instant struct {
	player int
}

func (s *instant) Execute(gs *GameState) error {
	if err := checkActor(gs, s.player); err != nil {
		return err
	}
	gs.AddCounter("instants", 1)
	return nil
}

func (s *instant) Key() string                         { return fmt.Sprintf("instant/%d", s.player) }
func (s *instant) CurrentPlayer() int                  { return s.player }
func (s *instant) Done() bool                          { return true }
func (s *instant) Copy() Sequence                      { cp := *s; return &cp }
func (s *instant) AfterAction(gs *GameState, a Action) {}
func (s *instant) LegalActions(gs *GameState) []Action { return []Action{Pass{Player: s.player}} }

// guarded is rejected until something has been bumped.
type guarded struct {
	player int
}

func (s *guarded) Execute(gs *GameState) error {
	if gs.Counter("bumps") == 0 {
		return fmt.Errorf("nothing bumped yet: %w", ErrPrecondition)
	}
	return nil
}

func (s *guarded) Key() string                         { return fmt.Sprintf("guarded/%d", s.player) }
func (s *guarded) CurrentPlayer() int                  { return s.player }
func (s *guarded) Done() bool                          { return true }
func (s *guarded) Copy() Sequence                      { cp := *s; return &cp }
func (s *guarded) AfterAction(gs *GameState, a Action) {}
func (s *guarded) LegalActions(gs *GameState) []Action { return []Action{Pass{Player: s.player}} }

func newCounterGame(t *testing.T, players, rounds int) (*ForwardModel, *GameState) {
	t.Helper()
	fm := NewForwardModel(counterRules{})
	gs := NewGameState(players, rounds, 1)
	fm.Setup(gs, newTestRand(1))
	return fm, gs
}

func newResignGame(t *testing.T, players int) (*ForwardModel, *GameState) {
	t.Helper()
	fm := NewForwardModel(resignRules{})
	gs := NewGameState(players, 0, 1)
	fm.Setup(gs, newTestRand(1))
	return fm, gs
}

func requireViolation(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "Should panic")
		v, ok := r.(*ProtocolViolation)
		require.True(t, ok, "Should panic with a protocol violation, got %v", r)
		require.ErrorIs(t, v, target)
	}()
	f()
}

func TestForwardModelBaseActions(t *testing.T) {
	t.Run("a plain action ends the turn", func(t *testing.T) {
		fm, gs := newCounterGame(t, 3, 0)

		require.NoError(t, fm.Apply(gs, bump{Player: 0}))

		require.Equal(t, 1, gs.Counter("bumps"))
		require.Equal(t, 1, gs.CurrentPlayer())
		require.Equal(t, 1, gs.Tick())
	})

	t.Run("the round hook ends the game", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 1)

		require.NoError(t, fm.Apply(gs, bump{Player: 0}))
		require.False(t, gs.Ended())
		require.NoError(t, fm.Apply(gs, bump{Player: 1}))

		require.True(t, gs.Ended())
		require.Equal(t, []int{0}, gs.Winners())
		require.Nil(t, fm.LegalActions(gs))
	})
}

func TestForwardModelSequences(t *testing.T) {
	t.Run("two stage sequence", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		seq := &twoStage{player: 0}

		require.NoError(t, fm.Apply(gs, seq))
		require.Equal(t, 1, gs.Stack.Len())
		require.Equal(t, 0, gs.CurrentPlayer(), "Turn should not advance while a sequence runs")

		require.NoError(t, fm.Apply(gs, step{Player: 0, Stage: 1}))
		top := gs.Stack.Top().(*twoStage)
		require.Equal(t, 2, top.stage)
		require.False(t, top.Done())
		require.Equal(t, 1, gs.Stack.Len())

		require.NoError(t, fm.Apply(gs, step{Player: 0, Stage: 2}))
		require.True(t, top.Done())
		require.True(t, gs.Stack.Empty())
		require.Equal(t, 1, gs.CurrentPlayer(), "Turn order should resume control")
		require.Equal(t, 2, gs.Counter("steps"))
	})

	t.Run("the applied sequence value stays with the caller", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		seq := &twoStage{player: 0}

		require.NoError(t, fm.Apply(gs, seq))
		require.NotSame(t, seq, gs.Stack.Top())
		require.Zero(t, seq.stage)

		require.NoError(t, fm.Apply(gs, step{Player: 0, Stage: 1}))
		require.NoError(t, fm.Apply(gs, step{Player: 0, Stage: 2}))
		require.Zero(t, seq.stage, "Stage transitions should only touch the stacked copy")
		require.Equal(t, "two/0/0", seq.Key())

		other := NewGameState(2, 0, 1)
		fm.Setup(other, newTestRand(1))
		require.NoError(t, fm.Apply(other, seq), "The same value should still be legal elsewhere")
		require.Equal(t, "two/0/1", other.Stack.Top().Key())
	})

	t.Run("start pushes a copy", func(t *testing.T) {
		_, gs := newCounterGame(t, 2, 0)
		seq := &twoStage{player: 0}

		require.NoError(t, gs.Start(seq))

		require.NotSame(t, seq, gs.Stack.Top())
		require.Zero(t, seq.stage)
		require.Equal(t, "two/0/1", gs.Stack.Top().Key())
	})

	t.Run("nested sequence hands control to the target and back", func(t *testing.T) {
		fm, gs := newCounterGame(t, 3, 0)

		require.NoError(t, fm.Apply(gs, &outer{player: 0, target: 1}))
		require.Equal(t, 1, gs.CurrentPlayer())

		require.NoError(t, fm.Apply(gs, &inner{player: 1}))
		require.Equal(t, 2, gs.Stack.Len())
		require.Equal(t, 1, gs.CurrentPlayer())

		require.NoError(t, fm.Apply(gs, step{Player: 1}))
		require.Equal(t, 1, gs.Stack.Len(), "Completed inner sequence should be popped")
		parent := gs.Stack.Top().(*outer)
		require.True(t, parent.answered, "Parent should be notified of the completed child")
		require.Equal(t, "inner/1/true", parent.answer)
		require.Equal(t, 0, gs.CurrentPlayer())

		require.NoError(t, fm.Apply(gs, Pass{Player: 0}))
		require.True(t, gs.Stack.Empty())
		require.Equal(t, 1, gs.CurrentPlayer())
	})

	t.Run("a sequence done on execute is pushed and popped at once", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)

		require.NoError(t, fm.Apply(gs, &instant{player: 0}))

		require.True(t, gs.Stack.Empty())
		require.Equal(t, 1, gs.Counter("instants"))
		require.Equal(t, 1, gs.CurrentPlayer())
	})

	t.Run("a rejected sequence is never stacked", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		before := gs.FullCopy()

		err := fm.Apply(gs, &guarded{player: 0})

		require.ErrorIs(t, err, ErrPrecondition)
		require.True(t, gs.Stack.Empty())
		require.True(t, before.Equal(gs), "State should be unchanged")
		require.Equal(t, 0, gs.CurrentPlayer())
	})
}

func TestForwardModelViolations(t *testing.T) {
	t.Run("action outside the legal set", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)

		requireViolation(t, ErrIllegalAction, func() {
			fm.Apply(gs, bump{Player: 1})
		})
	})

	t.Run("base action while a sequence is in progress", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		require.NoError(t, fm.Apply(gs, &twoStage{player: 0}))

		requireViolation(t, ErrIllegalAction, func() {
			fm.Apply(gs, bump{Player: 0})
		})
	})

	t.Run("action after the game is over", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		gs.EndGame([]float64{0, 1})

		requireViolation(t, ErrGameOver, func() {
			fm.Apply(gs, bump{Player: 0})
		})
	})

	t.Run("violation reports the offending key", func(t *testing.T) {
		v := violation(bump{Player: 3}, ErrIllegalAction)

		require.Equal(t, "bump/3", v.Action)
		require.True(t, errors.Is(v, ErrIllegalAction))
	})
}

func TestForwardModelPlayerStatus(t *testing.T) {
	t.Run("players who are out are skipped", func(t *testing.T) {
		fm, gs := newResignGame(t, 3)

		require.NoError(t, fm.Apply(gs, resign{Player: 0}))
		require.Equal(t, Ended, gs.PlayerStatus(0))
		require.Equal(t, Ongoing, gs.PlayerStatus(1))
		require.Equal(t, 1, gs.CurrentPlayer(), "A player who is out should lose the turn")

		require.NoError(t, fm.Apply(gs, bump{Player: 1}))
		require.NoError(t, fm.Apply(gs, bump{Player: 2}))

		require.Equal(t, 1, gs.Turn.Round, "A round should count active players only")
		require.Equal(t, 1, gs.CurrentPlayer(), "The first player is out so the next one opens the round")
		require.False(t, gs.Ended())
	})

	t.Run("the game ends when every player is out", func(t *testing.T) {
		fm, gs := newResignGame(t, 2)

		require.NoError(t, fm.Apply(gs, resign{Player: 0}))
		require.False(t, gs.Ended())
		require.NoError(t, fm.Apply(gs, resign{Player: 1}))

		require.True(t, gs.Ended())
		require.Equal(t, []float64{0, 0}, gs.Results())
		require.Nil(t, fm.LegalActions(gs))
	})

	t.Run("ending the game puts every player out", func(t *testing.T) {
		_, gs := newResignGame(t, 2)
		gs.EndGame([]float64{1, 0})

		require.True(t, gs.PlayerOut(0))
		require.True(t, gs.PlayerOut(1))
	})

	t.Run("player status is part of the hash", func(t *testing.T) {
		_, gs := newResignGame(t, 2)
		cp := gs.FullCopy()
		cp.SetPlayerResult(1, 0)

		require.False(t, gs.Equal(cp))
		require.NotEqual(t, gs.Hash(), cp.Hash())
	})
}

func TestForwardModelHistory(t *testing.T) {
	t.Run("applied actions are recorded with their chooser", func(t *testing.T) {
		fm, gs := newCounterGame(t, 3, 0)

		require.NoError(t, fm.Apply(gs, &outer{player: 0, target: 1}))
		require.NoError(t, fm.Apply(gs, Pass{Player: 1}))
		require.NoError(t, fm.Apply(gs, Pass{Player: 0}))
		require.Error(t, fm.Apply(gs, &guarded{player: 1}))

		require.Equal(t, []Move{
			{Player: 0, Action: "outer/0/1/false//false"},
			{Player: 1, Action: "pass/1"},
			{Player: 0, Action: "pass/0"},
		}, gs.History())
	})

	t.Run("copies keep their own history", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		require.NoError(t, fm.Apply(gs, bump{Player: 0}))
		cp := gs.FullCopy()

		require.NoError(t, fm.Apply(cp, bump{Player: 1}))
		require.NoError(t, fm.Apply(gs, &instant{player: 1}))

		require.Len(t, gs.History(), 2)
		require.Equal(t, "instant/1", gs.History()[1].Action)
		require.Equal(t, "bump/1", cp.History()[1].Action)
	})

	t.Run("history is not part of the hash", func(t *testing.T) {
		fm, gs := newCounterGame(t, 2, 0)
		cp := gs.FullCopy()
		require.NoError(t, fm.Apply(gs, bump{Player: 0}))
		require.NoError(t, fm.Apply(cp, bump{Player: 0}))
		cp.history = nil

		require.True(t, gs.Equal(cp))
		require.Equal(t, gs.Hash(), cp.Hash())
	})
}

func TestForwardModelActionFilter(t *testing.T) {
	t.Run("filtered actions are no longer legal", func(t *testing.T) {
		noBumps := func(gs *GameState, actions []Action) []Action {
			var kept []Action
			for _, a := range actions {
				if _, ok := a.(bump); !ok {
					kept = append(kept, a)
				}
			}
			return kept
		}
		fm := NewForwardModel(counterRules{}, WithActionFilter(noBumps))
		gs := NewGameState(2, 0, 1)
		fm.Setup(gs, newTestRand(1))

		_, ok := FindAction(fm.LegalActions(gs), "bump/0")
		require.False(t, ok)
		requireViolation(t, ErrIllegalAction, func() {
			fm.Apply(gs, bump{Player: 0})
		})
		require.NoError(t, fm.Apply(gs, &instant{player: 0}))
	})

	t.Run("an empty legal set panics", func(t *testing.T) {
		none := func(gs *GameState, actions []Action) []Action { return nil }
		fm := NewForwardModel(counterRules{}, WithActionFilter(none))
		gs := NewGameState(2, 0, 1)
		fm.Setup(gs, newTestRand(1))

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok, "Should panic with an error")
			require.ErrorIs(t, err, ErrNoLegalActions)
		}()
		fm.LegalActions(gs)
	})
}

func TestForwardModelRandomPlayouts(t *testing.T) {
	t.Run("every live state has a legal action and the stack drains", func(t *testing.T) {
		for seed := uint64(0); seed < 20; seed++ {
			fm, gs := newCounterGame(t, 3, 4)
			rng := newTestRand(seed)

			for moves := 0; !gs.Ended(); moves++ {
				require.Less(t, moves, 1000, "Game should terminate")
				actions := fm.LegalActions(gs)
				require.NotEmpty(t, actions)
				a := actions[rng.Intn(len(actions))]
				if err := fm.Apply(gs, a); err != nil {
					require.ErrorIs(t, err, ErrPrecondition)
				}
				for _, seq := range gs.Stack.Entries() {
					require.False(t, seq.Done(), "Completed sequences should never stay on the stack")
				}
			}
			require.True(t, gs.Stack.Empty())
		}
	})
}

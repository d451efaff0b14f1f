package engine

import (
	"fmt"
	"time"

	"tabletop/experiments/metrics"
	"tabletop/game"
	"tabletop/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var _ Engine = (*LocalEngine)(nil)

type Option func(e *LocalEngine)

func WithMaxMoves(moves int) Option {
	return func(e *LocalEngine) {
		if moves > 0 {
			e.maxMoves = moves
		}
	}
}

// LocalEngine plays a set-up game between in-process agents. Agents only
// ever see copies of the game redacted for their own player.
type LocalEngine struct {
	fm       *game.ForwardModel
	State    *game.GameState
	agents   []agent.Agent
	rng      *rand.Rand // redaction randomness
	maxMoves int
}

func NewLocalEngine(fm *game.ForwardModel, state *game.GameState, agents []agent.Agent, rng *rand.Rand, options ...Option) *LocalEngine {
	if len(agents) != state.NumPlayers {
		panic(fmt.Sprintf("got %d agents for %d players", len(agents), state.NumPlayers))
	}
	e := &LocalEngine{
		fm:       fm,
		State:    state,
		agents:   agents,
		rng:      rng,
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes the game loop until the game ends or maxMoves actions have
// been played.
func (e *LocalEngine) Run() (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.CurrentPlayer(),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %d is starting", gameMetric.StartingPlayer)

	for step := 1; !e.State.Ended() && step <= e.maxMoves; step++ {
		player := e.State.CurrentPlayer()
		view := e.State.Copy(player, e.rng)

		candidate, searchMetric := e.agents[player].FindAction(e.fm, view, player)
		key := candidate.Key()
		action, ok := game.FindAction(e.fm.LegalActions(e.State), key)
		if !ok {
			panic(&game.ProtocolViolation{Action: key, Err: game.ErrIllegalAction})
		}
		if err := e.fm.Apply(e.State, action); err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("step %d: %w", step, err)
		}

		log.Debug().Int("step", step).Int("player", player).Str("action", key).Msg("played")
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Action:       key,
			SearchMetric: searchMetric,
		})
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Rounds = e.State.Turn.Round
	gameMetric.Winners = e.State.Winners()
	gameMetric.Results = e.State.Results()

	if e.State.Ended() {
		log.Info().Msgf("game over after %d moves with winners %v", gameMetric.TotalMoves, gameMetric.Winners)
	} else {
		log.Warn().Msgf("stopped after %d moves without a winner", gameMetric.TotalMoves)
	}
	return gameMetric, moveMetrics, nil
}

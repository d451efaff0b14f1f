package searcher

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tabletop/experiments/metrics"
	"tabletop/game"

	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// MCTS is a tree-parallel information set Monte Carlo tree search. Every
// episode samples its own determinisation of the searching player's view,
// so the search never peeks at hidden information.
type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	seed       atomic.Uint64
	collector  func() metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.collector = metrics.NewCollector
	}
}

// WithSeed fixes the seed of the workers' random sources.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed.Store(seed)
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: goroutines,
		cutoff:     MaxCutoff,
		evaluate:   evaluateDraw,
		collector:  metrics.NewDummyCollector,
	}
	m.seed.Store(uint64(time.Now().UnixNano()))
	for _, option := range options {
		option(m)
	}
	if m.goroutines < 1 {
		panic("Must use at least one goroutine")
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// evaluateDraw scores every cut off position as a draw.
func evaluateDraw(gs *game.GameState, player int) float64 {
	return 1 / float64(gs.NumPlayers)
}

// Simulate searches from gs on behalf of player and returns the visit count
// of every explored action, keyed by action key. gs is never modified and
// only the information visible to player is used.
func (m *MCTS) Simulate(fm *game.ForwardModel, gs *game.GameState, player int) (map[string]float64, metrics.SearchMetric) {
	root := newDecision(nil, game.AllObservers, "")
	collector := m.collector()

	// Run simulations to collect statistics
	collector.Start(m.goroutines, m.cutoff)
	if m.episodes > 0 {
		m.iterate(fm, root, gs, player, collector)
	} else {
		m.countdown(fm, root, gs, player, collector)
	}
	collector.SetNodes(root.size())
	metric := collector.Complete()

	// Output move policy and move finding metrics
	return root.Policy(), metric
}

// newRand gives each worker its own random source.
func (m *MCTS) newRand() *rand.Rand {
	return rand.New(rand.NewSource(m.seed.Add(1)))
}

func (m *MCTS) iterate(fm *game.ForwardModel, root *decision, gs *game.GameState, player int, collector metrics.Collector) {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		rng := m.newRand()
		go func() {
			defer wg.Done()

			for range task {
				m.simulate(fm, root, gs, player, rng, collector)
				collector.AddEpisode()
			}
		}()
	}

	wg.Wait()
}

func (m *MCTS) countdown(fm *game.ForwardModel, root *decision, gs *game.GameState, player int, collector metrics.Collector) {
	done := make(chan any)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		rng := m.newRand()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					m.simulate(fm, root, gs, player, rng, collector)
					collector.AddEpisode()
				}
			}
		}()
	}

	<-time.After(m.duration)
	close(done)
	wg.Wait()
}

// simulate runs one episode on a fresh determinisation.
func (m *MCTS) simulate(fm *game.ForwardModel, root *decision, gs *game.GameState, player int, rng *rand.Rand, collector metrics.Collector) {
	state := gs.Copy(player, rng)
	node := selectThenExpand(fm, root, state, rng)
	rewards := rollout(fm, state, m.cutoff, m.evaluate, rng, collector)
	backup(node, rewards)
}

// selectThenExpand descends the tree, playing the chosen actions on state,
// until it adds a node or reaches the end of the game.
func selectThenExpand(fm *game.ForwardModel, root *decision, state *game.GameState, rng *rand.Rand) *decision {
	node := root
	for !state.Ended() {
		actor := state.CurrentPlayer()
		child, action, expanded := node.SelectOrExpand(fm.LegalActions(state), actor, rng)
		play(fm, state, action)
		node = child
		if expanded {
			break
		}
	}
	return node
}

func rollout(fm *game.ForwardModel, state *game.GameState, cutoff int, evaluate game.Evaluate, rng *rand.Rand, collector metrics.Collector) []float64 {
	// Rollout till game over or for cutoff number of moves
	for depth := 0; !state.Ended() && depth < cutoff; depth++ {
		actions := fm.LegalActions(state)
		play(fm, state, actions[rng.Intn(len(actions))]) // Random rollout policy
	}

	if state.Ended() { // Game over before cutoff
		collector.AddFullPlayout()
		return state.Results()
	}

	// At cutoff state, every player's evaluation stands in for the result
	rewards := make([]float64, state.NumPlayers)
	for p := range rewards {
		rewards[p] = evaluate(state, p)
	}
	return rewards
}

func play(fm *game.ForwardModel, state *game.GameState, action game.Action) {
	if err := fm.Apply(state, action); err != nil {
		panic(fmt.Sprintf("legal action rejected during search: %v", err))
	}
}

func backup(node *decision, rewards []float64) {
	for node != nil {
		node = node.Backup(rewards)
	}
}

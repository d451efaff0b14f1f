package experiments

import (
	"fmt"

	"tabletop/engine"
	"tabletop/experiments/metrics"
	"tabletop/game"
	"tabletop/games/skirmish"
	"tabletop/meta"
	"tabletop/searcher"
	"tabletop/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Run executes the experiment named by cfg.Experiment and writes its
// records under cfg.OutputDir. It returns the run directory.
func Run(cfg meta.Config) (string, error) {
	switch cfg.Experiment {
	case "matchups":
		return runExperiment(cfg.Experiment, cfg, cfg.Agents, cfg.MatchUps)
	case "throughput":
		configs, matchUps := throughputMatchUps(cfg.Players)
		return runExperiment(cfg.Experiment, cfg, configs, matchUps)
	case "parallelization":
		configs, matchUps := parallelizationMatchUps(cfg.Players)
		return runExperiment(cfg.Experiment, cfg, configs, matchUps)
	case "cutoff":
		configs, matchUps := cutoffMatchUps(cfg.Players)
		return runExperiment(cfg.Experiment, cfg, configs, matchUps)
	default:
		return "", fmt.Errorf("unknown experiment %q", cfg.Experiment)
	}
}

func runExperiment(name string, cfg meta.Config, configs []metrics.AgentConfig, matchUps [][]int) (string, error) {
	byID := make(map[int]metrics.AgentConfig, len(configs))
	for _, c := range configs {
		byID[c.ID] = c
	}

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, seats := range matchUps {
		seated := make([]metrics.AgentConfig, len(seats))
		for i, id := range seats {
			c, ok := byID[id]
			if !ok {
				return "", fmt.Errorf("matchup %d: unknown agent %d", mi+1, id)
			}
			seated[i] = c
		}

		log.Info().Msgf("starting matchup %d of %d between agents %v...", mi+1, len(matchUps), seats)

		for i := 0; i < cfg.Games; i++ {
			count++
			seed := cfg.Seed + uint64(count)

			gameMetric, moveMetrics, err := runGame(cfg, seated, seed)
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agents:     seats,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winners: %v", mi+1, len(matchUps), i+1, gameMetric.Winners)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	return store(name, cfg.OutputDir, configs, gameRecords, moveRecords)
}

func store(name, root string, configs []metrics.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored move records")

	return writer.Dir(), nil
}

// runGame plays one game of Skirmish with an agent per seat. Every source
// of randomness in the game derives from seed.
func runGame(cfg meta.Config, seated []metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	rules := skirmish.NewRules(cfg.Rounds)
	fm := game.NewForwardModel(rules)
	gs := rules.NewState(len(seated), seed)
	fm.Setup(gs, rand.New(rand.NewSource(seed)))

	agents := make([]agent.Agent, len(seated))
	for i, c := range seated {
		agents[i] = createAgent(c, seed+uint64(i)+1)
	}
	e := engine.NewLocalEngine(fm, gs, agents, rand.New(rand.NewSource(seed^0x9e3779b97f4a7c15)), engine.WithMaxMoves(cfg.MaxMoves))

	gameMetric, moveMetrics, err := e.Run()
	gameMetric.Seed = seed
	return gameMetric, moveMetrics, err
}

func createAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	switch config.Kind {
	case "random":
		return agent.NewRandomAgent(rand.New(rand.NewSource(seed)))
	case "train":
		temperature := config.Temperature
		if temperature <= 0 {
			temperature = 1
		}
		return agent.NewTrainingAgent(createMCTS(config, seed), temperature, rand.New(rand.NewSource(seed)))
	default:
		return agent.NewEvaluationAgent(createMCTS(config, seed))
	}
}

func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithEvaluationFn(skirmish.Evaluate),
		searcher.WithSeed(seed),
	}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(config.Goroutines, options...)
}

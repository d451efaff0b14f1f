// Package meta holds the experiment configuration: constant defaults, an
// optional YAML file, then TABLETOP_* environment variables on top.
package meta

import (
	"errors"
	"fmt"
	"os"
	"time"

	"tabletop/experiments/metrics"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Goroutines defines the number of goroutines to use.
const Goroutines = 8

// Episodes defines the number of episodes for MCTS.
const Episodes = 150

// Cutoff defines the rollout cutoff for MCTS.
const Cutoff = 100

// MaxMoves bounds the length of a game.
const MaxMoves = 3000

// Config describes an experiment: which agents play which seats, how many
// games and with which seed.
type Config struct {
	Experiment string `yaml:"experiment" env:"TABLETOP_EXPERIMENT"`
	OutputDir  string `yaml:"output_dir" env:"TABLETOP_OUTPUT_DIR"`
	LogLevel   string `yaml:"log_level"  env:"TABLETOP_LOG_LEVEL"`
	Players    int    `yaml:"players"    env:"TABLETOP_PLAYERS"`
	Rounds     int    `yaml:"rounds"     env:"TABLETOP_ROUNDS"`
	Games      int    `yaml:"games"      env:"TABLETOP_GAMES"`
	Seed       uint64 `yaml:"seed"       env:"TABLETOP_SEED"`
	MaxMoves   int    `yaml:"max_moves"  env:"TABLETOP_MAX_MOVES"`

	Agents   []metrics.AgentConfig `yaml:"agents"`
	MatchUps [][]int               `yaml:"matchups"` // agent ids per seat
}

// Default pits a searching agent against a random baseline.
func Default() Config {
	return Config{
		Experiment: "matchups",
		OutputDir:  "results",
		LogLevel:   "info",
		Players:    2,
		Rounds:     5,
		Games:      10,
		Seed:       1,
		MaxMoves:   MaxMoves,
		Agents: []metrics.AgentConfig{
			{ID: 0, Kind: "random"},
			{ID: 1, Kind: "eval", Goroutines: Goroutines, Episodes: Episodes, Cutoff: Cutoff},
			{ID: 2, Kind: "eval", Goroutines: Goroutines, Duration: 10 * time.Millisecond, Cutoff: Cutoff},
		},
		MatchUps: [][]int{{1, 0}, {0, 1}, {1, 2}},
	}
}

// Load reads the configuration. path may be empty, in which case only the
// defaults and the environment apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	if c.Players < 1 {
		return fmt.Errorf("%w: %d players", ErrInvalidConfig, c.Players)
	}
	if c.Games < 1 {
		return fmt.Errorf("%w: %d games", ErrInvalidConfig, c.Games)
	}
	ids := make(map[int]bool, len(c.Agents))
	for _, a := range c.Agents {
		if ids[a.ID] {
			return fmt.Errorf("%w: duplicate agent id %d", ErrInvalidConfig, a.ID)
		}
		ids[a.ID] = true
		switch a.Kind {
		case "random":
		case "eval", "train":
			if a.Episodes <= 0 && a.Duration <= 0 {
				return fmt.Errorf("%w: agent %d has no search budget", ErrInvalidConfig, a.ID)
			}
			if a.Goroutines < 1 {
				return fmt.Errorf("%w: agent %d has no goroutines", ErrInvalidConfig, a.ID)
			}
		default:
			return fmt.Errorf("%w: agent %d has unknown kind %q", ErrInvalidConfig, a.ID, a.Kind)
		}
	}
	for i, seats := range c.MatchUps {
		if len(seats) != c.Players {
			return fmt.Errorf("%w: matchup %d seats %d agents for %d players", ErrInvalidConfig, i, len(seats), c.Players)
		}
		for _, id := range seats {
			if !ids[id] {
				return fmt.Errorf("%w: matchup %d uses unknown agent %d", ErrInvalidConfig, i, id)
			}
		}
	}
	return nil
}

// Agent returns the agent config with the given id.
func (c Config) Agent(id int) (metrics.AgentConfig, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return metrics.AgentConfig{}, false
}

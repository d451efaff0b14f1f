package experiments

import (
	"time"

	"tabletop/experiments/metrics"
)

const TimeBudget = 10 * time.Millisecond

var goroutineCounts = []int{1, 2, 4, 8, 16, 32, 64}

func parallelConfigs(firstID int) []metrics.AgentConfig {
	configs := make([]metrics.AgentConfig, len(goroutineCounts))
	for i, n := range goroutineCounts {
		configs[i] = metrics.AgentConfig{ID: firstID + i, Kind: "eval", Goroutines: n, Duration: TimeBudget}
	}
	return configs
}

// seat fills every seat with candidate except the even ones, which go to
// baseline.
func seat(players, baseline, candidate int) []int {
	seats := make([]int, players)
	for i := range seats {
		if i%2 == 0 {
			seats[i] = baseline
		} else {
			seats[i] = candidate
		}
	}
	return seats
}

// throughputMatchUps seats the same config everywhere, for the same playing
// strength and similar game length.
func throughputMatchUps(players int) ([]metrics.AgentConfig, [][]int) {
	configs := parallelConfigs(1)
	matchUps := [][]int{}
	for _, c := range configs {
		matchUps = append(matchUps, seat(players, c.ID, c.ID))
	}
	return configs, matchUps
}

// parallelizationMatchUps pairs each config against the sequential
// baseline, once from each starting seat.
func parallelizationMatchUps(players int) ([]metrics.AgentConfig, [][]int) {
	baseline := metrics.AgentConfig{ID: 0, Kind: "eval", Goroutines: 1, Duration: TimeBudget}
	configs := parallelConfigs(1)
	matchUps := [][]int{}
	for _, c := range configs {
		matchUps = append(matchUps, seat(players, baseline.ID, c.ID), seat(players, c.ID, baseline.ID))
	}
	return append(configs, baseline), matchUps
}

// cutoffMatchUps pairs agents with a rollout cutoff against one that
// always plays out to the end of the game.
func cutoffMatchUps(players int) ([]metrics.AgentConfig, [][]int) {
	baseline := metrics.AgentConfig{ID: 0, Kind: "eval", Goroutines: 8, Duration: TimeBudget}
	configs := []metrics.AgentConfig{baseline}
	for i, cutoff := range []int{5, 20, 50, 100} {
		c := baseline
		c.ID = i + 1
		c.Cutoff = cutoff
		configs = append(configs, c)
	}
	matchUps := [][]int{}
	for _, c := range configs[1:] {
		matchUps = append(matchUps, seat(players, baseline.ID, c.ID))
	}
	return configs, matchUps
}

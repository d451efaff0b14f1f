package searcher

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

const Win = 1.0  // Reward for a won game
const Loss = 0.0 // Reward for a lost game, also used as the virtual loss

// MaxCutoff bounds rollouts when no cutoff is configured, as a guard
// against games that fail to terminate.
const MaxCutoff = 100000

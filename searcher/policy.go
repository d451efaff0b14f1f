package searcher

import (
	"fmt"
	"math"
)

// ucb is the availability form of UCB1 used for information set trees. The
// log term counts the episodes in which a child was legal, not the visits
// of its parent.
type ucb struct {
	exploration float64 // c^2 * ln(avails)
}

func newUCB(cSquared, avails float64) ucb {
	if avails <= 0 {
		panic(fmt.Sprintf("ucb: child available in %v episodes", avails))
	}
	return ucb{exploration: cSquared * math.Log(avails)}
}

func (u ucb) score(rewards, visits float64) float64 {
	if visits <= 0 {
		panic(fmt.Sprintf("ucb: child visited %v times", visits))
	}
	return rewards/visits + math.Sqrt(u.exploration/visits)
}

package searcher

import (
	"math"
	"sync"

	"tabletop/game"

	"golang.org/x/exp/rand"
)

// decision is a node of the information set tree. Children are keyed by
// action key, so one node serves every determinisation in which the same
// actions lead there.
type decision struct {
	sync.RWMutex
	parent   *decision
	player   int    // player who chose the action leading here
	action   string // key of that action
	children map[string]*decision
	order    []string // children keys in expansion order
	rewards  float64
	visits   float64
	avails   float64 // episodes in which this node's action was legal
}

func newDecision(parent *decision, player int, action string) *decision {
	return &decision{
		parent:   parent,
		player:   player,
		action:   action,
		children: make(map[string]*decision),
	}
}

// SelectOrExpand picks the next action from actions, the legal actions of
// the episode's determinisation, and returns the child it leads to. The
// child carries a virtual loss until the episode backs up. expanded reports
// whether the child was created by this call.
func (d *decision) SelectOrExpand(actions []game.Action, actor int, rng *rand.Rand) (child *decision, action game.Action, expanded bool) {
	d.Lock()
	defer d.Unlock()

	var unexplored []game.Action
	var available []game.Action
	for _, a := range actions {
		if c, ok := d.children[a.Key()]; ok {
			c.addAvail()
			available = append(available, a)
		} else {
			unexplored = append(unexplored, a)
		}
	}

	if len(unexplored) > 0 { // Expandable node
		action = unexplored[rng.Intn(len(unexplored))]
		child = newDecision(d, actor, action.Key())
		child.avails = 1
		d.children[action.Key()] = child
		d.order = append(d.order, action.Key())
		child.applyLoss()
		return child, action, true
	}

	// Fully expanded for this determinisation
	best := -1
	maxScore := math.Inf(-1)
	for i, a := range available {
		score := d.children[a.Key()].score(CSquared)
		if score > maxScore {
			maxScore = score
			best = i
		}
	}
	action = available[best]
	child = d.children[action.Key()]
	child.applyLoss()
	return child, action, false
}

func (d *decision) addAvail() {
	d.Lock()
	defer d.Unlock()

	d.avails++
}

func (d *decision) applyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += Loss
	d.visits++
}

func (d *decision) score(cSquared float64) float64 {
	d.RLock()
	defer d.RUnlock()

	return newUCB(cSquared, d.avails).score(d.rewards, d.visits)
}

// Backup records the episode's rewards, one per player, and returns the
// parent.
func (d *decision) Backup(rewards []float64) *decision {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Non-root node
		d.reverseLoss()
	}

	if d.player >= 0 {
		d.rewards += rewards[d.player]
	}
	d.visits++

	return d.parent
}

func (d *decision) reverseLoss() {
	d.rewards -= Loss
	d.visits--
}

func (d *decision) Visits() float64 {
	d.RLock()
	defer d.RUnlock()

	return d.visits
}

// Policy maps each explored action to its visit count.
func (d *decision) Policy() map[string]float64 {
	d.RLock()
	defer d.RUnlock()

	policy := make(map[string]float64, len(d.children))
	for _, key := range d.order {
		policy[key] = d.children[key].Visits()
	}
	return policy
}

func (d *decision) size() int {
	d.RLock()
	defer d.RUnlock()

	n := 1
	for _, child := range d.children {
		n += child.size()
	}
	return n
}

package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	FullPlayouts int
	Nodes        int // tree size when the search completed
}

type MoveMetric struct {
	Step   int
	Player int
	Action string // key of the chosen action
	SearchMetric
}

type GameMetric struct {
	Seed           uint64
	StartingPlayer int
	Winners        []int
	Results        []float64
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Rounds         int
}

// Collector counts what a single search did. The counting methods are
// called from every search goroutine at once.
type Collector interface {
	// Start clears the counts for a new search.
	Start(goroutines, cutoff int)
	// AddFullPlayout notes an episode that reached the end of the game
	// before the cutoff.
	AddFullPlayout()
	AddEpisode()
	// SetNodes records the tree size.
	SetNodes(n int)
	Complete() SearchMetric
}

type collector struct {
	goroutines, cutoff int
	started            time.Time

	episodes, fullPlayouts, nodes atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(goroutines, cutoff int) {
	c.goroutines, c.cutoff = goroutines, cutoff
	c.reset()
	c.started = time.Now()
}

func (c *collector) reset() {
	for _, counter := range []*atomic.Int32{&c.episodes, &c.fullPlayouts, &c.nodes} {
		counter.Store(0)
	}
}

func (c *collector) AddFullPlayout() { c.fullPlayouts.Add(1) }
func (c *collector) AddEpisode()     { c.episodes.Add(1) }
func (c *collector) SetNodes(n int)  { c.nodes.Store(int32(n)) }

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   c.goroutines,
		Cutoff:       c.cutoff,
		Duration:     time.Since(c.started),
		Episodes:     int(c.episodes.Load()),
		FullPlayouts: int(c.fullPlayouts.Load()),
		Nodes:        int(c.nodes.Load()),
	}
}

// nopCollector is used when metrics are off.
type nopCollector struct{}

func NewDummyCollector() Collector {
	return nopCollector{}
}

func (nopCollector) Start(int, int)         {}
func (nopCollector) AddFullPlayout()        {}
func (nopCollector) AddEpisode()            {}
func (nopCollector) SetNodes(int)           {}
func (nopCollector) Complete() SearchMetric { return SearchMetric{} }

package optimization

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Selector repeats each engine several independent times and retains, per
// engine, the run that achieved the highest Sharpe ratio. Runs share no
// mutable state, so they execute concurrently; every run gets an
// independently seeded random source derived from the selector seed, which
// keeps the whole selection reproducible for a fixed seed.
type Selector struct {
	problem *Problem
	seed    uint64
	log     zerolog.Logger
}

// NewSelector creates a selector over the problem. The seed determines the
// random sources of every engine run.
func NewSelector(p *Problem, seed uint64, log zerolog.Logger) *Selector {
	return &Selector{
		problem: p,
		seed:    seed,
		log:     log.With().Str("component", "selector").Logger(),
	}
}

// Run executes runs independent runs of every named engine and returns the
// best result per engine, keyed by engine name.
func (s *Selector) Run(engines []string, popSize, generations, runs int) (map[string]Result, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("no engines requested")
	}
	if popSize < 1 {
		return nil, fmt.Errorf("population size must be positive, got %d", popSize)
	}
	if generations < 1 {
		return nil, fmt.Errorf("generations must be positive, got %d", generations)
	}
	if runs < 1 {
		return nil, fmt.Errorf("runs must be positive, got %d", runs)
	}

	// Construct every engine instance up front so an unknown name fails
	// before any search work starts.
	type task struct {
		engine Engine
		out    *Result
	}
	allResults := make([][]Result, len(engines))
	tasks := make([]task, 0, len(engines)*runs)
	for ei, name := range engines {
		allResults[ei] = make([]Result, runs)
		for r := 0; r < runs; r++ {
			src := rand.NewPCG(s.seed, uint64(ei)<<32|uint64(r))
			engine, err := NewEngine(name, s.problem, src)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task{engine: engine, out: &allResults[ei][r]})
		}
	}

	g := new(errgroup.Group)
	for _, tk := range tasks {
		tk := tk
		g.Go(func() error {
			*tk.out = tk.engine.Run(popSize, generations)
			return nil
		})
	}
	// Engine runs cannot fail; Wait only synchronizes.
	_ = g.Wait()

	bestPerEngine := make(map[string]Result, len(engines))
	for ei, name := range engines {
		best := allResults[ei][0]
		for _, res := range allResults[ei][1:] {
			if betterFitness(-res.SharpeRatio, -best.SharpeRatio) {
				best = res
			}
		}
		s.log.Info().
			Str("engine", name).
			Int("runs", runs).
			Float64("sharpe_ratio", best.SharpeRatio).
			Msg("Selected best run")
		bestPerEngine[name] = best
	}

	return bestPerEngine, nil
}

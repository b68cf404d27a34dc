// Package explore supplies a minimal breadth-first state-space explorer
// that drives checker.Model. The model checking core treats the explorer
// as an external collaborator and is agnostic to how (or whether) one is
// parallelized; this implementation exercises the core end-to-end and
// parallelizes successor computation within a BFS level with
// golang.org/x/sync/errgroup.
package explore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/latticefoundry/actorcheck/internal/checker"
)

// Budget bounds a run so pathological models cannot explore forever.
type Budget struct {
	MaxStates int
	MaxDepth  int
}

// DefaultBudget caps exploration at a size generous enough for the
// reference ping-pong and register scenarios while still terminating
// quickly if a model is misconfigured into an unbounded state space.
func DefaultBudget() Budget {
	return Budget{MaxStates: 200_000, MaxDepth: 10_000}
}

// Result is the outcome of one Explore call.
type Result[M comparable, S comparable, H checker.Cloneable[H]] struct {
	StatesVisited  int
	ActionsApplied int
	MaxDepthSeen   int
	Properties     []PropertyOutcome[M]
}

// PropertyOutcome pairs a property's name/kind with its verdict and, for a
// falsified Always property or an unwitnessed Sometimes property, the
// shortest discovered path.
type PropertyOutcome[M comparable] struct {
	Name           string
	Kind           string
	Holds          bool
	Witnessed      bool
	Counterexample []checker.SystemAction[M]
}

// Explore performs a breadth-first traversal of model starting from
// InitStates, deduplicating states by checker.Fingerprint, stopping at
// WithinBoundary fences, and evaluating every declared property against
// every visited state. Successor expansion for the states at one BFS depth
// runs concurrently via an errgroup; the frontier for the next depth is
// collected in frontier order once every goroutine in the current depth
// completes. The deduplication check and the recording of a counterexample
// happen inside those goroutines, so when several paths of the same length
// reach equal states or falsify the same property, which path is kept or
// reported depends on goroutine scheduling; its length is always the
// shortest found.
func Explore[M comparable, S comparable, H checker.Cloneable[H]](
	ctx context.Context,
	model *checker.SystemModel[M, S, H],
	budget Budget,
) (Result[M, S, H], error) {
	type frontierEntry struct {
		state checker.SystemState[M, S, H]
		path  []checker.SystemAction[M]
	}

	visited := make(map[uint64]bool, 1024)
	var mu sync.Mutex

	properties := model.Properties()
	outcomes := make([]PropertyOutcome[M], len(properties))
	for i, p := range properties {
		outcomes[i] = PropertyOutcome[M]{Name: p.Name, Kind: p.Kind.String()}
	}

	var statesVisited, actionsApplied, maxDepth int

	frontier := make([]frontierEntry, 0, 8)
	for _, s := range model.InitStates() {
		frontier = append(frontier, frontierEntry{state: s})
	}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > budget.MaxDepth {
			return Result[M, S, H]{}, fmt.Errorf("explore: exceeded max depth %d", budget.MaxDepth)
		}
		maxDepth = depth

		type expansion struct {
			children []frontierEntry
		}
		results := make([]expansion, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		for i, entry := range frontier {
			i, entry := i, entry
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if !model.WithinBoundary(entry.state) {
					return nil
				}

				fp := checker.Fingerprint(entry.state)
				mu.Lock()
				alreadyVisited := visited[fp]
				if !alreadyVisited {
					visited[fp] = true
				}
				mu.Unlock()
				if alreadyVisited {
					return nil
				}

				mu.Lock()
				statesVisited++
				mu.Unlock()

				for pi, p := range properties {
					holds := p.Predicate(model, entry.state)
					mu.Lock()
					if p.Kind == checker.Sometimes {
						if holds {
							outcomes[pi].Witnessed = true
						}
					} else if !holds && len(outcomes[pi].Counterexample) == 0 {
						outcomes[pi].Counterexample = append([]checker.SystemAction[M]{}, entry.path...)
					}
					mu.Unlock()
				}

				var actions []checker.SystemAction[M]
				model.Actions(entry.state, &actions)

				children := make([]frontierEntry, 0, len(actions))
				for _, a := range actions {
					next, ok := model.NextState(entry.state, a)
					if !ok {
						continue
					}
					mu.Lock()
					actionsApplied++
					mu.Unlock()
					path := append(append([]checker.SystemAction[M]{}, entry.path...), a)
					children = append(children, frontierEntry{state: next, path: path})
				}

				results[i] = expansion{children: children}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result[M, S, H]{}, err
		}

		next := make([]frontierEntry, 0, len(frontier))
		for _, r := range results {
			next = append(next, r.children...)
		}
		frontier = next

		if statesVisited > budget.MaxStates {
			return Result[M, S, H]{}, fmt.Errorf("explore: exceeded max states %d", budget.MaxStates)
		}
	}

	for i, p := range properties {
		if p.Kind == checker.Always {
			outcomes[i].Holds = len(outcomes[i].Counterexample) == 0
		} else {
			outcomes[i].Holds = outcomes[i].Witnessed
		}
	}

	return Result[M, S, H]{
		StatesVisited:  statesVisited,
		ActionsApplied: actionsApplied,
		MaxDepthSeen:   maxDepth,
		Properties:     outcomes,
	}, nil
}

// ToReport converts a Result into the checker's shared report shape so an
// exploration run can be serialized the same way a test run is.
func ToReport[M comparable, S comparable, H checker.Cloneable[H]](res Result[M, S, H], elapsed int64) *checker.ExplorationReport {
	props := make([]*checker.PropertyResult, len(res.Properties))
	for i, p := range res.Properties {
		var steps []string
		for _, a := range p.Counterexample {
			steps = append(steps, a.String())
		}
		props[i] = &checker.PropertyResult{
			Name:           p.Name,
			Kind:           p.Kind,
			Holds:          p.Holds,
			Witnessed:      p.Witnessed,
			Counterexample: steps,
		}
	}
	return &checker.ExplorationReport{
		Duration:        time.Duration(elapsed),
		StatesExplored:  res.StatesVisited,
		ActionsExplored: res.ActionsApplied,
		MaxDepth:        res.MaxDepthSeen,
		Properties:      props,
	}
}

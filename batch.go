package astrora

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// GridResult is the outcome of one entry of a grid solve.
type GridResult struct {
	Solution LambertSolution
	Err      error
}

// SolveBatch solves the same geometry for several times of flight with the default solver.
func SolveBatch(r1, r2 r3.Vec, tofs []float64, mu float64, kind TransferKind, revs uint32) ([]LambertSolution, error) {
	return defaultSolver.SolveBatch(r1, r2, tofs, mu, kind, revs)
}

// SolveBatchParallel solves independent problems in parallel with the default solver.
func SolveBatchParallel(r1s, r2s []r3.Vec, tofs []float64, mu float64, kind TransferKind, revs uint32) ([]LambertSolution, error) {
	return defaultSolver.SolveBatchParallel(r1s, r2s, tofs, mu, kind, revs)
}

// SolveBatch solves the same geometry for each of the provided times of flight, in order.
// It stops at the first failure and returns it along with its index.
func (s *Solver) SolveBatch(r1, r2 r3.Vec, tofs []float64, mu float64, kind TransferKind, revs uint32) ([]LambertSolution, error) {
	start := time.Now()
	defer func() { s.metrics.observeBatch("sequential", len(tofs), time.Since(start)) }()
	sols := make([]LambertSolution, 0, len(tofs))
	for i, tof := range tofs {
		sol, err := s.Solve(r1, r2, tof, mu, kind, revs)
		if err != nil {
			level.Debug(s.logger).Log("subsys", "lambert", "mode", "sequential", "index", i, "tof", tof, "err", err)
			return nil, fmt.Errorf("tof[%d]: %w", i, err)
		}
		sols = append(sols, sol)
	}
	return sols, nil
}

// SolveBatchParallel solves the i-th problem (r1s[i], r2s[i], tofs[i]) for every i on a bounded
// worker pool. All entries are evaluated; if any failed, the failure of the lowest index is
// returned and no solutions are.
func (s *Solver) SolveBatchParallel(r1s, r2s []r3.Vec, tofs []float64, mu float64, kind TransferKind, revs uint32) ([]LambertSolution, error) {
	results, err := s.SolveGrid(context.Background(), r1s, r2s, tofs, mu, kind, revs)
	if err != nil {
		return nil, err
	}
	sols := make([]LambertSolution, len(results))
	for i, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, res.Err)
		}
		sols[i] = res.Solution
	}
	return sols, nil
}

// SolveGrid solves the i-th problem (r1s[i], r2s[i], tofs[i]) for every i on a bounded worker pool
// and returns every outcome at its index. Cancelling ctx stops the submission of new entries:
// those not solved report the context error, as does SolveGrid itself.
func (s *Solver) SolveGrid(ctx context.Context, r1s, r2s []r3.Vec, tofs []float64, mu float64, kind TransferKind, revs uint32) ([]GridResult, error) {
	n := len(tofs)
	if len(r1s) != n || len(r2s) != n {
		return nil, invalidState("batch length mismatch: %d r1, %d r2 and %d tof", len(r1s), len(r2s), n)
	}
	start := time.Now()
	results := make([]GridResult, n)
	g := new(errgroup.Group)
	g.SetLimit(s.workers())
	submitted := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Solution, results[i].Err = s.Solve(r1s[i], r2s[i], tofs[i], mu, kind, revs)
			return nil
		})
		submitted++
	}
	g.Wait()
	for i := submitted; i < n; i++ {
		results[i].Err = ctx.Err()
	}
	s.metrics.observeBatch("parallel", n, time.Since(start))

	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			level.Debug(s.logger).Log("subsys", "lambert", "mode", "parallel", "index", i, "tof", tofs[i], "err", res.Err)
		}
	}
	level.Info(s.logger).Log("subsys", "lambert", "mode", "parallel", "entries", n, "failed", failed, "workers", s.workers(), "duration", time.Since(start))
	return results, ctx.Err()
}

func (s *Solver) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.NumCPU()
}

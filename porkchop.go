package astrora

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// PorkchopConfig defines a launch and arrival window between two bodies orbiting the Sun.
type PorkchopConfig struct {
	Departure, Arrival        CelestialObject
	LaunchFrom, LaunchUntil   time.Time
	ArrivalFrom, ArrivalUntil time.Time
	LaunchStep, ArrivalStep   time.Duration
	Kind                      TransferKind
	Revs                      uint32
}

// Validate returns an error if the windows are empty or the steps are not positive.
func (c PorkchopConfig) Validate() error {
	if c.LaunchStep <= 0 || c.ArrivalStep <= 0 {
		return fmt.Errorf("%w: porkchop steps must be positive (launch %s, arrival %s)", ErrInvalidParameter, c.LaunchStep, c.ArrivalStep)
	}
	if c.LaunchUntil.Before(c.LaunchFrom) {
		return fmt.Errorf("%w: launch window ends (%s) before it starts (%s)", ErrInvalidParameter, c.LaunchUntil, c.LaunchFrom)
	}
	if c.ArrivalUntil.Before(c.ArrivalFrom) {
		return fmt.Errorf("%w: arrival window ends (%s) before it starts (%s)", ErrInvalidParameter, c.ArrivalUntil, c.ArrivalFrom)
	}
	return nil
}

// Porkchop stores the departure C3, arrival v∞ and time of flight of every launch and arrival
// date pair, indexed [launch][arrival]. Cells without a solution hold NaN.
type Porkchop struct {
	Departure, Arrival CelestialObject
	Launches, Arrivals []time.Time
	C3                 [][]float64 // km^2/s^2
	VInfArrival        [][]float64 // km/s
	TOF                [][]float64 // days
	Failures           int         // cells whose Lambert problem failed
}

// window returns the dates from start to end (inclusive) spaced by step.
func window(start, end time.Time, step time.Duration) []time.Time {
	var dates []time.Time
	for dt := start; !dt.After(end); dt = dt.Add(step) {
		dates = append(dates, dt)
	}
	return dates
}

// GeneratePorkchop solves the Lambert problem of every launch and arrival date pair of the
// configured windows on the solver's worker pool. Arrivals at or before the launch are left NaN.
func GeneratePorkchop(ctx context.Context, s *Solver, cfg PorkchopConfig) (*Porkchop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Porkchop{
		Departure: cfg.Departure,
		Arrival:   cfg.Arrival,
		Launches:  window(cfg.LaunchFrom, cfg.LaunchUntil, cfg.LaunchStep),
		Arrivals:  window(cfg.ArrivalFrom, cfg.ArrivalUntil, cfg.ArrivalStep),
	}
	type state struct{ R, V r3.Vec }
	states := func(body CelestialObject, dates []time.Time) ([]state, error) {
		sts := make([]state, len(dates))
		for i, dt := range dates {
			R, V, err := body.HelioState(dt)
			if err != nil {
				return nil, err
			}
			sts[i] = state{R, V}
		}
		return sts, nil
	}
	dep, err := states(cfg.Departure, p.Launches)
	if err != nil {
		return nil, err
	}
	arr, err := states(cfg.Arrival, p.Arrivals)
	if err != nil {
		return nil, err
	}

	type cell struct{ launch, arrival int }
	var cells []cell
	var r1s, r2s []r3.Vec
	var tofs []float64
	p.C3 = make([][]float64, len(p.Launches))
	p.VInfArrival = make([][]float64, len(p.Launches))
	p.TOF = make([][]float64, len(p.Launches))
	for i, launch := range p.Launches {
		p.C3[i] = make([]float64, len(p.Arrivals))
		p.VInfArrival[i] = make([]float64, len(p.Arrivals))
		p.TOF[i] = make([]float64, len(p.Arrivals))
		for j, arrival := range p.Arrivals {
			p.C3[i][j], p.VInfArrival[i][j], p.TOF[i][j] = math.NaN(), math.NaN(), math.NaN()
			tof := arrival.Sub(launch)
			if tof <= 0 {
				continue
			}
			p.TOF[i][j] = tof.Hours() / 24
			cells = append(cells, cell{i, j})
			r1s = append(r1s, dep[i].R)
			r2s = append(r2s, arr[j].R)
			tofs = append(tofs, tof.Seconds())
		}
	}

	results, err := s.SolveGrid(ctx, r1s, r2s, tofs, Sun.μ, cfg.Kind, cfg.Revs)
	if err != nil {
		return nil, err
	}
	for k, res := range results {
		c := cells[k]
		if res.Err != nil {
			p.Failures++
			continue
		}
		p.C3[c.launch][c.arrival] = res.Solution.C3(dep[c.launch].V) / 1e6
		p.VInfArrival[c.launch][c.arrival] = r3.Norm(res.Solution.ArrivalVInfinity(arr[c.arrival].V)) / 1e3
	}
	return p, nil
}

// Best returns the launch and arrival indexes of the lowest departure C3, skipping NaN cells.
// ok is false if no cell has a solution.
func (p *Porkchop) Best() (launch, arrival int, c3 float64, ok bool) {
	c3 = math.Inf(1)
	for i, row := range p.C3 {
		for j, v := range row {
			if !math.IsNaN(v) && v < c3 {
				launch, arrival, c3, ok = i, j, v, true
			}
		}
	}
	if !ok {
		c3 = math.NaN()
	}
	return
}

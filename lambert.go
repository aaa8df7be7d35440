package astrora

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-kit/log"
	"gonum.org/v1/gonum/spatial/r3"
)

// TransferKind defines the direction of a Lambert transfer.
type TransferKind uint8

const (
	// TransferAuto infers the direction from the sign of the orbit normal: short way when the
	// z component of r1 x r2 is positive or nil (prograde convention), long way otherwise.
	TransferAuto TransferKind = iota + 1
	// TransferShortWay is a transfer with a true anomaly change below 180 degrees.
	TransferShortWay
	// TransferLongWay is a transfer with a true anomaly change above 180 degrees.
	TransferLongWay
)

func (k TransferKind) String() string {
	switch k {
	case TransferAuto:
		return "auto"
	case TransferShortWay:
		return "short-way"
	case TransferLongWay:
		return "long-way"
	default:
		return fmt.Sprintf("TransferKind(%d)", uint8(k))
	}
}

func (k TransferKind) valid() bool {
	return k >= TransferAuto && k <= TransferLongWay
}

// shortWay resolves the direction of this transfer for the provided positions.
func (k TransferKind) shortWay(r1, r2 r3.Vec) bool {
	switch k {
	case TransferShortWay:
		return true
	case TransferLongWay:
		return false
	default:
		return r3.Cross(r1, r2).Z >= 0
	}
}

// ParseTransferKind returns the transfer kind from its name.
func ParseTransferKind(name string) (TransferKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return TransferAuto, nil
	case "short", "short-way", "shortway":
		return TransferShortWay, nil
	case "long", "long-way", "longway":
		return TransferLongWay, nil
	default:
		return 0, fmt.Errorf("%w: unknown transfer kind %q", ErrInvalidParameter, name)
	}
}

// LambertSolution is the conic connecting R1 to R2 in TOF seconds.
type LambertSolution struct {
	R1, R2     r3.Vec  // m
	TOF        float64 // s
	Mu         float64 // m^3/s^2
	V1, V2     r3.Vec  // m/s
	A          float64 // semi-major axis (m), negative for hyperbolic transfers
	E          float64 // eccentricity
	Revs       uint32  // complete revolutions solved for
	ShortWay   bool
	Iterations int
}

// Orbit returns the transfer orbit at departure.
func (s LambertSolution) Orbit() Orbit {
	return NewOrbitFromRV(s.R1, s.V1, s.Mu)
}

// DepartureVInfinity returns the hyperbolic excess velocity with respect to a body moving at vBody at R1.
func (s LambertSolution) DepartureVInfinity(vBody r3.Vec) r3.Vec {
	return r3.Sub(s.V1, vBody)
}

// ArrivalVInfinity returns the hyperbolic excess velocity with respect to a body moving at vBody at R2.
func (s LambertSolution) ArrivalVInfinity(vBody r3.Vec) r3.Vec {
	return r3.Sub(s.V2, vBody)
}

// C3 returns the characteristic energy of the departure, in m^2/s^2.
func (s LambertSolution) C3(vBody r3.Vec) float64 {
	return r3.Norm2(s.DepartureVInfinity(vBody))
}

// conic returns the semi-major axis (from vis-viva) and eccentricity of the orbit through r with velocity v.
func conic(r, v r3.Vec, μ float64) (a, e float64) {
	rNorm := r3.Norm(r)
	a = 1 / (2/rNorm - r3.Dot(v, v)/μ)
	h := r3.Cross(r, v)
	eVec := r3.Sub(r3.Scale(1/μ, r3.Cross(v, h)), r3.Scale(1/rNorm, r))
	e = r3.Norm(eVec)
	return
}

// Solver dispatches Lambert problems to the single or multi revolution solvers.
// A Solver is safe for concurrent use.
type Solver struct {
	cfg     Config
	logger  log.Logger
	metrics *Metrics
}

// NewSolver returns a solver for the provided configuration. The logger and metrics may be nil.
func NewSolver(cfg Config, logger log.Logger, metrics *Metrics) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Solver{cfg: cfg, logger: logger, metrics: metrics}, nil
}

var defaultSolver = &Solver{cfg: DefaultConfig(), logger: log.NewNopLogger()}

// Solve solves Lambert's problem with the default solver.
// revs = 0 is the direct transfer, revs >= 1 uses the multi revolution solver.
func Solve(r1, r2 r3.Vec, tof, mu float64, kind TransferKind, revs uint32) (LambertSolution, error) {
	return defaultSolver.Solve(r1, r2, tof, mu, kind, revs)
}

// Solve solves Lambert's problem: it returns the velocities at r1 and r2 of the conic connecting
// them in tof seconds around a body of gravitational parameter mu, after revs complete revolutions.
func (s *Solver) Solve(r1, r2 r3.Vec, tof, mu float64, kind TransferKind, revs uint32) (LambertSolution, error) {
	sol, err := s.solve(r1, r2, tof, mu, kind, revs)
	if s.metrics != nil {
		iterations := sol.Iterations
		var cerr *ConvergenceError
		if errors.As(err, &cerr) {
			iterations = cerr.Iterations
		}
		s.metrics.observeSolve(methodName(revs), iterations, err)
	}
	return sol, err
}

func (s *Solver) solve(r1, r2 r3.Vec, tof, mu float64, kind TransferKind, revs uint32) (LambertSolution, error) {
	if err := validate(r1, r2, tof, mu, kind); err != nil {
		return LambertSolution{}, err
	}
	shortWay := kind.shortWay(r1, r2)
	if revs == 0 {
		return solveUniversal(r1, r2, tof, mu, shortWay)
	}
	return solveMultiRev(r1, r2, tof, mu, shortWay, revs, s.cfg.Update)
}

// validate performs the checks shared by both solvers.
func validate(r1, r2 r3.Vec, tof, mu float64, kind TransferKind) error {
	r1Norm, r2Norm := r3.Norm(r1), r3.Norm(r2)
	// The negated comparisons also reject NaNs.
	if !(r1Norm >= 1) || !(r2Norm >= 1) {
		return invalidParameter("position magnitude", math.Min(r1Norm, r2Norm), "must be > 1 m")
	}
	if !(tof > 0) || math.IsInf(tof, 1) {
		return invalidParameter("time of flight", tof, "must be positive")
	}
	if !(mu > 0) || math.IsInf(mu, 1) {
		return invalidParameter("gravitational parameter", mu, "must be positive")
	}
	if !kind.valid() {
		return invalidParameter("transfer kind", float64(kind), "must be auto, short-way or long-way")
	}
	return nil
}

func methodName(revs uint32) string {
	if revs == 0 {
		return methodUniversal
	}
	return methodMultiRev
}

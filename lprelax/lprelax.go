// Package lprelax defines the LP relaxation oracle contract the search
// driver drives every node through, plus a small reference implementation
// good enough to exercise the driver's control flow in tests. A production
// LP engine (presolve, a real simplex or interior-point method, warm
// starting from a real basis factorization) is explicitly out of scope —
// the driver only ever needs the result shapes below.
package lprelax

import "github.com/opticore/bbsearch/domain"

// Status mirrors the handful of outcomes the evaluator's fallback ladder
// distinguishes: a clean optimum, primal or dual infeasibility, iteration
// or time limit, and a numerical failure that the ladder should retry with a
// different method before giving up.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	IterationLimit
	NumericalFailure
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case IterationLimit:
		return "iteration_limit"
	case NumericalFailure:
		return "numerical_failure"
	default:
		return "unknown"
	}
}

// Basis is an opaque, reference-counted handle to whatever internal
// factorization the LP engine produced. Nodes share it by pointer down a
// subtree and never mutate it after StoreBasis publishes it — the same
// contract spec.md describes for node_basis.
type Basis struct {
	id   int
	refs int32
}

// Solution is the outcome of Run/ResolveLP: the objective, the primal
// point, and which columns are still fractional.
type Solution struct {
	Status      Status
	Objective   float64
	Primal      []float64
	Fractional  []int // columns whose primal value is not within tolerance of an integer, for IsGlobalBinary columns only
	Iterations  int
}

// Relaxation is the LP oracle contract from spec.md §6, expanded with exact
// method names for every capability the evaluator, brancher, and backtracker
// need: resolving after a domain change, probing an objective cutoff without
// fully re-optimizing, computing dual proofs for conflict generation, basis
// storage/recovery for warm starts, and degeneracy/estimate queries that
// feed the brancher's iteration budget and child-selection heuristics.
type Relaxation interface {
	// FlushDomain pushes the current Domain's bounds into the LP's column
	// bounds without resolving.
	FlushDomain(d domain.Domain)

	// SetObjectiveLimit tells the LP to stop as soon as it can prove the
	// objective cannot beat limit (a cutoff-bound probe), returning a
	// solution that may be only partially optimized.
	SetObjectiveLimit(limit float64)

	// Run solves the LP relaxation from scratch (or from a warm start if
	// one was recovered via SetStoredBasis).
	Run() Solution

	// ResolveLP re-solves after bound changes, typically warm-started from
	// the parent's stored basis.
	ResolveLP() Solution

	// Solution returns the last computed Solution without resolving.
	Solution() Solution

	// Objective returns the last computed objective value.
	Objective() float64

	// FractionalIntegers returns the columns flagged fractional by the last
	// Solution.
	FractionalIntegers() []int

	// StoreBasis publishes the current factorization as a shared, reference
	// counted handle.
	StoreBasis() *Basis

	// SetStoredBasis installs b as the warm-start basis for the next Run.
	SetStoredBasis(b *Basis)

	// RecoverBasis restores b as the LP's active basis, for retrying after
	// a numerical failure with a known-good basis from an ancestor.
	RecoverBasis(b *Basis) bool

	// ScaledOptimal reports whether the last solve satisfied the scaled
	// optimality tolerances (looser than unscaled — the first rung of the
	// fallback ladder).
	ScaledOptimal() bool

	// UnscaledPrimalFeasible / UnscaledDualFeasible report whether the last
	// solve is feasible in the problem's original, unscaled units.
	UnscaledPrimalFeasible() bool
	UnscaledDualFeasible() bool

	// ComputeDualProof derives a bound-exceeding conflict row from the
	// current dual solution (Farkas-style: a linear combination of active
	// bounds that already proves the objective cutoff cannot be beaten).
	ComputeDualProof(cutoff float64) (domain.Row, bool)

	// ComputeDualInfProof derives an infeasibility proof (Farkas
	// certificate) the same way, for a primal-infeasible LP.
	ComputeDualInfProof() (domain.Row, bool)

	// ComputeLPDegeneracy estimates how degenerate the last solve's vertex
	// is — spec.md §4.2's "degeneracy factor". The brancher passes it to the
	// pseudocost store's SetDegeneracyFactor, which raises the reliability
	// threshold as it grows, and at 10 or more sets min-reliable to 0.
	ComputeLPDegeneracy() float64

	// ComputeBestEstimate returns a cheap, not-necessarily-valid estimate of
	// the node's eventual integer objective, used to break ties in
	// best-estimate child selection.
	ComputeBestEstimate() float64

	// NumLPIterations returns the iteration count of the last solve, the
	// input to the brancher's iteration-budget formula.
	NumLPIterations() int
}

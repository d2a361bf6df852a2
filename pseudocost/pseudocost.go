// Package pseudocost tracks, per column and per branching direction, a
// running estimate of how much the objective moves per unit of bound change
// — the statistic the brancher uses to rank candidates once it decides not
// to (or cannot afford to) strong-branch.
package pseudocost

// Store is the external collaborator contract from spec.md §6: observe real
// objective deltas from completed strong-branch probes or finished nodes,
// answer whether a column's estimate is trustworthy yet, and score
// candidates for the brancher's ranking.
type Store interface {
	// IsReliable reports whether column c has enough observations in
	// direction up (true) or down (false) to trust its pseudocost without
	// strong-branch confirmation.
	IsReliable(c int, up bool) bool

	// PseudocostUp / PseudocostDown return the current per-unit objective
	// gain estimate in each direction.
	PseudocostUp(c int) float64
	PseudocostDown(c int) float64

	// Score combines both directions into the single ranking value the
	// brancher sorts candidates by (the product rule: HiGHS and most MIP
	// solvers score sqrt(up*down) or a weighted variant; this store exposes
	// both the per-candidate overload, taking the fractional value so the
	// score can weight by distance to each bound, and ScoreDirect, which
	// combines up and down gains the caller has already computed.
	Score(c int, frac float64) float64
	ScoreDirect(up, down float64) float64

	// AddObservation records a completed branch's actual objective gain per
	// unit of bound change.
	AddObservation(c int, up bool, objDelta, boundDelta float64)

	// AddCutoffObservation records that branching in direction `up` made the
	// node infeasible or cutoff — treated as a very large objective gain,
	// the same way HiGHS's pseudocost update special-cases cutoffs.
	AddCutoffObservation(c int, up bool)

	// AddInferenceObservation records how many bound tightenings a branch
	// triggered via propagation, feeding AvgInferencesUp/Down.
	AddInferenceObservation(c int, up bool, nbInferences int)
	AvgInferencesUp(c int) float64
	AvgInferencesDown(c int) float64

	// SetMinReliable configures how many observations are required before
	// IsReliable returns true.
	SetMinReliable(n int)

	// SetDegeneracyFactor scales the reliability threshold up when the LP is
	// degenerate, per spec.md §4.2's "iteration budget shrinks, reliability
	// threshold grows" rule. A factor below 1 leaves the threshold at its
	// unscaled value.
	SetDegeneracyFactor(f float64)
}

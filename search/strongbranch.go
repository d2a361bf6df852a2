package search

import (
	"math"

	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/lprelax"
)

// probeResult is one strong-branch probe's outcome: the LP objective after
// tentatively tightening a bound, the objective delta against the parent
// (the raw score contribution), the trial LP's primal solution (for
// cross-candidate score bounding), and whether the probe proved that branch
// infeasible/bound-exceeding outright or merely failed to resolve.
type probeResult struct {
	objective        float64
	delta            float64
	primal           []float64
	cutoff           bool
	numericalFailure bool
}

// strongBranchProbe tentatively applies a bound on col, reruns the LP
// without touching the node stack, records the pseudocost observations the
// probe earns, and restores the domain — HighsSearch's strong-branching
// inner loop, minus basis warm-start bookkeeping the reference
// lprelax.BoundedLP doesn't need. A probe counts as cutoff either because
// the trial bound propagates to infeasibility or because the resulting LP
// objective already exceeds the current cutoff (spec.md §4.2 step 5); the
// latter also emits a dual proof the way a real node's bound-exceeding
// classification does. An LP resolve that comes back neither optimal nor
// infeasible proves nothing either way and is reported separately rather
// than folded into a bogus delta.
func (d *Driver) strongBranchProbe(col int, up bool, fracVal, parentObjective float64) probeResult {
	ctx := d.ctx
	depthBefore := len(ctx.Domain.DomainChangeStack())
	var ch domain.Change
	if up {
		ch = domain.Change{Column: col, Side: domain.Lower, Bound: ceilPlusHalf(fracVal)}
	} else {
		ch = domain.Change{Column: col, Side: domain.Upper, Bound: floorMinusHalf(fracVal)}
	}
	orbits := d.stack.Top().StabilizerOrbits
	validOrbits := orbits != nil && orbitsValidForBranch(orbits, ch)

	ctx.Domain.ChangeBound(ch)
	defer ctx.Domain.Backtrack(depthBefore)

	if !ctx.Domain.Propagate() {
		ctx.Pseudocost.AddCutoffObservation(col, up)
		return probeResult{objective: d.cutoffBound(), cutoff: true}
	}
	// "orbit-fix if the orbit is valid under this branch" (spec.md §4.2
	// step 2): only trust orbital fixing here when this trial bound itself
	// wouldn't have invalidated the stabilizer had it been a real branch.
	if validOrbits {
		if !d.applyOrbitalFixing(orbits) {
			ctx.Pseudocost.AddCutoffObservation(col, up)
			return probeResult{objective: d.cutoffBound(), cutoff: true}
		}
	}

	// The number of implied bound changes this probe's propagation (and any
	// orbital fixing) produced beyond the probe's own bound change itself —
	// HighsSearch.cpp's addInferenceObservation call site lives here, inside
	// the probe, not in the general per-node evaluation path.
	inferences := len(ctx.Domain.DomainChangeStack()) - depthBefore - 1
	if inferences < 0 {
		inferences = 0
	}
	ctx.Pseudocost.AddInferenceObservation(col, up, inferences)

	ctx.Relaxation.FlushDomain(ctx.Domain)
	sol := ctx.Relaxation.ResolveLP()
	d.stats.NbSbLpIterations += ctx.Relaxation.NumLPIterations()

	switch sol.Status {
	case lprelax.Infeasible:
		ctx.Pseudocost.AddCutoffObservation(col, up)
		return probeResult{objective: d.cutoffBound(), cutoff: true}
	case lprelax.NumericalFailure:
		// An LP error proves nothing; the caller zeros this candidate's score
		// on both sides and marks them reliable so a bogus resolve never gets
		// chosen as a branching candidate (HighsSearch.cpp's "todo2" branch).
		return probeResult{objective: parentObjective, numericalFailure: true}
	}
	if sol.Objective >= d.cutoffBound() {
		ctx.Pseudocost.AddCutoffObservation(col, up)
		if row, ok := ctx.Relaxation.ComputeDualProof(d.cutoffBound()); ok {
			ctx.Conflicts.Add(row)
			d.tryGenerateCut(row)
		}
		return probeResult{objective: sol.Objective, cutoff: true}
	}
	delta := sol.Objective - parentObjective
	if delta < 0 {
		delta = 0
	}
	ctx.Pseudocost.AddObservation(col, up, delta, 1)
	return probeResult{objective: sol.Objective, delta: delta, primal: sol.Primal}
}

// selectBranchingCandidate implements HighsSearch::selectBranchingCandidate's
// actual reselection loop: before every single probe, every fractional
// candidate is re-ranked by its current score, and the probe budget is spent
// exclusively on the current best candidate's one remaining unreliable side
// — down before up — rather than scanning candidates once in LP-solution
// order and probing both sides of each in turn. Once a probe succeeds, every
// other candidate already sitting at its own floor/ceiling in the trial
// LP's solution has its score on the matching side (down at the floor, up
// at the ceiling) bounded by the observed delta, a transferred bound earned without spending a probe of its own
// (spec.md §4.2 step 4). When a probe proves one side of a candidate dead
// (or bound-exceeding), the opposite side is the only side left alive:
// rather than return a normal candidate, this commits directly to that side
// (spec.md §8's "strong-branch infeasible side" scenario) and reports
// committed=true, since the branch has already happened and the caller must
// not re-branch.
func (d *Driver) selectBranchingCandidate() (col int, ok bool, committed bool) {
	ctx := d.ctx
	n := len(d.lastFractional)
	if n == 0 {
		return 0, false, false
	}

	degeneracy := ctx.Relaxation.ComputeLPDegeneracy()
	ctx.Pseudocost.SetDegeneracyFactor(degeneracy)
	if degeneracy >= 10 {
		ctx.Pseudocost.SetMinReliable(0)
	}

	frame := d.stack.Top()
	primal := ctx.Relaxation.Solution().Primal

	upScore := make([]float64, n)
	downScore := make([]float64, n)
	upReliable := make([]bool, n)
	downReliable := make([]bool, n)
	for k, c := range d.lastFractional {
		if ctx.Pseudocost.IsReliable(c, true) && ctx.Pseudocost.IsReliable(c, false) {
			upScore[k] = ctx.Pseudocost.PseudocostUp(c)
			downScore[k] = ctx.Pseudocost.PseudocostDown(c)
			upReliable[k] = true
			downReliable[k] = true
		} else {
			upScore[k] = math.Inf(1)
			downScore[k] = math.Inf(1)
		}
	}

	budget := strongBranchBudget(d.stats.NbLpIterations, d.stats.NbSbLpIterations)
	applyMinReliableDecay(ctx, budget, d.stats.NbSbLpIterations)
	minScore := 1e-9

	selectBest := func(finalSelection bool) int {
		best, bestScore := -1, -1.0
		oldMinScore := minScore
		for k, c := range d.lastFractional {
			if upScore[k] <= oldMinScore {
				upReliable[k] = true
			}
			if downScore[k] <= oldMinScore {
				downReliable[k] = true
			}
			u, dn := 0.0, 0.0
			if upReliable[k] {
				u = upScore[k]
			}
			if downReliable[k] {
				dn = downScore[k]
			}
			if s := 1e-3 * math.Min(u, dn); s > minScore {
				minScore = s
			}

			var score float64
			switch {
			case upScore[k] <= oldMinScore || downScore[k] <= oldMinScore:
				score = ctx.Pseudocost.ScoreDirect(math.Min(upScore[k], oldMinScore), math.Min(downScore[k], oldMinScore))
			case math.IsInf(upScore[k], 1) || math.IsInf(downScore[k], 1):
				if finalSelection {
					score = ctx.Pseudocost.Score(c, fracPart(primal, c))
				} else {
					score = math.Inf(1)
				}
			default:
				score = ctx.Pseudocost.ScoreDirect(upScore[k], downScore[k])
			}
			if score > bestScore {
				bestScore, best = score, k
			}
		}
		return best
	}

	for {
		mustStop := d.stats.NbSbLpIterations >= budget
		k := selectBest(mustStop)
		if k < 0 {
			return 0, false, false
		}
		candCol := d.lastFractional[k]
		if (upReliable[k] && downReliable[k]) || mustStop {
			return candCol, true, false
		}

		v := 0.0
		if candCol < len(primal) {
			v = primal[candCol]
		}

		if !downReliable[k] {
			res := d.strongBranchProbe(candCol, false, v, frame.LpObjective)
			switch {
			case res.cutoff:
				d.commitOppositeBranch(candCol, v, true)
				return 0, false, true
			case res.numericalFailure:
				upScore[k], downScore[k] = 0, 0
				upReliable[k], downReliable[k] = true, true
			default:
				downScore[k] = res.delta
				downReliable[k] = true
				d.boundSiblingScores(res.primal, res.delta, upScore, downScore)
			}
		} else {
			res := d.strongBranchProbe(candCol, true, v, frame.LpObjective)
			switch {
			case res.cutoff:
				d.commitOppositeBranch(candCol, v, false)
				return 0, false, true
			case res.numericalFailure:
				upScore[k], downScore[k] = 0, 0
				upReliable[k], downReliable[k] = true, true
			default:
				upScore[k] = res.delta
				upReliable[k] = true
				d.boundSiblingScores(res.primal, res.delta, upScore, downScore)
			}
		}
	}
}

// boundSiblingScores implements the cross-candidate opportunistic score
// update from HighsSearch.cpp's inner loop after each probe: any other
// fractional candidate already sitting at its own floor or ceiling in the
// just-resolved trial LP's solution has its score on the matching side
// bounded above by this probe's objective delta, without spending a probe of
// its own on it.
func (d *Driver) boundSiblingScores(trialPrimal []float64, objDelta float64, upScore, downScore []float64) {
	if trialPrimal == nil {
		return
	}
	const feasTol = 1e-6
	for k, c := range d.lastFractional {
		if c >= len(trialPrimal) {
			continue
		}
		v := trialPrimal[c]
		down := floorOf(v)
		up := down + 1
		switch {
		case v <= down+feasTol:
			if objDelta < downScore[k] {
				downScore[k] = objDelta
			}
		case v >= up-feasTol:
			if objDelta < upScore[k] {
				upScore[k] = objDelta
			}
		}
	}
}

// applyMinReliableDecay implements spec.md §4.2's iteration-budget-driven
// reliability decay, HighsSearch.cpp's two-stage minrel ladder: once the
// strong-branching iteration budget is half spent, the minimum-reliability
// threshold is linearly reduced toward 1, and once the budget is fully
// spent it drops to 0 outright, so the driver stops paying for further
// probes and starts trusting whatever pseudocost it already has.
// Context.MinReliable is used as the original, unreduced threshold rather
// than reading it back from the store, since pseudocost.Store exposes a
// setter but no getter.
func applyMinReliableDecay(ctx *Context, budget, sbIters int) {
	minrel := ctx.MinReliable
	if minrel <= 0 {
		return
	}
	if sbIters > budget {
		ctx.Pseudocost.SetMinReliable(0)
		return
	}
	half := budget / 2
	if sbIters <= half {
		return
	}
	span := budget - half
	if span <= 0 {
		return
	}
	ratio := float64(sbIters-half) / float64(span)
	reduced := int(float64(minrel) - ratio*float64(minrel-1))
	if reduced > minrel {
		reduced = minrel
	}
	ctx.Pseudocost.SetMinReliable(reduced)
}

// commitOppositeBranch implements spec.md §8's "strong-branch infeasible
// side" scenario: once a probe has proven one side of col dead, the other
// side is the only live child. The driver descends straight into it — no
// sibling is recorded, since the dead side was never a real node to park —
// and bumps skip_depth_count, matching HighsSearch's forced-branch commit.
// v is col's value in the node's own LP solution, not in a probe's trial LP.
func (d *Driver) commitOppositeBranch(col int, v float64, up bool) {
	ctx := d.ctx
	parentOrbits := d.stack.Top().StabilizerOrbits
	parentBasis := d.stack.Top().NodeBasis
	parentSkip := d.stack.Top().SkipDepthCount

	var child *NodeFrame
	if up {
		ch := domain.Change{Column: col, Side: domain.Lower, Bound: floorOf(v) + 1}
		child = d.stack.BranchUpwards(ch, v)
	} else {
		ch := domain.Change{Column: col, Side: domain.Upper, Bound: floorOf(v)}
		child = d.stack.BranchDownwards(ch, v)
	}
	if ctx.Symmetry != nil && parentOrbits != nil {
		child.StabilizerOrbits = ctx.Symmetry.ComputeStabilizerOrbits(parentOrbits, col, up)
	}
	child.NodeBasis = parentBasis

	parent := d.stack.At(d.stack.Len() - 2)
	parent.OpenSubtrees = 0 // the other side was proven dead, never parked
	parent.PendingSibling = nil
	child.SkipDepthCount = parentSkip + 1
	d.stats.NbBranched++
}

// strongBranchBudget implements spec.md §4.2's iteration-budget formula:
// 100000 + ((total_lp - heuristic_lp - sb_lp)/2). This driver has no
// separate heuristic-LP counter (primal heuristics are out of scope), so
// heuristicLp is always 0.
func strongBranchBudget(totalLP, sbLP int) int {
	budget := 100000 + (totalLP-sbLP)/2
	if budget < 0 {
		return 0
	}
	return budget
}

func fracPart(primal []float64, col int) float64 {
	if col >= len(primal) {
		return 0.5
	}
	v := primal[col]
	return v - floorOf(v)
}

func floorOf(v float64) float64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

func ceilPlusHalf(v float64) float64 {
	return floorOf(v) + 1
}

func floorMinusHalf(v float64) float64 {
	return floorOf(v)
}

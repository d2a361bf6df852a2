package search

import (
	"github.com/sirupsen/logrus"

	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/lprelax"
)

// EvaluateNode runs spec.md §4.1's evaluator algorithm on the stack's
// current top frame: propagate local bounds, solve the LP relaxation
// (falling back through progressively cheaper resolve strategies on
// numerical failure), and classify the result. A Branched classification is
// never returned from here — evaluateNode only ever decides whether a node
// needs branching; Driver.Branch actually performs it — matching
// HighsSearch::evaluateNode returning to branch() for that step.
func (d *Driver) EvaluateNode() NodeResult {
	frame := d.stack.Top()
	ctx := d.ctx
	ctx.Domain.ClearChangedCols()
	if frame.Depth > 0 {
		ctx.Domain.ChangeBound(frame.BranchingDecision)
	}
	if !ctx.Domain.Propagate() {
		d.stats.NbDomainInfeasible++
		if row, err := ctx.Domain.ConflictAnalysis(); err == nil {
			ctx.Conflicts.Add(row)
			d.tryGenerateCut(row)
		}
		d.recordCutoffObservation(frame)
		ctx.logf(logrus.DebugLevel, "node %s at depth %d: domain infeasible", frame.ID, frame.Depth)
		d.pruneLeaf(frame)
		return DomainInfeasible
	}

	// spec.md §4.1 step 2: a frame with no stabilizer inherited from its
	// parent only gets one at the root, seeded from the configured global
	// symmetry group; every other frame's orbits (or lack of them) were
	// already decided when it was created.
	if ctx.Symmetry != nil && frame.StabilizerOrbits == nil && frame.Depth == 0 {
		frame.StabilizerOrbits = ctx.RootOrbits
	}
	if frame.StabilizerOrbits != nil {
		if !d.applyOrbitalFixing(frame.StabilizerOrbits) {
			d.stats.NbDomainInfeasible++
			if row, err := ctx.Domain.ConflictAnalysis(); err == nil {
				ctx.Conflicts.Add(row)
				d.tryGenerateCut(row)
			}
			d.recordCutoffObservation(frame)
			ctx.logf(logrus.DebugLevel, "node %s at depth %d: domain infeasible after orbital fixing", frame.ID, frame.Depth)
			d.pruneLeaf(frame)
			return DomainInfeasible
		}
	}

	// Record the stack position once this node's own decision and its
	// implied propagation are both applied: children measure their own
	// domchg stack position from here, and a backtrack that abandons a
	// child subtree while keeping this node's decision rewinds to exactly
	// this point.
	frame.DomChgStackPos = len(ctx.Domain.DomainChangeStack())

	ctx.Relaxation.FlushDomain(ctx.Domain)
	ctx.Relaxation.SetObjectiveLimit(d.cutoffBound())
	if frame.NodeBasis != nil {
		ctx.Relaxation.SetStoredBasis(frame.NodeBasis)
	}

	sol := d.resolveLPWithFallback()
	d.stats.NbLpIterations += ctx.Relaxation.NumLPIterations()

	switch sol.Status {
	case lprelax.Infeasible:
		d.stats.NbLpInfeasible++
		if row, ok := ctx.Relaxation.ComputeDualInfProof(); ok {
			ctx.Conflicts.Add(row)
			d.tryGenerateCut(row)
		}
		d.recordCutoffObservation(frame)
		ctx.logf(logrus.DebugLevel, "node %s at depth %d: LP infeasible", frame.ID, frame.Depth)
		d.pruneLeaf(frame)
		return LpInfeasible
	case lprelax.NumericalFailure:
		// The fallback ladder in resolveLPWithFallback already exhausted
		// every rung; treat the node conservatively as infeasible rather
		// than risk branching on a bogus solution (spec.md §7's "fatal
		// checks may be omitted, but an unresolved LP must not be silently
		// trusted").
		ctx.logf(logrus.WarnLevel, "node %s at depth %d: LP unresolved after fallback ladder, treating as infeasible", frame.ID, frame.Depth)
		d.stats.NbLpInfeasible++
		d.recordCutoffObservation(frame)
		d.pruneLeaf(frame)
		return LpInfeasible
	}

	frame.LpObjective = sol.Objective
	frame.LowerBound = sol.Objective
	frame.Estimate = ctx.Relaxation.ComputeBestEstimate()
	frame.NodeBasis = ctx.Relaxation.StoreBasis()
	if frame.Depth == 0 && d.rootPrimal == nil {
		d.rootPrimal = append([]float64(nil), sol.Primal...)
	}

	if sol.Objective >= d.cutoffBound() {
		d.stats.NbBoundExceeding++
		if row, ok := ctx.Relaxation.ComputeDualProof(d.cutoffBound()); ok {
			ctx.Conflicts.Add(row)
			d.tryGenerateCut(row)
		}
		d.recordCutoffObservation(frame)
		ctx.logf(logrus.DebugLevel, "node %s at depth %d: bound %g exceeds cutoff %g", frame.ID, frame.Depth, sol.Objective, d.cutoffBound())
		d.pruneLeaf(frame)
		return BoundExceeding
	}

	frac := ctx.Relaxation.FractionalIntegers()
	if len(frac) == 0 {
		d.stats.NbSubOptimal++
		d.recordIncumbent(sol.Objective, sol.Primal)
		ctx.logf(logrus.InfoLevel, "node %s at depth %d: new incumbent %g", frame.ID, frame.Depth, sol.Objective)
		d.pruneLeaf(frame)
		return SubOptimal
	}
	d.lastFractional = frac
	return Open
}

// resolveLPWithFallback implements spec.md §4.1/§7's fallback ladder: try
// the warm-started resolve first, then a cold Run, then recovering an
// ancestor's basis, giving up only once every rung has failed.
func (d *Driver) resolveLPWithFallback() lprelax.Solution {
	sol := d.ctx.Relaxation.ResolveLP()
	if sol.Status != lprelax.NumericalFailure {
		return sol
	}
	sol = d.ctx.Relaxation.Run()
	if sol.Status != lprelax.NumericalFailure {
		return sol
	}
	for i := d.stack.Len() - 1; i >= 0; i-- {
		if b := d.stack.At(i).NodeBasis; b != nil && d.ctx.Relaxation.RecoverBasis(b) {
			sol = d.ctx.Relaxation.Run()
			if sol.Status != lprelax.NumericalFailure {
				return sol
			}
		}
	}
	return sol
}

// recordCutoffObservation feeds the pseudocost store a cutoff observation
// for the branching decision that led to this node, the same bookkeeping
// strong-branching already does at strongbranch.go whenever a probe proves a
// side dead outright: a node confirmed infeasible or bound-exceeding by full
// evaluation is just as informative about that column's direction as one
// proven dead by a cheaper probe, and spec.md §4.1 asks for both to count.
// The root frame has no branching decision to attribute the observation to.
func (d *Driver) recordCutoffObservation(frame *NodeFrame) {
	if frame.Depth == 0 {
		return
	}
	ch := frame.BranchingDecision
	d.ctx.Pseudocost.AddCutoffObservation(ch.Column, ch.Side == domain.Lower)
}

func (d *Driver) cutoffBound() float64 {
	if d.hasIncumbent {
		return d.incumbentObjective - d.gapEpsilon
	}
	return d.objectiveLimit
}

func (d *Driver) recordIncumbent(obj float64, primal []float64) {
	if !d.hasIncumbent || obj < d.incumbentObjective {
		d.incumbentObjective = obj
		d.incumbentPrimal = append([]float64(nil), primal...)
		d.hasIncumbent = true
	}
	if d.ctx.Limits != nil {
		if b, ok := d.ctx.Limits.(interface{ UpdateBounds(float64, float64) }); ok {
			b.UpdateBounds(d.globalLowerBound(), d.incumbentObjective)
		}
	}
}

func (d *Driver) globalLowerBound() float64 {
	if d.stack.Len() == 0 {
		return d.objectiveLimit
	}
	return d.stack.At(0).LowerBound
}

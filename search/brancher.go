package search

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/nodequeue"
)

// Branch implements spec.md §4.2/§4.3's branch() entry point: pick a
// candidate column, decide which child to descend into first via the
// configured rule ladder, record the other child as this node's pending
// sibling, and descend. It must only be called after EvaluateNode returned
// Open. The pending sibling is not yet on the shared queue — Backtrack
// parks it there, or flips straight into it while plunging, whichever the
// plunge decision calls for.
func (d *Driver) Branch() NodeResult {
	// The node's own LP point, read before any strong-branch probe replaces
	// the relaxation's current solution with its trial LP's.
	primal := d.ctx.Relaxation.Solution().Primal
	col, ok, committed := d.selectBranchingCandidate()
	if committed {
		// A strong-branch probe already proved one side dead and committed
		// the driver straight into the other side (spec.md §8's
		// "strong-branch infeasible side" scenario): no further branching
		// decision is needed here.
		return Branched
	}
	if !ok {
		// No fractional candidate survived (can happen if propagation since
		// EvaluateNode tightened every integer column); treat the node as
		// already integer feasible.
		d.stats.NbSubOptimal++
		return SubOptimal
	}
	ctx := d.ctx
	parent := *d.stack.Top() // snapshot before pushing: BranchDownwards/Upwards below mutate the stack's top in place
	v := 0.0
	if col < len(primal) {
		v = primal[col]
	}
	downCh := domain.Change{Column: col, Side: domain.Upper, Bound: floorOf(v)}
	upCh := domain.Change{Column: col, Side: domain.Lower, Bound: floorOf(v) + 1}

	first, firstCh, second, secondCh := d.orderChildren(col, v, downCh, upCh)

	var descended *NodeFrame
	if first == up {
		descended = d.stack.BranchUpwards(firstCh, v)
	} else {
		descended = d.stack.BranchDownwards(firstCh, v)
	}
	if ctx.Symmetry != nil && parent.StabilizerOrbits != nil {
		descended.StabilizerOrbits = ctx.Symmetry.ComputeStabilizerOrbits(parent.StabilizerOrbits, col, first == up)
	}

	// The sibling Branch did not descend into is recorded on the ancestor
	// frame, not yet handed to the queue: Backtrack owns the decision of
	// whether to park it there or flip straight into it while plunging, and
	// must make that choice exactly once (spec.md §4.3) rather than this
	// node existing both live on the stack and parked in the queue at once.
	var orbits interface{}
	if ctx.Symmetry != nil && parent.StabilizerOrbits != nil {
		orbits = ctx.Symmetry.ComputeStabilizerOrbits(parent.StabilizerOrbits, col, second == up)
	}
	ancestor := d.stack.At(d.stack.Len() - 2)
	ancestor.PendingSibling = &nodequeue.OpenNode{
		ID:             uuid.New(),
		LowerBound:     parent.LowerBound,
		Estimate:       parent.Estimate,
		Depth:          parent.Depth + 1,
		// The queue stores the full domain-change stack down to the parked
		// child rather than spec.md §3's reduced (parent-relative)
		// increment: the reduced form only pays off when install_node can
		// replay an ancestor chain first and append the increment, which
		// requires the queue to also retain parent linkage. This reference
		// keeps nodes self-contained instead, at the cost of a longer
		// per-node replay.
		DomChgStack:    append(ctx.Domain.DomainChangeStack(), secondCh),
		BranchingPoint: v,
		Basis:          parent.NodeBasis,
		Orbits:         orbits,
	}

	d.stats.NbBranched++
	return Branched
}

// direction is a small enum used only to compare orderChildren's chosen
// order against "up"/"down" for orbit narrowing.
type direction int8

const (
	down direction = iota
	up
)

// orderChildren implements spec.md §4.2's child-selection ladder: try each
// configured ChildRule in order, the first one able to make a decisive call
// wins, exactly the "last resort fallback ladder" the spec describes —
// RuleUp/RuleDown never abstain, so they always terminate the ladder if
// reached.
func (d *Driver) orderChildren(col int, fracVal float64, downCh, upCh domain.Change) (direction, domain.Change, direction, domain.Change) {
	rules := d.ctx.Rules
	if len(rules) == 0 {
		rules = []ChildRule{RuleUp}
	}
	for _, r := range rules {
		if preferUp, ok := d.applyChildRule(r, col, fracVal); ok {
			if preferUp {
				return up, upCh, down, downCh
			}
			return down, downCh, up, upCh
		}
	}
	return up, upCh, down, downCh
}

// applyChildRule evaluates one rule, returning (preferUp, decisive).
func (d *Driver) applyChildRule(r ChildRule, col int, fracVal float64) (bool, bool) {
	ctx := d.ctx
	switch r {
	case RuleUp:
		return true, true
	case RuleDown:
		return false, true
	case RuleRootSolDistance:
		const epsilon = 1e-9
		downVal := floorOf(fracVal)
		upVal := downVal + 1
		downPrio := ctx.Pseudocost.AvgInferencesDown(col) + epsilon
		upPrio := ctx.Pseudocost.AvgInferencesUp(col) + epsilon
		if d.rootPrimal != nil && col < len(d.rootPrimal) {
			rootSol := d.rootPrimal[col]
			switch {
			case rootSol < downVal:
				rootSol = downVal
			case rootSol > upVal:
				rootSol = upVal
			}
			upPrio *= 1 + (fracVal - rootSol)
			downPrio *= 1 + (rootSol - fracVal)
		}
		return upPrio+epsilon >= downPrio, true
	case RuleObjectiveSign:
		sol := ctx.Relaxation.Solution()
		if col >= len(sol.Primal) {
			return false, false
		}
		return sol.Objective >= 0, true
	case RuleRandom:
		return rand.Intn(2) == 1, true
	case RuleBestPseudocost:
		upPC, downPC := ctx.Pseudocost.PseudocostUp(col), ctx.Pseudocost.PseudocostDown(col)
		if upPC == downPC {
			return false, false
		}
		return upPC > downPC, true
	case RuleWorstPseudocost:
		upPC, downPC := ctx.Pseudocost.PseudocostUp(col), ctx.Pseudocost.PseudocostDown(col)
		if upPC == downPC {
			return false, false
		}
		return upPC < downPC, true
	case RuleOpenNodeDisjunction:
		if ctx.Queue == nil {
			return false, false
		}
		nu, nd := ctx.Queue.NumNodesUp(col), ctx.Queue.NumNodesDown(col)
		if nu == nd {
			return false, false
		}
		return nu < nd, true // prefer descending into the direction with fewer queued siblings already
	case RuleHybridInferenceCost:
		upInf, downInf := ctx.Pseudocost.AvgInferencesUp(col), ctx.Pseudocost.AvgInferencesDown(col)
		if upInf == downInf {
			return false, false
		}
		return upInf > downInf, true
	default:
		return false, false
	}
}

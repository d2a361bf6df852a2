package search

import (
	"fmt"
	"math"

	"github.com/opticore/bbsearch/domain"
)

// Driver owns the node stack and drives the evaluator/brancher/backtracker
// loop against a single Context. One Driver is used from a single
// goroutine. Of the reference collaborators only GlobalStats locks; the
// others (BoundDomain, BoundedLP, EWMAStore, BestBound, RowPool) have no
// internal locking and are not safe for concurrent use by several Drivers.
type Driver struct {
	ctx   *Context
	stack *Stack
	stats Stats

	hasIncumbent       bool
	incumbentObjective float64
	incumbentPrimal    []float64
	objectiveLimit     float64
	gapEpsilon         float64

	maxPlungeDepth int
	lastFractional []int

	// rootPrimal is the root node's LP solution, captured once the first
	// time the root resolves optimally: RuleRootSolDistance measures how far
	// a deeper node's branching value has drifted from it (spec.md §4.2).
	rootPrimal []float64

	// treeWeight accumulates each pruned leaf's 2^(-depth) contribution via
	// compensated summation, so that after an exhaustive solve it reads back
	// as 1.0 despite thousands of small additions (spec.md §3/§4's
	// tree_weight totality property).
	treeWeight KahanSum
}

// tryGenerateCut asks the configured cut generator to derive a globally
// valid cut from a just-recorded conflict row, spec.md §1's "produces cuts
// ... from failed nodes" and §6's generate_conflict contract. A no-op
// Generator or CutPool leaves this silently inert.
func (d *Driver) tryGenerateCut(row domain.Row) {
	ctx := d.ctx
	if ctx.CutGen == nil || ctx.Cuts == nil {
		return
	}
	if cut, ok := ctx.CutGen.GenerateConflict(row); ok {
		ctx.Cuts.AddCut(cut)
	}
}

// pruneLeaf records that frame has reached a terminal (non-Open)
// classification: its own OpenSubtrees drops to 0 so Backtrack's walk-up
// knows it has nothing left to explore, and its 2^(-depth) share is added
// to tree_weight — spec.md §4.1's "on non-open outcomes: mark the subtree
// as pruned (open_subtrees = 0, increment tree_weight)".
func (d *Driver) pruneLeaf(frame *NodeFrame) {
	frame.OpenSubtrees = 0
	d.treeWeight.Add(math.Pow(2, -float64(frame.Depth)))
	d.stats.TreeWeight = d.treeWeight.Value()
}

// NewDriver builds a Driver over ctx, starting from a fresh root frame.
func NewDriver(ctx *Context) (*Driver, error) {
	if ctx == nil {
		return nil, fmt.Errorf("search: NewDriver requires a non-nil Context")
	}
	if ctx.Domain == nil || ctx.Relaxation == nil || ctx.Pseudocost == nil {
		return nil, fmt.Errorf("search: NewDriver requires Domain, Relaxation and Pseudocost collaborators")
	}
	if ctx.MinReliable > 0 {
		ctx.Pseudocost.SetMinReliable(ctx.MinReliable)
	}
	return &Driver{
		ctx:            ctx,
		stack:          NewStack(),
		objectiveLimit: math.Inf(1),
		gapEpsilon:     1e-9,
		maxPlungeDepth: 32,
	}, nil
}

// Stack exposes the node stack, mostly for tests and statistics.
func (d *Driver) Stack() *Stack { return d.stack }

// Incumbent returns the best objective found so far and whether one exists.
func (d *Driver) Incumbent() (float64, bool) { return d.incumbentObjective, d.hasIncumbent }

// IncumbentSolution returns the column values of the best integer-feasible
// solution found so far, alongside the same flag Incumbent reports.
func (d *Driver) IncumbentSolution() ([]float64, bool) { return d.incumbentPrimal, d.hasIncumbent }

// SetMaxPlungeDepth bounds how many consecutive plunge dives a backtrack may
// chain before it is forced back to the shared queue.
func (d *Driver) SetMaxPlungeDepth(n int) { d.maxPlungeDepth = n }

// Dive implements spec.md §4.6's dive(): repeatedly evaluate the current
// top node and branch into it while it keeps producing Open/Branched
// outcomes, stopping at the first terminal classification or the first
// limits hit.
func (d *Driver) Dive() NodeResult {
	for {
		if d.ctx.Limits != nil && d.ctx.Limits.CheckLimits() {
			return Open
		}
		d.stats.NbNodes++
		if d.ctx.Limits != nil {
			if nv, ok := d.ctx.Limits.(interface{ NodeVisited() }); ok {
				nv.NodeVisited()
			}
		}
		res := d.EvaluateNode()
		if res == Open {
			res = d.Branch()
		}
		if res != Branched {
			return res
		}
	}
}

// SolveDepthFirst implements spec.md §4.6's solve_depth_first(): dive until
// a leaf, backtrack (plunging when possible), and repeat, until the tree is
// exhausted, a limit fires, or maxBacktracks is spent — the last being a
// cooperative escape hatch a caller can use to return control periodically
// without a real wall-clock limit configured.
func (d *Driver) SolveDepthFirst(maxBacktracks int) NodeResult {
	last := Open
	backtracks := 0
	for {
		last = d.Dive()
		if d.ctx.Limits != nil && d.ctx.Limits.CheckLimits() {
			return last
		}
		if maxBacktracks >= 0 && backtracks >= maxBacktracks {
			return last
		}
		plunge := d.stack.Top().SkipDepthCount < d.maxPlungeDepth
		if !d.Backtrack(plunge) {
			return last
		}
		backtracks++
	}
}

package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opticore/bbsearch/conflict"
	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/limits"
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/nodequeue"
	"github.com/opticore/bbsearch/pseudocost"
	"github.com/opticore/bbsearch/symmetry"
)

func newTestContext(obj []float64, rows []domain.Row, lb, ub []float64) (*Context, *domain.BoundDomain) {
	d := domain.NewBoundDomain(lb, ub, rows)
	relax := lprelax.NewBoundedLP(obj, rows, d)
	ctx := &Context{
		Relaxation: relax,
		Domain:     d,
		Pseudocost: pseudocost.NewEWMAStore(len(lb)),
		Conflicts:  conflict.NewRowPool(),
		Cuts:       conflict.NewSimpleCutPool(),
		CutGen:     conflict.NoopGenerator{},
		Queue:      nodequeue.NewBestBound(),
		Limits:     limits.NewBudget(),
		Rules:      []ChildRule{RuleUp, RuleDown},
	}
	return ctx, d
}

func TestScenarioAllIntegerFeasibleAtRoot(t *testing.T) {
	// minimize x0 + x1, s.t. x0 + x1 <= 1, both binary: LP optimum sits at
	// (0,0) already, so the very first evaluation should be SubOptimal
	// without ever branching.
	rows := []domain.Row{{Cols: []int{0, 1}, Coeffs: []float64{1, 1}, RHS: 1}}
	ctx, _ := newTestContext([]float64{1, 1}, rows, []float64{0, 0}, []float64{1, 1})
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	result := drv.EvaluateNode()
	require.Equal(t, SubOptimal, result)
	obj, ok := drv.Incumbent()
	require.True(t, ok)
	require.InDelta(t, 0.0, obj, 1e-6)
}

func TestScenarioCutoffPruning(t *testing.T) {
	// Same problem, but the driver already has an incumbent of -1, strictly
	// below any feasible objective here (minimum is 0): the root must be
	// pruned as bound-exceeding rather than accepted as a new incumbent.
	rows := []domain.Row{{Cols: []int{0, 1}, Coeffs: []float64{1, 1}, RHS: 1}}
	ctx, _ := newTestContext([]float64{1, 1}, rows, []float64{0, 0}, []float64{1, 1})
	drv, err := NewDriver(ctx)
	require.NoError(t, err)
	drv.hasIncumbent = true
	drv.incumbentObjective = -1

	result := drv.EvaluateNode()
	require.Equal(t, BoundExceeding, result)
	require.Equal(t, 1, drv.Stats().NbBoundExceeding)
}

func TestScenarioDomainInfeasibleFromPropagation(t *testing.T) {
	// x0 + x1 <= 1 but both columns are fixed to 1 at the root: propagation
	// alone proves infeasibility, no LP should even run.
	rows := []domain.Row{{Cols: []int{0, 1}, Coeffs: []float64{1, 1}, RHS: 1}}
	ctx, _ := newTestContext([]float64{1, 1}, rows, []float64{1, 1}, []float64{1, 1})
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	result := drv.EvaluateNode()
	require.Equal(t, DomainInfeasible, result)
	require.Equal(t, 1, drv.Stats().NbDomainInfeasible)
}

func TestScenarioBranchesOnFractionalSolution(t *testing.T) {
	// maximize x0 (minimize -x0), x0 in [0,1] continuous-looking but treated
	// as binary by the fractional-check, no constraining row: the LP
	// optimum pushes x0 to its upper bound 1, which is already integral, so
	// this is in fact immediately SubOptimal. To force a genuine fractional
	// optimum we pin the bound away from an integer using a row that caps
	// x0 below 1.
	rows := []domain.Row{{Cols: []int{0}, Coeffs: []float64{2}, RHS: 1}}
	ctx, _ := newTestContext([]float64{-1}, rows, []float64{0}, []float64{1})
	// A plain branch is what this scenario wants to exercise, not a
	// strong-branch probe's opinion about it: a fresh pseudocost store is
	// unreliable everywhere by default, which would otherwise send col0
	// through strongBranchProbe before orderChildren ever runs.
	ctx.Pseudocost.SetMinReliable(0)
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	result := drv.EvaluateNode()
	require.Equal(t, Open, result)
	require.NotEmpty(t, drv.lastFractional)

	result = drv.Branch()
	require.Equal(t, Branched, result)
	require.Equal(t, 2, drv.Stack().Len())
	// The sibling Branch didn't descend into is recorded on the ancestor,
	// not yet handed to the queue: parking only happens at Backtrack time.
	require.NotNil(t, drv.Stack().At(0).PendingSibling)
	require.Equal(t, int8(1), drv.Stack().At(0).OpenSubtrees)
	require.Equal(t, 0, drv.ctx.Queue.(*nodequeue.BestBound).Len())
}

func TestScenarioStrongBranchInfeasibleSideCommitsOpposite(t *testing.T) {
	// Same fixture as the plain-branch scenario above (2x0<=1, x0 binary),
	// but this time with strong branching left on: root propagation caps x0
	// at 0.5 and the LP optimum sits there. The down probe (UB(x0)=0)
	// resolves normally; the up probe (LB(x0)=1) is infeasible against that
	// cap (2*1=2 > RHS 1), so selectBranchingCandidate never returns a scored
	// candidate — it commits directly to the down side.
	rows := []domain.Row{{Cols: []int{0}, Coeffs: []float64{2}, RHS: 1}}
	ctx, _ := newTestContext([]float64{-1}, rows, []float64{0}, []float64{1})
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	result := drv.EvaluateNode()
	require.Equal(t, Open, result)

	result = drv.Branch()
	require.Equal(t, Branched, result)
	require.Equal(t, 2, drv.Stack().Len())

	root := drv.Stack().At(0)
	require.Equal(t, int8(0), root.OpenSubtrees, "the dead side was never parked, so nothing is left open")
	require.Nil(t, root.PendingSibling)
	require.Equal(t, 0, drv.ctx.Queue.(*nodequeue.BestBound).Len())

	child := drv.Stack().Top()
	require.Equal(t, domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, child.BranchingDecision)
	require.Equal(t, 1, child.SkipDepthCount)
	require.Equal(t, 1, drv.Stats().NbBranched)
}

// fakeFailingRelaxation always reports a numerical failure, to exercise
// resolveLPWithFallback's ladder all the way to the end without needing a
// real solver to misbehave on cue.
type fakeFailingRelaxation struct {
	resolveCalls int
	runCalls     int
}

func (f *fakeFailingRelaxation) FlushDomain(domain.Domain) {}
func (f *fakeFailingRelaxation) SetObjectiveLimit(float64) {}

func (f *fakeFailingRelaxation) Run() lprelax.Solution {
	f.runCalls++
	return lprelax.Solution{Status: lprelax.NumericalFailure}
}

func (f *fakeFailingRelaxation) ResolveLP() lprelax.Solution {
	f.resolveCalls++
	return lprelax.Solution{Status: lprelax.NumericalFailure}
}

func (f *fakeFailingRelaxation) Solution() lprelax.Solution                  { return lprelax.Solution{Status: lprelax.NumericalFailure} }
func (f *fakeFailingRelaxation) Objective() float64                         { return 0 }
func (f *fakeFailingRelaxation) FractionalIntegers() []int                  { return nil }
func (f *fakeFailingRelaxation) StoreBasis() *lprelax.Basis                 { return nil }
func (f *fakeFailingRelaxation) SetStoredBasis(*lprelax.Basis)              {}
func (f *fakeFailingRelaxation) RecoverBasis(*lprelax.Basis) bool           { return false }
func (f *fakeFailingRelaxation) ScaledOptimal() bool                        { return false }
func (f *fakeFailingRelaxation) UnscaledPrimalFeasible() bool               { return false }
func (f *fakeFailingRelaxation) UnscaledDualFeasible() bool                 { return false }
func (f *fakeFailingRelaxation) ComputeDualProof(float64) (domain.Row, bool) {
	return domain.Row{}, false
}
func (f *fakeFailingRelaxation) ComputeDualInfProof() (domain.Row, bool) { return domain.Row{}, false }
func (f *fakeFailingRelaxation) ComputeLPDegeneracy() float64            { return 0 }
func (f *fakeFailingRelaxation) ComputeBestEstimate() float64            { return 0 }
func (f *fakeFailingRelaxation) NumLPIterations() int                    { return 0 }

func TestScenarioFallbackLadderExhaustsToLpInfeasible(t *testing.T) {
	// A root node with no ancestor basis to recover has only two rungs on
	// the fallback ladder (ResolveLP, then a cold Run): once both report a
	// numerical failure, the evaluator must give up and classify the node
	// LpInfeasible rather than trust an unresolved LP.
	d := domain.NewBoundDomain([]float64{0}, []float64{1}, nil)
	relax := &fakeFailingRelaxation{}
	ctx := &Context{
		Relaxation: relax,
		Domain:     d,
		Pseudocost: pseudocost.NewEWMAStore(1),
		Conflicts:  conflict.NewRowPool(),
		Cuts:       conflict.NewSimpleCutPool(),
		Queue:      nodequeue.NewBestBound(),
		Limits:     limits.NewBudget(),
	}
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	result := drv.EvaluateNode()
	require.Equal(t, LpInfeasible, result)
	require.Equal(t, 1, drv.Stats().NbLpInfeasible)
	require.Equal(t, 1, relax.resolveCalls)
	require.Equal(t, 1, relax.runCalls)
}

func TestScenarioPlungeParkingDescendsStraightIntoSibling(t *testing.T) {
	// Build the same two-level tree as the plain-branch scenario, then
	// drive the up child (the one Branch descended into first, since
	// RuleUp is first in the rule ladder) straight to domain infeasibility:
	// LB(x0)=1 conflicts with the row 2x0<=1. Backtracking in plunge mode
	// should consume the ancestor's pending sibling directly rather than
	// park it on the queue.
	rows := []domain.Row{{Cols: []int{0}, Coeffs: []float64{2}, RHS: 1}}
	ctx, _ := newTestContext([]float64{-1}, rows, []float64{0}, []float64{1})
	ctx.Pseudocost.SetMinReliable(0)
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	require.Equal(t, Open, drv.EvaluateNode())
	require.Equal(t, Branched, drv.Branch())
	require.Equal(t, DomainInfeasible, drv.EvaluateNode())
	require.Equal(t, int8(0), drv.Stack().Top().OpenSubtrees)

	ok := drv.Backtrack(true)
	require.True(t, ok)
	require.Equal(t, 2, drv.Stack().Len())
	require.Equal(t, 1, drv.Stats().NbPlunges)
	require.Equal(t, 0, drv.ctx.Queue.(*nodequeue.BestBound).Len())

	root := drv.Stack().At(0)
	require.Nil(t, root.PendingSibling)
	require.Equal(t, int8(0), root.OpenSubtrees)

	plunged := drv.Stack().Top()
	require.Equal(t, domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, plunged.BranchingDecision)
	require.Equal(t, 1, plunged.SkipDepthCount)
	require.Equal(t, int8(2), plunged.OpenSubtrees)
}

func TestScenarioSymmetryInheritanceDependsOnBranchDirection(t *testing.T) {
	// A down branch on an orbit member (LB/UB untouched on the upper side)
	// leaves the stabilizer intact for the child; an up branch on the same
	// column (fixing it to 1) distinguishes it from its orbit-mates, so the
	// child's stabilizer is dropped entirely.
	rows := []domain.Row{{Cols: []int{0}, Coeffs: []float64{2}, RHS: 1}}
	group := symmetry.NewPermutationGroup([][]int{{0}})

	downCtx, _ := newTestContext([]float64{-1}, rows, []float64{0}, []float64{1})
	downCtx.Pseudocost.SetMinReliable(0)
	downCtx.Symmetry = group
	downCtx.RootOrbits = group
	downCtx.Rules = []ChildRule{RuleDown}
	downDrv, err := NewDriver(downCtx)
	require.NoError(t, err)
	require.Equal(t, Open, downDrv.EvaluateNode())
	require.Equal(t, Branched, downDrv.Branch())
	require.Same(t, group, downDrv.Stack().Top().StabilizerOrbits)

	upCtx, _ := newTestContext([]float64{-1}, rows, []float64{0}, []float64{1})
	upCtx.Pseudocost.SetMinReliable(0)
	upCtx.Symmetry = group
	upCtx.RootOrbits = group
	upCtx.Rules = []ChildRule{RuleUp}
	upDrv, err := NewDriver(upCtx)
	require.NoError(t, err)
	require.Equal(t, Open, upDrv.EvaluateNode())
	require.Equal(t, Branched, upDrv.Branch())
	require.Nil(t, upDrv.Stack().Top().StabilizerOrbits)
}

func TestScenarioTreeWeightSumsToOneWhenExhausted(t *testing.T) {
	// minimize x0 + x1, s.t. x0 + x1 >= 1, both binary: a tiny tree that an
	// exhaustive depth-first solve fully closes, so every leaf's 2^(-depth)
	// contribution should sum back to 1.0, per the tree_weight totality
	// property.
	rows := []domain.Row{{Cols: []int{0, 1}, Coeffs: []float64{-1, -1}, RHS: -1}}
	ctx, _ := newTestContext([]float64{1, 1}, rows, []float64{0, 0}, []float64{1, 1})
	drv, err := NewDriver(ctx)
	require.NoError(t, err)

	last := drv.SolveDepthFirst(-1)
	require.NotEqual(t, Branched, last)
	require.InDelta(t, 1.0, drv.Stats().TreeWeight, 1e-9)
}

package search

import (
	"testing"

	"github.com/opticore/bbsearch/conflict"
	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/limits"
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/nodequeue"
	"github.com/opticore/bbsearch/pseudocost"
)

func TestBacktrackReturnsFalseWhenTreeFullyClosed(t *testing.T) {
	d := domain.NewBoundDomain([]float64{0}, []float64{1}, nil)
	ctx := &Context{
		Relaxation: lprelax.NewBoundedLP([]float64{1}, nil, d),
		Domain:     d,
		Pseudocost: pseudocost.NewEWMAStore(1),
		Conflicts:  conflict.NewRowPool(),
		Cuts:       conflict.NewSimpleCutPool(),
		Queue:      nodequeue.NewBestBound(),
		Limits:     limits.NewBudget(),
	}
	drv, err := NewDriver(ctx)
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}
	drv.stack.Top().OpenSubtrees = 0
	if drv.Backtrack(false) {
		t.Fatalf("expected Backtrack to report the tree is fully closed")
	}
}

func TestBacktrackUntilDepthRewindsDomain(t *testing.T) {
	d := domain.NewBoundDomain([]float64{0}, []float64{5}, nil)
	ctx := &Context{
		Relaxation: lprelax.NewBoundedLP([]float64{1}, nil, d),
		Domain:     d,
		Pseudocost: pseudocost.NewEWMAStore(1),
		Conflicts:  conflict.NewRowPool(),
		Cuts:       conflict.NewSimpleCutPool(),
		Queue:      nodequeue.NewBestBound(),
		Limits:     limits.NewBudget(),
	}
	drv, err := NewDriver(ctx)
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}
	drv.stack.BranchDownwards(domain.Change{Column: 0, Side: domain.Upper, Bound: 2}, 2.3)
	d.ChangeBound(domain.Change{Column: 0, Side: domain.Upper, Bound: 2})
	if drv.stack.Len() != 2 {
		t.Fatalf("expected depth 2 before rewinding")
	}
	drv.BacktrackUntilDepth(1)
	if drv.stack.Len() != 1 {
		t.Fatalf("expected depth 1 after BacktrackUntilDepth")
	}
	if d.UB(0) != 5 {
		t.Fatalf("expected domain to be rewound to the root bound 5, got %v", d.UB(0))
	}
}

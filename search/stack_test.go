package search

import (
	"testing"

	"github.com/opticore/bbsearch/domain"
)

func TestRootFrameStartsWithTwoOpenSubtrees(t *testing.T) {
	s := NewStack()
	if s.Top().OpenSubtrees != 2 {
		t.Fatalf("expected root OpenSubtrees == 2, got %d", s.Top().OpenSubtrees)
	}
	if s.Len() != 1 {
		t.Fatalf("expected a single root frame, got len %d", s.Len())
	}
}

func TestBranchDownwardsIncreasesDepthByOne(t *testing.T) {
	s := NewStack()
	root := s.Top()
	root.LowerBound = 1
	child := s.BranchDownwards(domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, 0.7)
	if child.Depth != root.Depth+1 {
		t.Fatalf("expected child depth %d, got %d", root.Depth+1, child.Depth)
	}
	if s.Top().OpenSubtrees != 2 {
		t.Fatalf("fresh child should start with OpenSubtrees == 2")
	}
}

func TestParentMarkedSingleOpenSubtreeAfterBranching(t *testing.T) {
	s := NewStack()
	s.BranchDownwards(domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, 0.7)
	// The parent is now one level below the new top.
	parent := s.At(0)
	if parent.OpenSubtrees != 1 {
		t.Fatalf("expected parent OpenSubtrees == 1 after branching one child, got %d", parent.OpenSubtrees)
	}
}

func TestPopToDepthTruncatesStack(t *testing.T) {
	s := NewStack()
	s.BranchDownwards(domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, 0.5)
	s.BranchDownwards(domain.Change{Column: 1, Side: domain.Upper, Bound: 0}, 0.5)
	if s.Len() != 3 {
		t.Fatalf("expected depth 3, got %d", s.Len())
	}
	s.PopToDepth(1)
	if s.Len() != 1 {
		t.Fatalf("expected depth 1 after popping, got %d", s.Len())
	}
}

func TestDomChgStackPosNeverDecreasesDownABranch(t *testing.T) {
	s := NewStack()
	s.Top().DomChgStackPos = 2
	child := s.BranchDownwards(domain.Change{Column: 0, Side: domain.Upper, Bound: 0}, 0.5)
	if child.DomChgStackPos < 2 {
		t.Fatalf("child domchg stack position must not regress below parent's, got %d", child.DomChgStackPos)
	}
}

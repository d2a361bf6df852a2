package search

import (
	"github.com/google/uuid"

	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/nodequeue"
	"github.com/opticore/bbsearch/symmetry"
)

// NodeFrame is the per-node record from spec.md §3: every field the driver
// needs to resume, branch, or prune a node, without a pointer back to a
// parent — ancestry is implicit in the frame's position on the stack.
type NodeFrame struct {
	// ID correlates this frame's log lines and metrics labels with the
	// nodequeue.OpenNode it was pushed from or parked as; it never affects
	// ordering or equality, which remain governed by (LowerBound, Estimate).
	ID uuid.UUID

	// OpenSubtrees counts how many of this node's children are still
	// unexplored: 0 once the node is fully closed, 1 while the driver is
	// diving into one child with the other recorded as PendingSibling (or
	// already parked on the queue), 2 for a frame that has not branched
	// yet.
	OpenSubtrees int8

	// DomChgStackPos is this node's position on the shared domain-change
	// stack: replaying changes [0, DomChgStackPos) from the root recreates
	// this node's domain.
	DomChgStackPos int

	// BranchingDecision is the bound change that created this node from its
	// parent (the zero value at the root).
	BranchingDecision domain.Change

	// BranchingPoint is the fractional value the branching column had in
	// the parent's LP solution, kept for child-selection heuristics that
	// compare it to the branch's flipped value (RootSolDistance).
	BranchingPoint float64

	LowerBound  float64
	LpObjective float64
	Estimate    float64

	// NodeBasis and StabilizerOrbits are shared, reference-counted handles:
	// published once by the parent (or by this node's own LP solve), never
	// mutated afterward, and copied by pointer to children — the Go
	// expression of spec.md §9's shared_ptr mapping.
	NodeBasis        *lprelax.Basis
	StabilizerOrbits symmetry.Orbits

	// SkipDepthCount tracks how many consecutive plunge dives have skipped
	// revisiting the shared queue, feeding the backtracker's plunge-parking
	// decision (spec.md §4.3).
	SkipDepthCount int

	// PendingSibling is the not-yet-explored child Branch recorded when it
	// descended into this frame's sibling instead: Backtrack consumes it
	// exactly once, either parking it on the shared queue or flipping
	// straight into it while plunging, never both (spec.md §4.3).
	PendingSibling *nodequeue.OpenNode

	Depth int
}

// Stack is the node stack: an index-based vector of frames rather than a
// tree of pointers (spec.md §9's "node_stack as index-based vector, not
// pointers"), so that branching in either direction pushes a frame and
// backtracking is just a slice truncation.
type Stack struct {
	frames []NodeFrame
}

// NewStack returns a stack containing only the root frame.
func NewStack() *Stack {
	return &Stack{frames: []NodeFrame{{ID: uuid.New(), OpenSubtrees: 2}}}
}

// Len reports the current depth (root included).
func (s *Stack) Len() int { return len(s.frames) }

// Top returns a pointer to the current (deepest) frame.
func (s *Stack) Top() *NodeFrame { return &s.frames[len(s.frames)-1] }

// At returns a pointer to the frame at depth i.
func (s *Stack) At(i int) *NodeFrame { return &s.frames[i] }

// CreateNewNode pushes a fresh frame below the current top, inheriting the
// top's shared handles (basis, orbits) until the child's own LP solve
// republishes them. Mirrors HighsSearch::createNewNode.
func (s *Stack) CreateNewNode() *NodeFrame {
	parent := s.Top()
	child := NodeFrame{
		ID:               uuid.New(),
		OpenSubtrees:     2,
		DomChgStackPos:   parent.DomChgStackPos,
		NodeBasis:        parent.NodeBasis,
		StabilizerOrbits: parent.StabilizerOrbits,
		Depth:            parent.Depth + 1,
	}
	s.frames = append(s.frames, child)
	return s.Top()
}

// BranchDownwards installs ch as the new top frame's branching decision,
// marking that the node has one remaining open subtree (the up child,
// parked) once the down child is pushed. Mirrors
// HighsSearch::branchDownwards.
func (s *Stack) BranchDownwards(ch domain.Change, branchPoint float64) *NodeFrame {
	parent := s.Top()
	parent.OpenSubtrees = 1
	child := s.CreateNewNode()
	child.BranchingDecision = ch
	child.BranchingPoint = branchPoint
	child.OpenSubtrees = 2
	return child
}

// BranchUpwards is the symmetric operation for the up child.
func (s *Stack) BranchUpwards(ch domain.Change, branchPoint float64) *NodeFrame {
	parent := s.Top()
	parent.OpenSubtrees = 1
	child := s.CreateNewNode()
	child.BranchingDecision = ch
	child.BranchingPoint = branchPoint
	child.OpenSubtrees = 2
	return child
}

// InstallNode replaces the whole stack with a single frame reconstructed
// from a queued node (spec.md §4.2's install_node): the driver is expected
// to have already replayed the node's full domain-change stack into the
// shared Domain before calling this.
func (s *Stack) InstallNode(f NodeFrame) {
	s.frames = []NodeFrame{f}
}

// PopToDepth truncates the stack down to depth frames (depth >= 1), the
// index-based equivalent of destroying every node below the cut — node
// frames are only ever discarded via this call, never individually freed,
// matching spec.md §3's "destroyed only via the backtracker" invariant.
func (s *Stack) PopToDepth(depth int) {
	invariant(depth >= 1, "stack depth must stay >= 1 (root is never popped)")
	invariant(depth <= len(s.frames), "cannot pop to a depth deeper than the current stack")
	s.frames = s.frames[:depth]
}

// Frames exposes the full stack, root first, for statistics and testing.
func (s *Stack) Frames() []NodeFrame { return s.frames }

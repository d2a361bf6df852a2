package search

import (
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/symmetry"
)

// Backtrack implements spec.md §4.3: once the current node closes (its
// evaluation wasn't Open/Branched), find the next place to resume. In
// simple mode that is always the shared queue's best node. In plunge mode,
// as long as an ancestor still has its sibling subtree open and the plunge
// hasn't run too deep, the driver descends straight into that sibling
// in place and keeps diving locally instead of paying a queue round trip —
// HighsSearch's backtrackPlunge. Parking and plunging are mutually
// exclusive: an ancestor's PendingSibling is consumed exactly once, either
// handed to the queue or turned directly into the next frame, never both.
func (d *Driver) Backtrack(plunge bool) bool {
	s := d.stack
	depth := s.Len()
	for depth > 1 && s.At(depth-1).OpenSubtrees == 0 {
		depth--
	}
	if depth <= 1 && s.At(0).OpenSubtrees == 0 {
		return false // whole tree closed
	}
	s.PopToDepth(depth)
	ancestor := s.Top()
	d.stats.NbBacktracks++

	sibling := ancestor.PendingSibling
	if sibling == nil {
		// Nothing local to resume into: the ancestor closed without ever
		// branching (e.g. a queue-installed node that was itself pruned
		// before it produced any children).
		ancestor.OpenSubtrees = 0
		return d.installFromQueue()
	}

	if plunge && ancestor.SkipDepthCount < d.maxPlungeDepth {
		ctx := d.ctx
		ancestor.PendingSibling = nil
		ancestor.OpenSubtrees = 0
		ctx.Domain.Backtrack(ancestor.DomChgStackPos)

		child := NodeFrame{
			ID:                sibling.ID,
			OpenSubtrees:      2,
			DomChgStackPos:    ancestor.DomChgStackPos,
			BranchingDecision: sibling.DomChgStack[len(sibling.DomChgStack)-1],
			BranchingPoint:    sibling.BranchingPoint,
			LowerBound:        sibling.LowerBound,
			Estimate:          sibling.Estimate,
			Depth:             ancestor.Depth + 1,
			SkipDepthCount:    ancestor.SkipDepthCount + 1,
		}
		if basis, ok := sibling.Basis.(*lprelax.Basis); ok {
			child.NodeBasis = basis
		}
		if orbits, ok := sibling.Orbits.(symmetry.Orbits); ok && orbits != nil {
			child.StabilizerOrbits = orbits
		}
		s.frames = append(s.frames, child)
		d.stats.NbPlunges++
		return true
	}

	ancestor.PendingSibling = nil
	ancestor.OpenSubtrees = 0
	if ctx := d.ctx; ctx.Queue != nil {
		ctx.Queue.EmplaceNode(*sibling)
	}
	return d.installFromQueue()
}

// installFromQueue pulls the best queued node and installs it as the whole
// stack, replaying its full domain-change stack into the shared domain —
// spec.md §4.2's install_node.
func (d *Driver) installFromQueue() bool {
	ctx := d.ctx
	if ctx.Queue == nil {
		return false
	}
	n, ok := ctx.Queue.Pop()
	if !ok {
		return false
	}
	ctx.Domain.BacktrackToGlobal()
	ctx.Domain.SetDomainChangeStack(n.DomChgStack)
	frame := NodeFrame{
		ID:             n.ID,
		OpenSubtrees:   2,
		DomChgStackPos: len(n.DomChgStack),
		LowerBound:     n.LowerBound,
		Estimate:       n.Estimate,
		Depth:          n.Depth,
		BranchingPoint: n.BranchingPoint,
	}
	if basis, ok := n.Basis.(*lprelax.Basis); ok {
		frame.NodeBasis = basis
	}
	if orbits, ok := n.Orbits.(symmetry.Orbits); ok && orbits != nil && orbitsRemainValid(orbits, n.DomChgStack) {
		frame.StabilizerOrbits = orbits
	}
	d.stack.InstallNode(frame)
	return true
}

// BacktrackUntilDepth drops the stack straight to depth without consulting
// the queue or flipping any bound — used when the driver is asked to
// abandon everything below a fixed point (e.g. a limit was hit mid-dive).
func (d *Driver) BacktrackUntilDepth(depth int) {
	if depth < 1 {
		depth = 1
	}
	d.stack.PopToDepth(depth)
	d.ctx.Domain.Backtrack(d.stack.Top().DomChgStackPos)
}

// Package nodequeue holds the shared queue of open nodes a driver hands
// unselected subtrees to, and pulls new work from when it dives past its
// plunge depth or runs out of local work.
package nodequeue

import (
	"github.com/google/uuid"
	"github.com/opticore/bbsearch/domain"
)

// OpenNode is the snapshot of a node handed to the shared queue: enough of
// its NodeFrame to reconstruct it later via install_node, without pinning
// the whole in-memory node-stack frame.
type OpenNode struct {
	ID             uuid.UUID
	LowerBound     float64
	Estimate       float64
	Depth          int
	DomChgStack    []domain.Change
	BranchingPoint float64
	Basis          interface{} // *lprelax.Basis, kept as interface{} to avoid an import cycle between nodequeue and lprelax
	Orbits         interface{} // *symmetry.Orbits handle, same reasoning
}

// Queue is the shared open-node collaborator from spec.md §6: nodes are
// pushed once a subtree is deferred, and the counters below let the
// brancher's "how many open nodes favor this child" heuristic
// (OpenNodeDisjunction) work without the queue exposing its internal
// ordering.
type Queue interface {
	// EmplaceNode adds n to the queue.
	EmplaceNode(n OpenNode)

	// NumNodesUp / NumNodesDown report how many currently-queued nodes
	// resulted from branching a given column up or down — the statistic
	// OpenNodeDisjunction child selection reads.
	NumNodesUp(col int) int
	NumNodesDown(col int) int

	// Pop removes and returns the best (lowest lower bound) node, and false
	// if the queue is empty.
	Pop() (OpenNode, bool)

	// Len reports the number of queued nodes.
	Len() int
}

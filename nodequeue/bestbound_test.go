package nodequeue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/opticore/bbsearch/domain"
)

func TestPopReturnsLowestBoundFirst(t *testing.T) {
	q := NewBestBound()
	q.EmplaceNode(OpenNode{ID: uuid.New(), LowerBound: 5})
	q.EmplaceNode(OpenNode{ID: uuid.New(), LowerBound: 1})
	q.EmplaceNode(OpenNode{ID: uuid.New(), LowerBound: 3})

	n, ok := q.Pop()
	if !ok || n.LowerBound != 1 {
		t.Fatalf("expected lowest bound 1 first, got %+v ok=%v", n, ok)
	}
	n, ok = q.Pop()
	if !ok || n.LowerBound != 3 {
		t.Fatalf("expected bound 3 second, got %+v", n)
	}
}

func TestEmptyQueuePopFails(t *testing.T) {
	q := NewBestBound()
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected Pop on empty queue to fail")
	}
}

func TestNodeCountsTrackBranchDirection(t *testing.T) {
	q := NewBestBound()
	q.EmplaceNode(OpenNode{DomChgStack: []domain.Change{{Column: 2, Side: domain.Lower, Bound: 1}}})
	q.EmplaceNode(OpenNode{DomChgStack: []domain.Change{{Column: 2, Side: domain.Upper, Bound: 0}}})
	if q.NumNodesUp(2) != 1 || q.NumNodesDown(2) != 1 {
		t.Fatalf("expected one up and one down node for column 2, got up=%d down=%d", q.NumNodesUp(2), q.NumNodesDown(2))
	}
	q.Pop()
	if q.NumNodesUp(2)+q.NumNodesDown(2) != 1 {
		t.Fatalf("expected counts to decrease after Pop")
	}
}

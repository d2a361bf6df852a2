package limits

import (
	"testing"
	"time"
)

func TestMaxNodesStops(t *testing.T) {
	b := NewBudget().WithMaxNodes(2)
	if b.CheckLimits() {
		t.Fatalf("should not stop before any node visited")
	}
	b.NodeVisited()
	b.NodeVisited()
	if !b.CheckLimits() {
		t.Fatalf("should stop once max nodes reached")
	}
}

func TestDeadlineStops(t *testing.T) {
	b := NewBudget().WithDeadline(time.Now().Add(-time.Second))
	if !b.CheckLimits() {
		t.Fatalf("should stop once past deadline")
	}
}

func TestGapToleranceStops(t *testing.T) {
	b := NewBudget().WithGapTolerance(0.01)
	b.UpdateBounds(99, 100)
	if !b.CheckLimits() {
		t.Fatalf("should stop once within gap tolerance")
	}
}

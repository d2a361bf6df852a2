package pseudocost

import "testing"

func TestNotReliableUntilMinObservations(t *testing.T) {
	s := NewEWMAStore(1)
	s.SetMinReliable(3)
	if s.IsReliable(0, true) {
		t.Fatalf("should not be reliable with zero observations")
	}
	for i := 0; i < 3; i++ {
		s.AddObservation(0, true, 2, 1)
	}
	if !s.IsReliable(0, true) {
		t.Fatalf("should be reliable after minReliable observations")
	}
}

func TestDegeneracyRaisesThreshold(t *testing.T) {
	s := NewEWMAStore(1)
	s.SetMinReliable(2)
	s.AddObservation(0, false, 1, 1)
	s.AddObservation(0, false, 1, 1)
	if !s.IsReliable(0, false) {
		t.Fatalf("expected reliable at baseline degeneracy")
	}
	s.SetDegeneracyFactor(5)
	if s.IsReliable(0, false) {
		t.Fatalf("expected not reliable once degeneracy inflates the threshold")
	}
}

func TestEstimateIsPerUnitRatio(t *testing.T) {
	s := NewEWMAStore(1)
	s.AddObservation(0, true, 10, 2)
	s.AddObservation(0, true, 10, 2)
	if got := s.PseudocostUp(0); got != 5 {
		t.Fatalf("expected pseudocost 5 (10/2 averaged), got %v", got)
	}
}

func TestCutoffObservationDominatesScore(t *testing.T) {
	s := NewEWMAStore(1)
	s.AddCutoffObservation(0, true)
	if s.PseudocostUp(0) < 1e6 {
		t.Fatalf("expected a large pseudocost after a cutoff observation, got %v", s.PseudocostUp(0))
	}
}

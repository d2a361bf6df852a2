package symmetry

import "testing"

func TestOrbitalFixingFixesOtherMembersToZero(t *testing.T) {
	g := NewPermutationGroup([][]int{{0, 1, 2}})
	fixed := map[int]bool{0: true}
	toZero := g.OrbitalFixing(fixed)
	if len(toZero) != 2 {
		t.Fatalf("expected 2 columns fixed to zero, got %v", toZero)
	}
}

func TestUpBranchOnOrbitMemberDropsChildStabilizer(t *testing.T) {
	g := NewPermutationGroup([][]int{{0, 1, 2}})
	if !g.IsStabilized(0) {
		t.Fatalf("root orbit should be stabilized")
	}
	child := g.ComputeStabilizerOrbits(g, 0, true)
	if child != nil {
		t.Fatalf("expected an up branch on an orbit member to drop the child's stabilizer (nil), got %+v", child)
	}
}

func TestDownBranchOnOrbitMemberPreservesChildStabilizer(t *testing.T) {
	g := NewPermutationGroup([][]int{{0, 1, 2}})
	child := g.ComputeStabilizerOrbits(g, 0, false)
	if child != Orbits(g) {
		t.Fatalf("expected a down branch to inherit the parent stabilizer unchanged, got %+v", child)
	}
}

func TestBranchOnUntrackedColumnPreservesStabilizer(t *testing.T) {
	g := NewPermutationGroup([][]int{{0, 1, 2}})
	child := g.ComputeStabilizerOrbits(g, 99, true)
	if child != Orbits(g) {
		t.Fatalf("expected branching on a column outside any orbit to leave the stabilizer untouched, got %+v", child)
	}
}

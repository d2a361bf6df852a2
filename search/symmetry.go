package search

import (
	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/symmetry"
)

// applyOrbitalFixing implements spec.md §4.1 step 2 / §4.2 step 2: given a
// frame's stabilizer orbits, fix every not-yet-fixed orbit member to 0 once
// some other member of its orbit is already fixed to 1, then re-propagate
// if fixing changed any bound. It returns false if that re-propagation
// proves the domain infeasible.
func (d *Driver) applyOrbitalFixing(orbits symmetry.Orbits) bool {
	ctx := d.ctx
	fixedToOne := map[int]bool{}
	for c := 0; c < ctx.Domain.NumCols(); c++ {
		if ctx.Domain.IsGlobalBinary(c) && ctx.Domain.LB(c) >= 1 {
			fixedToOne[c] = true
		}
	}
	toZero := orbits.OrbitalFixing(fixedToOne)
	if len(toZero) == 0 {
		return true
	}
	for _, c := range toZero {
		ctx.Domain.ChangeBound(domain.Change{Column: c, Side: domain.Upper, Bound: 0})
	}
	return ctx.Domain.Propagate()
}

// orbitsValidForBranch reports whether branching via ch still leaves orbits
// usable: a column outside any orbit (or alone in its orbit) never
// invalidates it, and a symmetry-tracked column only stays valid when it is
// fixed to 1 via a lower-bound branch — §4.4's install_node validity check.
// This is the opposite direction from the child-inheritance rule in
// PermutationGroup.ComputeStabilizerOrbits, which keeps the parent's orbits
// on a down branch and drops them on an up branch.
func orbitsValidForBranch(orbits symmetry.Orbits, ch domain.Change) bool {
	if len(orbits.OrbitCols(ch.Column)) <= 1 {
		return true
	}
	return ch.Side == domain.Lower && ch.Bound >= 1
}

// orbitsRemainValid is orbitsValidForBranch extended over a whole replayed
// domain-change stack, spec.md §4.4's install_node check.
func orbitsRemainValid(orbits symmetry.Orbits, changes []domain.Change) bool {
	for _, ch := range changes {
		if !orbitsValidForBranch(orbits, ch) {
			return false
		}
	}
	return true
}

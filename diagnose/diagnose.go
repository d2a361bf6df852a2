// Package diagnose finds minimal subsets of branching decisions responsible
// for a pruned node's infeasibility, the branch-and-bound analog of
// gophersat's explain package computing a Minimal Unsatisfiable Subset of
// clauses: where explain re-solves shrinking clause sets to isolate which
// ones are jointly unsatisfiable, diagnose re-propagates shrinking decision
// sets to isolate which branching decisions are jointly infeasible.
package diagnose

import "github.com/opticore/bbsearch/domain"

// NewDomain builds a fresh Domain at its global bounds, used to test a
// candidate subset of decisions without disturbing the node actually being
// explored.
type NewDomain func() domain.Domain

func infeasible(newDomain NewDomain, decisions []domain.Change) bool {
	d := newDomain()
	for _, ch := range decisions {
		d.ChangeBound(ch)
	}
	return !d.Propagate()
}

// errFeasible mirrors explain's "cannot extract MUS from satisfiable
// problem": asking for a minimal infeasible subset of a feasible decision
// set is a caller error, not a condition to search for.
type errFeasible struct{}

func (errFeasible) Error() string {
	return "diagnose: decision set is feasible, nothing to explain"
}

// MinimalInfeasibleBranches returns a minimal subset of decisions jointly
// responsible for infeasibility: removing any single decision from the
// result makes the remainder feasible. It uses the deletion strategy,
// grounded on explain.MUSDeletion: exactly len(decisions) propagation
// checks, each one testing whether a single decision may be dropped.
func MinimalInfeasibleBranches(newDomain NewDomain, decisions []domain.Change) ([]domain.Change, error) {
	if !infeasible(newDomain, decisions) {
		return nil, errFeasible{}
	}
	kept := append([]domain.Change(nil), decisions...)
	for i := 0; i < len(kept); {
		candidate := make([]domain.Change, 0, len(kept)-1)
		candidate = append(candidate, kept[:i]...)
		candidate = append(candidate, kept[i+1:]...)
		if infeasible(newDomain, candidate) {
			kept = candidate // decision i was not essential, the rest already explain the conflict
		} else {
			i++
		}
	}
	return kept, nil
}

// MinimalInfeasibleBranchesInsertion computes the same kind of minimal
// subset via the insertion strategy, grounded on explain.MUSInsertion:
// decisions are added back one at a time until the growing set turns
// infeasible, the decision that tipped it over is kept, and the search
// resumes among what is left. This tends to need fewer propagation checks
// than the deletion strategy when the result is small relative to the
// input, at the cost of worse worst-case behavior.
func MinimalInfeasibleBranchesInsertion(newDomain NewDomain, decisions []domain.Change) ([]domain.Change, error) {
	if !infeasible(newDomain, decisions) {
		return nil, errFeasible{}
	}
	var mus []domain.Change
	remaining := append([]domain.Change(nil), decisions...)
	for {
		if infeasible(newDomain, mus) {
			return mus, nil
		}
		idx := 0
		for !infeasible(newDomain, append(append([]domain.Change(nil), mus...), remaining[:idx+1]...)) {
			idx++
		}
		mus = append(mus, remaining[idx])
		remaining = remaining[:idx]
	}
}

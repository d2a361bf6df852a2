package domain

import "errors"

// ConflictAnalysis derives a generalized no-good: the disjunction "at least
// one of the branching bound changes currently on the stack must be undone",
// expressed as a Row over indicator directions rather than the original
// columns, mirroring the shape of gophersat's learned clauses (a disjunction
// of negated trail literals) without requiring this reference domain to
// track a full reason graph per bound change.
//
// A production local-domain collaborator would instead walk a proper reason
// DAG (each implied bound remembers which row and which other bounds implied
// it) the way learnClause walks the propagation trail; that is exactly the
// kind of propagation-engine internals spec.md puts out of scope, so this
// reference keeps the simpler, still-sound, all-branching-decisions
// generalization.
func (d *BoundDomain) ConflictAnalysis() (Row, error) {
	if !d.infeasible {
		return Row{}, errors.New("domain: ConflictAnalysis called on a feasible domain")
	}
	if len(d.stack) == 0 {
		return Row{}, errors.New("domain: infeasible at the root has no conflict to generalize")
	}
	return buildNoGoodRow(d.stack)
}

// ConflictAnalysisReason generalizes an explicitly given reason — a set of
// bound changes some caller has already decided are jointly responsible for
// a cutoff or infeasibility — into the same no-good shape ConflictAnalysis
// produces, without requiring d.infeasible. An LP relaxation's own
// bound-exceeding or infeasible classification is the intended caller: it
// knows which active bounds its trial solve ran under and can hand them
// straight to this overload instead of reusing domain-level conflict
// analysis for an LP-level proof.
func (d *BoundDomain) ConflictAnalysisReason(reason []Change) (Row, error) {
	return buildNoGoodRow(reason)
}

func buildNoGoodRow(changes []Change) (Row, error) {
	if len(changes) == 0 {
		return Row{}, errors.New("domain: no bound changes to generalize")
	}
	row := Row{RHS: float64(len(changes)) - 1}
	for _, ch := range changes {
		row.Cols = append(row.Cols, ch.Column)
		if ch.Side == Lower {
			row.Coeffs = append(row.Coeffs, 1)
		} else {
			row.Coeffs = append(row.Coeffs, -1)
		}
	}
	return row, nil
}

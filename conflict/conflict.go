// Package conflict holds the pool of learned no-good rows (generalized from
// infeasible or bound-exceeding nodes) and the pool of externally generated
// cuts, both pruning collaborators the evaluator consults before solving a
// node's LP relaxation.
package conflict

import "github.com/opticore/bbsearch/domain"

// Pool is the conflict-pool collaborator from spec.md §6: it stores rows
// derived from infeasible or bound-exceeding nodes and ages out low-activity
// ones once the pool grows past budget, the "bump on reuse, evict the
// coldest half once over budget" part of the policy gophersat applies to
// learned clauses (solver/watcher.go's reduceLearned); activities do not
// decay over time.
type Pool interface {
	// Add stores row with its activity set to 1.
	Add(row domain.Row)

	// Bump increases row i's activity (e.g. because it pruned a node again).
	Bump(i int)

	// Rows returns every currently-pooled row.
	Rows() []domain.Row

	// Reduce evicts the least active half of the pool once it exceeds
	// budget, mirroring reduceLearned's amortized cleanup.
	Reduce()

	// Len reports the number of pooled rows.
	Len() int
}

// CutPool is the separately-tracked pool of rows coming from a cut
// generator rather than from conflict analysis; kept distinct because cuts
// are valid globally (not just along one branch) while some conflict rows
// are local, matching spec.md §6's CutPool/ConflictPool split.
type CutPool interface {
	AddCut(row domain.Row)
	Cuts() []domain.Row
}

// Generator is the cut-generation contract from spec.md §6 — an external
// collaborator the evaluator may consult after solving a fractional LP.
// No cut-separation algorithm is implemented here (that is explicitly out of
// scope, spec.md §1); this package only defines the contract and a no-op
// reference so the driver can be exercised without one.
type Generator interface {
	GenerateConflict(frac domain.Row) (domain.Row, bool)
}

// NoopGenerator never produces a cut. It exists so tests can wire a
// Generator without depending on a real cut-separation package.
type NoopGenerator struct{}

func (NoopGenerator) GenerateConflict(domain.Row) (domain.Row, bool) { return domain.Row{}, false }

// Package search implements the branch-and-bound driver: the node stack,
// the evaluator that solves and classifies each node, the brancher that
// picks a column and a child order, the backtracker that decides where to
// resume after a subtree closes, and the statistics/limits bookkeeping tying
// them together.
package search

// NodeResult is the closed set of outcomes a node evaluation can produce,
// the Go expression of a tagged union in place of the original's enum class
// (spec.md §9).
type NodeResult int

const (
	// Open means the node still has an unexplored subtree: EvaluateNode
	// returns it when the node's LP solution is fractional and the node
	// still needs branching, and Dive returns it when a limit stops the dive
	// before the current node is finished.
	Open NodeResult = iota
	// DomainInfeasible means local bound propagation alone proved the node
	// infeasible; no LP was solved.
	DomainInfeasible
	// LpInfeasible means the LP relaxation itself is infeasible.
	LpInfeasible
	// BoundExceeding means the LP's objective already exceeds the best known
	// cutoff; the node can be pruned without being integer feasible.
	BoundExceeding
	// Branched means the node was split into children and pushed.
	Branched
	// SubOptimal means the node's LP solution was already integer feasible;
	// it becomes a candidate incumbent rather than being branched further.
	SubOptimal
)

func (r NodeResult) String() string {
	switch r {
	case Open:
		return "open"
	case DomainInfeasible:
		return "domain_infeasible"
	case LpInfeasible:
		return "lp_infeasible"
	case BoundExceeding:
		return "bound_exceeding"
	case Branched:
		return "branched"
	case SubOptimal:
		return "suboptimal"
	default:
		return "unknown"
	}
}

// ChildRule is the closed enum of child-selection heuristics from spec.md
// §4.2, dispatched by the brancher once a branching column has been chosen.
type ChildRule int

const (
	RuleUp ChildRule = iota
	RuleDown
	RuleRootSolDistance
	RuleObjectiveSign
	RuleRandom
	RuleBestPseudocost
	RuleWorstPseudocost
	RuleOpenNodeDisjunction
	RuleHybridInferenceCost
)

func (r ChildRule) String() string {
	switch r {
	case RuleUp:
		return "up"
	case RuleDown:
		return "down"
	case RuleRootSolDistance:
		return "root_sol_distance"
	case RuleObjectiveSign:
		return "objective_sign"
	case RuleRandom:
		return "random"
	case RuleBestPseudocost:
		return "best_pseudocost"
	case RuleWorstPseudocost:
		return "worst_pseudocost"
	case RuleOpenNodeDisjunction:
		return "open_node_disjunction"
	case RuleHybridInferenceCost:
		return "hybrid_inference_cost"
	default:
		return "unknown"
	}
}

// Stats mirrors gophersat's Solver.Stats (a plain counter struct bumped
// throughout the search and read back wholesale), generalized from
// conflict-driven-clause-learning counters to branch-and-bound ones.
type Stats struct {
	NbNodes            int
	NbBacktracks       int
	NbPlunges          int
	NbLpIterations     int
	NbSbLpIterations   int
	NbBranched         int
	NbDomainInfeasible int
	NbLpInfeasible     int
	NbBoundExceeding   int
	NbSubOptimal       int
	TreeWeight         float64 // fraction of the tree proven closed, accumulated via KahanSum
}

// Merge adds other's counters into s, the local-plus-global half of
// flush_statistics (spec.md §4.5): drivers accumulate locally and merge into
// a shared total when asked.
func (s *Stats) Merge(other Stats) {
	s.NbNodes += other.NbNodes
	s.NbBacktracks += other.NbBacktracks
	s.NbPlunges += other.NbPlunges
	s.NbLpIterations += other.NbLpIterations
	s.NbSbLpIterations += other.NbSbLpIterations
	s.NbBranched += other.NbBranched
	s.NbDomainInfeasible += other.NbDomainInfeasible
	s.NbLpInfeasible += other.NbLpInfeasible
	s.NbBoundExceeding += other.NbBoundExceeding
	s.NbSubOptimal += other.NbSubOptimal
	s.TreeWeight += other.TreeWeight
}

package search

import (
	"github.com/sirupsen/logrus"

	"github.com/opticore/bbsearch/conflict"
	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/limits"
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/metrics"
	"github.com/opticore/bbsearch/nodequeue"
	"github.com/opticore/bbsearch/pseudocost"
	"github.com/opticore/bbsearch/symmetry"
)

// Context bundles every external collaborator the driver needs, grouped
// into one value the way spec.md §9 asks the original's many constructor
// arguments and member pointers to be grouped: a single context object
// instead of a long parameter list threaded through every method.
type Context struct {
	Relaxation lprelax.Relaxation
	Domain     domain.Domain
	Pseudocost pseudocost.Store
	Conflicts  conflict.Pool
	Cuts       conflict.CutPool
	CutGen     conflict.Generator
	Queue      nodequeue.Queue
	Symmetry   symmetry.Detector
	Limits     limits.Checker
	Metrics    *metrics.Collectors

	// RootOrbits, when set, seeds the root frame's StabilizerOrbits: the
	// root has no parent to inherit from, so this is the only place a
	// global symmetry group enters the search (spec.md §4.1 step 2).
	RootOrbits symmetry.Orbits

	// Global, when set, is the MIP-wide counter tally this Driver flushes
	// into via FlushStatistics; nil means this Driver is the only worker and
	// Stats() reads its local counters directly.
	Global *GlobalStats

	// Log is nil-safe: a nil logger discards every call below.
	Log *logrus.Entry

	// MinReliable and DegeneracyFactor configure the brancher's reliability
	// threshold (spec.md §4.2); exposed here so a driver can tune them
	// without reaching into the pseudocost store directly.
	MinReliable      int
	DegeneracyFactor float64

	// Rules lists the child-selection rules to try in order, the "last
	// resort fallback ladder" from spec.md §4.2: the first rule able to
	// produce a decision wins.
	Rules []ChildRule
}

func (c *Context) logf(level logrus.Level, format string, args ...interface{}) {
	if c.Log == nil {
		return
	}
	c.Log.Logf(level, format, args...)
}

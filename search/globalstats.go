package search

import "sync"

// GlobalStats is the MIP-wide counter tally several Drivers flush into when
// they cooperate on one search (spec.md §4.5): each Driver accumulates
// nnodes/tree_weight/lp_iterations/sb_lp_iterations locally, cheap to update
// without contention, and only touches the shared total on FlushStatistics.
type GlobalStats struct {
	mu    sync.Mutex
	total Stats
}

// NewGlobalStats returns an empty shared tally.
func NewGlobalStats() *GlobalStats {
	return &GlobalStats{}
}

func (g *GlobalStats) flush(local Stats) Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.total.Merge(local)
	return g.total
}

// Snapshot returns the currently flushed totals, independent of any Driver's
// unflushed local counters.
func (g *GlobalStats) Snapshot() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}

// FlushStatistics implements spec.md §4.5's flush_statistics: atomically add
// this Driver's local counters into the shared GlobalStats (when one is
// configured) and zero them locally. It returns the counters as they stood
// just before the flush. Metrics collectors, when configured, are updated
// from the same pre-flush snapshot so a scrape never double-counts a flush
// that hasn't happened yet.
func (d *Driver) FlushStatistics() Stats {
	local := d.stats
	total := local
	if d.ctx.Global != nil {
		total = d.ctx.Global.flush(local)
	}
	if m := d.ctx.Metrics; m != nil {
		m.Nodes.Add(float64(local.NbNodes))
		m.LPIterations.Add(float64(local.NbLpIterations))
		m.SBLPIterations.Add(float64(local.NbSbLpIterations))
		m.Backtracks.Add(float64(local.NbBacktracks))
		m.Plunges.Add(float64(local.NbPlunges))
		m.TreeWeight.Set(total.TreeWeight)
	}
	d.stats = Stats{}
	d.treeWeight = KahanSum{}
	return local
}

// Stats returns this Driver's accumulated statistics. When ctx.Global is
// configured, read-paths sum the already-flushed global total with this
// Driver's not-yet-flushed local counters, per spec.md §4.5.
func (d *Driver) Stats() Stats {
	if d.ctx.Global == nil {
		return d.stats
	}
	s := d.ctx.Global.Snapshot()
	s.Merge(d.stats)
	return s
}

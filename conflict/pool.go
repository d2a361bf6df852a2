package conflict

import "github.com/opticore/bbsearch/domain"

const (
	initBudget   = 64
	growIncrement = 32
)

// RowPool is the reference Pool. Eviction mirrors watcherList.reduceLearned:
// sort by activity, drop the coldest half once the pool exceeds its current
// budget, and grow the budget afterward so healthy pools aren't thrashed.
type RowPool struct {
	rows   []domain.Row
	budget int
}

// NewRowPool builds an empty pool.
func NewRowPool() *RowPool {
	return &RowPool{budget: initBudget}
}

func (p *RowPool) Add(row domain.Row) {
	row.Activity = 1
	p.rows = append(p.rows, row)
	if len(p.rows) > p.budget {
		p.Reduce()
	}
}

func (p *RowPool) Bump(i int) {
	if i < 0 || i >= len(p.rows) {
		return
	}
	p.rows[i].Activity++
}

func (p *RowPool) Rows() []domain.Row { return p.rows }
func (p *RowPool) Len() int           { return len(p.rows) }

// Reduce keeps the most active half of the pool and grows the budget, the
// same amortized-cleanup shape as reduceLearned + bumpNbMax.
func (p *RowPool) Reduce() {
	if len(p.rows) == 0 {
		return
	}
	sorted := append([]domain.Row(nil), p.rows...)
	// insertion sort by descending activity; pools this small (tens to a
	// few hundred rows) don't need anything fancier.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Activity > sorted[j-1].Activity; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	keep := len(sorted) / 2
	if keep == 0 {
		keep = len(sorted)
	}
	p.rows = sorted[:keep]
	p.budget += growIncrement
}

// SimpleCutPool is the reference CutPool: cuts are kept forever (they are
// globally valid), with no eviction policy since this module does not
// generate enough of them to need one.
type SimpleCutPool struct {
	cuts []domain.Row
}

func NewSimpleCutPool() *SimpleCutPool { return &SimpleCutPool{} }

func (p *SimpleCutPool) AddCut(row domain.Row)  { p.cuts = append(p.cuts, row) }
func (p *SimpleCutPool) Cuts() []domain.Row     { return p.cuts }

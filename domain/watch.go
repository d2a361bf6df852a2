package domain

import "math"

// BoundDomain is the reference Domain implementation. Each row is indexed
// under (watched by) its first two columns — the same lazy-reactivation idea
// as watched literals in clausal propagation, applied to bound consistency
// instead of clause falsification: apart from the full scan Propagate makes
// while the domain-change stack is empty, a row is only rescanned when one
// of its watched columns actually changed since the last Propagate call; a
// change to any of its other columns does not wake it.
type BoundDomain struct {
	globalLB, globalUB []float64
	lb, ub             []float64
	rows               []Row
	watch              [][]int // column -> indices into rows that watch it
	changed            []bool
	changedCols        []int
	stack              []Change
	infeasible         bool
	trail              []Change // never written; the change history lives in stack
}

// NewBoundDomain builds a domain over numCols columns with the given root
// bounds and rows. Each row watches its first two columns; the watch lists
// are fixed here and never reassigned afterwards.
func NewBoundDomain(lb, ub []float64, rows []Row) *BoundDomain {
	n := len(lb)
	d := &BoundDomain{
		globalLB: append([]float64(nil), lb...),
		globalUB: append([]float64(nil), ub...),
		lb:       append([]float64(nil), lb...),
		ub:       append([]float64(nil), ub...),
		rows:     rows,
		watch:    make([][]int, n),
		changed:  make([]bool, n),
	}
	for i, r := range rows {
		w := r.Cols
		if len(w) > 2 {
			w = w[:2]
		}
		for _, c := range w {
			d.watch[c] = append(d.watch[c], i)
		}
	}
	return d
}

func (d *BoundDomain) NumCols() int { return len(d.lb) }
func (d *BoundDomain) LB(c int) float64 { return d.lb[c] }
func (d *BoundDomain) UB(c int) float64 { return d.ub[c] }

func (d *BoundDomain) ChangeBound(ch Change) {
	var old float64
	switch ch.Side {
	case Lower:
		old = d.lb[ch.Column]
		if ch.Bound <= old {
			return
		}
		d.lb[ch.Column] = ch.Bound
	case Upper:
		old = d.ub[ch.Column]
		if ch.Bound >= old {
			return
		}
		d.ub[ch.Column] = ch.Bound
	}
	d.stack = append(d.stack, ch)
	if !d.changed[ch.Column] {
		d.changed[ch.Column] = true
		d.changedCols = append(d.changedCols, ch.Column)
	}
	if d.lb[ch.Column] > d.ub[ch.Column]+1e-9 {
		d.infeasible = true
	}
}

func (d *BoundDomain) Infeasible() bool { return d.infeasible }

// Propagate rescans every row watching a recently changed column and
// tightens implied bounds on its other columns, repeating until the queue of
// changed columns drains (a fixed point) or infeasibility is detected. While
// the domain-change stack is empty (the root bounds, where no column has
// been marked changed yet) it first scans every row once, so a row the root
// bounds already violate is reported.
func (d *BoundDomain) Propagate() bool {
	if d.infeasible {
		return false
	}
	if len(d.stack) == 0 {
		for _, r := range d.rows {
			if !d.propagateRow(r) {
				d.infeasible = true
				return false
			}
		}
	}
	for len(d.changedCols) > 0 {
		col := d.changedCols[len(d.changedCols)-1]
		d.changedCols = d.changedCols[:len(d.changedCols)-1]
		d.changed[col] = false
		for _, ri := range d.watch[col] {
			if !d.propagateRow(d.rows[ri]) {
				d.infeasible = true
				return false
			}
		}
	}
	return true
}

// propagateRow tightens, for each column in r with a nonzero coefficient,
// the bound implied by the other columns' current extremes. Standard
// row-activity bound tightening: if fixing every other column to the extreme
// that minimizes its contribution still requires column j to move, that
// move is a valid implied bound.
func (d *BoundDomain) propagateRow(r Row) bool {
	minAct, maxAct := 0.0, 0.0
	for i, c := range r.Cols {
		a := r.Coeffs[i]
		if a >= 0 {
			minAct += a * d.lb[c]
			maxAct += a * d.ub[c]
		} else {
			minAct += a * d.ub[c]
			maxAct += a * d.lb[c]
		}
	}
	if minAct > r.RHS+1e-7 {
		return false
	}
	for i, c := range r.Cols {
		a := r.Coeffs[i]
		if a == 0 {
			continue
		}
		slack := r.RHS - (minAct - minContribution(a, d.lb[c], d.ub[c]))
		implied := slack / a
		if a > 0 {
			if implied < d.ub[c]-1e-9 {
				d.ChangeBound(Change{Column: c, Side: Upper, Bound: implied})
				if d.infeasible {
					return false
				}
			}
		} else {
			if implied > d.lb[c]+1e-9 {
				d.ChangeBound(Change{Column: c, Side: Lower, Bound: implied})
				if d.infeasible {
					return false
				}
			}
		}
	}
	return true
}

func minContribution(a, lb, ub float64) float64 {
	if a >= 0 {
		return a * lb
	}
	return a * ub
}

func (d *BoundDomain) Backtrack(depth int) {
	for len(d.stack) > depth {
		ch := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		switch ch.Side {
		case Lower:
			d.lb[ch.Column] = d.boundBefore(ch.Column, Lower, depth)
		case Upper:
			d.ub[ch.Column] = d.boundBefore(ch.Column, Upper, depth)
		}
	}
	d.infeasible = false
	for i := range d.lb {
		if d.lb[i] > d.ub[i]+1e-9 {
			d.infeasible = true
		}
	}
}

// boundBefore recomputes what column c's bound on side was immediately
// before the change being undone, by replaying the stack prefix. Reference
// implementations favor clarity over incremental bookkeeping here.
func (d *BoundDomain) boundBefore(col int, side BoundType, depth int) float64 {
	val := d.globalLB[col]
	if side == Upper {
		val = d.globalUB[col]
	}
	for i := 0; i < depth; i++ {
		ch := d.stack[i]
		if ch.Column == col && ch.Side == side {
			val = ch.Bound
		}
	}
	return val
}

func (d *BoundDomain) DomainChangeStack() []Change {
	return append([]Change(nil), d.stack...)
}

func (d *BoundDomain) ReducedDomainChangeStack(fromPos int) []Change {
	if fromPos >= len(d.stack) {
		return nil
	}
	return append([]Change(nil), d.stack[fromPos:]...)
}

func (d *BoundDomain) SetDomainChangeStack(changes []Change) {
	d.Backtrack(0)
	for _, ch := range changes {
		d.ChangeBound(ch)
	}
}

func (d *BoundDomain) BacktrackToGlobal() {
	d.Backtrack(0)
}

func (d *BoundDomain) IsBinary(c int) bool {
	return math.Abs(d.lb[c]) < 1e-9 && math.Abs(d.ub[c]-1) < 1e-9
}

func (d *BoundDomain) IsGlobalBinary(c int) bool {
	return math.Abs(d.globalLB[c]) < 1e-9 && math.Abs(d.globalUB[c]-1) < 1e-9
}

func (d *BoundDomain) ClearChangedCols() {
	for _, c := range d.changedCols {
		d.changed[c] = false
	}
	d.changedCols = d.changedCols[:0]
}

// Package expr provides combinators for building linear constraints over
// named variables, compiling the result into the column-indexed rows and
// bounds that domain.Domain and lprelax.Relaxation expect.
//
// It plays the same role bf played for gophersat: bf let callers combine
// named boolean variables with And/Or/Not and compiled the result to CNF
// clauses; expr lets callers combine named numeric variables with Sum/Scale
// and compiles the result to domain.Row constraints plus a column map.
package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opticore/bbsearch/domain"
)

// Expr is any linear combination of named variables.
type Expr interface {
	terms() map[string]float64
	String() string
}

// Var references a single declared variable with an implicit coefficient of 1.
func Var(name string) Expr {
	return term{name: name, coeff: 1}
}

// Scale multiplies an expression by a constant factor.
func Scale(coeff float64, e Expr) Expr {
	switch e := e.(type) {
	case term:
		return term{name: e.name, coeff: e.coeff * coeff}
	case sum:
		scaled := make(sum, 0, len(e))
		for _, t := range e {
			scaled = append(scaled, term{name: t.name, coeff: t.coeff * coeff})
		}
		return scaled
	default:
		panic("expr: unknown Expr implementation")
	}
}

type term struct {
	name  string
	coeff float64
}

func (t term) terms() map[string]float64 { return map[string]float64{t.name: t.coeff} }

func (t term) String() string {
	if t.coeff == 1 {
		return t.name
	}
	return fmt.Sprintf("%g*%s", t.coeff, t.name)
}

// Sum builds a linear combination out of subexpressions, merging repeated
// variables the same way bf's and() flattened nested conjunctions.
func Sum(subs ...Expr) Expr {
	acc := make(map[string]float64)
	var order []string
	for _, s := range subs {
		for name, coeff := range s.terms() {
			if _, seen := acc[name]; !seen {
				order = append(order, name)
			}
			acc[name] += coeff
		}
	}
	res := make(sum, 0, len(order))
	for _, name := range order {
		res = append(res, term{name: name, coeff: acc[name]})
	}
	return res
}

type sum []term

func (s sum) terms() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, t := range s {
		m[t.name] += t.coeff
	}
	return m
}

func (s sum) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

// relOp is the relational operator of a Constraint.
type relOp int

const (
	leq relOp = iota
	geq
	eq
)

// Constraint is a linear inequality or equality ready to be compiled.
type Constraint struct {
	lhs Expr
	op  relOp
	rhs float64
}

// AtMost builds the constraint lhs <= rhs.
func AtMost(lhs Expr, rhs float64) Constraint {
	return Constraint{lhs: lhs, op: leq, rhs: rhs}
}

// AtLeast builds the constraint lhs >= rhs.
func AtLeast(lhs Expr, rhs float64) Constraint {
	return Constraint{lhs: lhs, op: geq, rhs: rhs}
}

// Equal builds the constraint lhs == rhs.
func Equal(lhs Expr, rhs float64) Constraint {
	return Constraint{lhs: lhs, op: eq, rhs: rhs}
}

func (c Constraint) String() string {
	sym := map[relOp]string{leq: "<=", geq: ">=", eq: "="}[c.op]
	return fmt.Sprintf("%s %s %g", c.lhs.String(), sym, c.rhs)
}

// varKind distinguishes how a declared variable's bounds default.
type varKind int

const (
	kindBinary varKind = iota
	kindContinuous
)

// decl is a variable declaration gathered before compilation.
type decl struct {
	name     string
	kind     varKind
	lb, ub   float64
}

// Builder accumulates variable declarations and constraints before Compile.
// It plays the role bf's vars/cnf pair played for a Formula: a scratch
// structure that assigns each named variable a stable column index.
type Builder struct {
	decls       []decl
	declared    map[string]bool
	constraints []Constraint
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{declared: make(map[string]bool)}
}

// Binary declares a 0/1 variable. Declaring the same name twice panics, the
// same way bf panics on an unbound variable at Eval time: a model author
// error, not a runtime condition to recover from.
func (b *Builder) Binary(name string) Expr {
	b.declare(decl{name: name, kind: kindBinary, lb: 0, ub: 1})
	return Var(name)
}

// Continuous declares a variable bounded by [lb, ub].
func (b *Builder) Continuous(name string, lb, ub float64) Expr {
	b.declare(decl{name: name, kind: kindContinuous, lb: lb, ub: ub})
	return Var(name)
}

func (b *Builder) declare(d decl) {
	if b.declared[d.name] {
		panic(fmt.Sprintf("expr: variable %q declared twice", d.name))
	}
	b.declared[d.name] = true
	b.decls = append(b.decls, d)
}

// Require adds a constraint to be compiled alongside the declared variables.
func (b *Builder) Require(c Constraint) {
	b.constraints = append(b.constraints, c)
}

// Model is the compiled result: a column-indexed bound vector pair and the
// domain.Row set ready to be handed to domain.NewBoundDomain.
type Model struct {
	NumCols int
	LB, UB  []float64
	Rows    []domain.Row
	Index   map[string]int
}

// ColumnOf returns the column index assigned to a declared variable name.
func (m *Model) ColumnOf(name string) (int, bool) {
	c, ok := m.Index[name]
	return c, ok
}

// Compile assigns a column to every declared variable, in declaration order
// (mirroring bf's vars.litValue, which assigns indices the first time a
// variable is referenced), and lowers every constraint into a domain.Row.
// An equality constraint compiles to two rows, <= and >= its negation; the
// first carries IsEquality, which propagation does not read, so the two
// explicit rows are what make both directions propagate.
func (b *Builder) Compile() (*Model, error) {
	index := make(map[string]int, len(b.decls))
	lb := make([]float64, len(b.decls))
	ub := make([]float64, len(b.decls))
	for i, d := range b.decls {
		index[d.name] = i
		lb[i] = d.lb
		ub[i] = d.ub
	}

	rows := make([]domain.Row, 0, len(b.constraints))
	for _, c := range b.constraints {
		row, err := lowerConstraint(c, index)
		if err != nil {
			return nil, err
		}
		switch c.op {
		case leq:
			rows = append(rows, row)
		case geq:
			rows = append(rows, negateRow(row))
		case eq:
			eqRow := row
			eqRow.IsEquality = true
			rows = append(rows, eqRow, negateRow(row))
		}
	}

	return &Model{
		NumCols: len(b.decls),
		LB:      lb,
		UB:      ub,
		Rows:    rows,
		Index:   index,
	}, nil
}

func lowerConstraint(c Constraint, index map[string]int) (domain.Row, error) {
	names := make([]string, 0, len(c.lhs.terms()))
	for name := range c.lhs.terms() {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic column ordering across repeated compiles
	termsByName := c.lhs.terms()

	cols := make([]int, 0, len(names))
	coeffs := make([]float64, 0, len(names))
	for _, name := range names {
		col, ok := index[name]
		if !ok {
			return domain.Row{}, fmt.Errorf("expr: constraint references undeclared variable %q", name)
		}
		cols = append(cols, col)
		coeffs = append(coeffs, termsByName[name])
	}
	return domain.Row{Cols: cols, Coeffs: coeffs, RHS: c.rhs}, nil
}

func negateRow(r domain.Row) domain.Row {
	coeffs := make([]float64, len(r.Coeffs))
	for i, v := range r.Coeffs {
		coeffs[i] = -v
	}
	return domain.Row{Cols: append([]int(nil), r.Cols...), Coeffs: coeffs, RHS: -r.RHS}
}

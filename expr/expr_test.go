package expr

import (
	"testing"
)

func TestCompileAssignsStableColumns(t *testing.T) {
	b := NewBuilder()
	x := b.Binary("x")
	y := b.Binary("y")
	b.Require(AtMost(Sum(x, y), 1))

	m, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if m.NumCols != 2 {
		t.Fatalf("expected 2 columns, got %d", m.NumCols)
	}
	cx, ok := m.ColumnOf("x")
	if !ok || cx != 0 {
		t.Fatalf("expected x at column 0, got %d (ok=%v)", cx, ok)
	}
	cy, ok := m.ColumnOf("y")
	if !ok || cy != 1 {
		t.Fatalf("expected y at column 1, got %d (ok=%v)", cy, ok)
	}
	if len(m.Rows) != 1 {
		t.Fatalf("expected a single row for one AtMost constraint, got %d", len(m.Rows))
	}
	if m.Rows[0].RHS != 1 {
		t.Fatalf("expected RHS 1, got %v", m.Rows[0].RHS)
	}
}

func TestEqualityCompilesToTwoRows(t *testing.T) {
	b := NewBuilder()
	x := b.Binary("x")
	y := b.Binary("y")
	b.Require(Equal(Sum(x, Scale(-1, y)), 0))

	m, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("expected equality to compile to 2 rows, got %d", len(m.Rows))
	}
	if !m.Rows[0].IsEquality {
		t.Fatalf("expected the first row to carry IsEquality")
	}
}

func TestUndeclaredVariableFailsCompile(t *testing.T) {
	b := NewBuilder()
	b.Require(AtMost(Var("ghost"), 1))
	if _, err := b.Compile(); err == nil {
		t.Fatalf("expected Compile to fail on an undeclared variable")
	}
}

func TestDuplicateDeclarationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected declaring the same name twice to panic")
		}
	}()
	b := NewBuilder()
	b.Binary("x")
	b.Binary("x")
}

func TestSumMergesRepeatedVariables(t *testing.T) {
	x := Var("x")
	s := Sum(x, x).(sum)
	if len(s) != 1 || s[0].coeff != 2 {
		t.Fatalf("expected Sum(x, x) to merge into a single term with coeff 2, got %+v", s)
	}
}

// Command bbsearch runs a small demonstration 0/1 knapsack search through
// the branch-and-bound driver, the same role gophersat's own main.go played
// for the SAT solver: parse a problem, run it, print the result.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opticore/bbsearch/conflict"
	"github.com/opticore/bbsearch/domain"
	"github.com/opticore/bbsearch/expr"
	"github.com/opticore/bbsearch/limits"
	"github.com/opticore/bbsearch/lprelax"
	"github.com/opticore/bbsearch/nodequeue"
	"github.com/opticore/bbsearch/pseudocost"
	"github.com/opticore/bbsearch/search"
)

var (
	verbose    bool
	maxNodes   int
	capacity   float64
	weights    []float64
	values     []float64
	rootCmd    = &cobra.Command{
		Use:   "bbsearch",
		Short: "Run a demonstration 0/1 knapsack problem through the branch-and-bound search driver",
		RunE:  runKnapsack,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&verbose, "verbose", false, "sets verbose (debug-level) logging on")
	flags.IntVar(&maxNodes, "max-nodes", 10000, "node budget before the search gives up")
	flags.Float64Var(&capacity, "capacity", 10, "knapsack capacity")
	flags.Float64SliceVar(&weights, "weights", []float64{2, 3, 4, 5}, "item weights")
	flags.Float64SliceVar(&values, "values", []float64{3, 4, 5, 6}, "item values")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runKnapsack(cmd *cobra.Command, args []string) error {
	if len(weights) != len(values) {
		return fmt.Errorf("weights and values must have the same length, got %d and %d", len(weights), len(values))
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	b := expr.NewBuilder()
	items := make([]expr.Expr, len(weights))
	names := make([]string, len(weights))
	for i := range weights {
		names[i] = fmt.Sprintf("item%d", i)
		items[i] = b.Binary(names[i])
	}
	weighted := make([]expr.Expr, len(weights))
	for i, w := range weights {
		weighted[i] = expr.Scale(w, items[i])
	}
	b.Require(expr.AtMost(expr.Sum(weighted...), capacity))

	model, err := b.Compile()
	if err != nil {
		return fmt.Errorf("could not compile knapsack model: %v", err)
	}

	// The driver always minimizes; maximize value by minimizing its negation.
	obj := make([]float64, model.NumCols)
	for i, v := range values {
		col, _ := model.ColumnOf(names[i])
		obj[col] = -v
	}

	d := domain.NewBoundDomain(model.LB, model.UB, model.Rows)
	relax := lprelax.NewBoundedLP(obj, model.Rows, d)
	ctx := &search.Context{
		Relaxation: relax,
		Domain:     d,
		Pseudocost: pseudocost.NewEWMAStore(model.NumCols),
		Conflicts:  conflict.NewRowPool(),
		Cuts:       conflict.NewSimpleCutPool(),
		CutGen:     conflict.NoopGenerator{},
		Queue:      nodequeue.NewBestBound(),
		Limits:     limits.NewBudget().WithMaxNodes(maxNodes),
		Log:        log.WithField("cmd", "bbsearch"),
		Rules:      []search.ChildRule{search.RuleBestPseudocost, search.RuleUp},
	}

	drv, err := search.NewDriver(ctx)
	if err != nil {
		return fmt.Errorf("could not start search: %v", err)
	}
	drv.SolveDepthFirst(maxNodes)

	obj0, ok := drv.Incumbent()
	if !ok {
		fmt.Println("no feasible packing found")
		return nil
	}
	primal, _ := drv.IncumbentSolution()
	fmt.Printf("best value: %g\n", -obj0)
	fmt.Printf("nodes explored: %d\n", drv.Stats().NbNodes)

	selected := make([]string, 0, len(names))
	for i, name := range names {
		col, _ := model.ColumnOf(name)
		if col < len(primal) && primal[col] > 0.5 {
			selected = append(selected, fmt.Sprintf("%s(w=%g,v=%g)", name, weights[i], values[i]))
		}
	}
	sort.Strings(selected)
	fmt.Println("items packed:", selected)
	return nil
}

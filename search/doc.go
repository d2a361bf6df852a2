/*
Package search drives a mixed-integer-programming branch-and-bound search
over external collaborators: a domain for variable bounds, an LP relaxation
oracle, a pseudocost store for branching decisions, a shared priority queue
of open nodes, and optional symmetry and conflict-pool collaborators.

Describing a problem

A Context bundles every collaborator the driver needs:

    ctx := &search.Context{
        Relaxation: lprelax.NewBoundedLP(objective, rows, dom),
        Domain:     dom,
        Pseudocost: pseudocost.NewEWMAStore(numCols),
        Conflicts:  conflict.NewRowPool(),
        Cuts:       conflict.NewSimpleCutPool(),
        Queue:      nodequeue.NewBestBound(),
        Limits:     limits.NewBudget().WithMaxNodes(10000),
        Rules:      []search.ChildRule{search.RuleBestPseudocost, search.RuleUp},
    }

Running the search

A Driver owns one node stack over a Context. Solving depth-first, diving
until a leaf and backtracking (plunging when possible) until the tree is
exhausted or a limit fires:

    drv, err := search.NewDriver(ctx)
    if err != nil {
        // handle
    }
    drv.SolveDepthFirst(-1) // no backtrack budget, rely on ctx.Limits

Reading the result

    obj, ok := drv.Incumbent()
    if !ok {
        // infeasible: the whole tree closed without a feasible leaf
    }
    primal, _ := drv.IncumbentSolution()
    stats := drv.Stats() // node/backtrack/plunge counts for diagnostics
*/
package search

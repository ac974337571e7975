package simplex

import "math"

// changeB updates the right-hand side of constraint row k to newBk (given
// in the same external units the Problem was originally built with) and
// restores a feasible optimum without re-deriving the tableau from scratch
// (§4.4).
//
// The update is applied via the identity column recorded for row k at its
// creation: every row's RHS receives delta times that row's entry in the
// identity column, which is exactly the elementary row operation that a
// from-scratch canonicalisation followed by the same sequence of pivots
// would have applied. Row k's own RHS may go negative, breaking primal
// feasibility (invariant 1); dual simplex then restores it.
func (t *tableau) changeB(k int, newBk float64) error {
	if k < 0 || k >= t.m {
		return &DataError{Field: "k", Reason: "row index out of range"}
	}

	target := t.orientation[k] * newBk
	delta := target - t.rhsTarget[k]
	t.rhsTarget[k] = target

	idCol := t.identityCol[k]
	for i := range t.rows {
		row := t.rows[i]
		row[len(row)-1] += delta * row[idCol]
	}

	if err := t.dualSimplex(); err != nil {
		return err
	}
	// A dual-simplex restoration keeps every reduced cost nonnegative, so
	// re-running the primal loop is a no-op unless roundoff has left some
	// reduced cost below -EPSILON.
	if err := t.primalSimplex(); err != nil {
		return err
	}
	return t.checkArtificialFeasibility()
}

// dualSimplex restores primal feasibility (nonnegative RHS on every row)
// while preserving dual feasibility (nonnegative reduced costs), per §4.4.
// It assumes the tableau is currently dual feasible, which holds whenever
// it is entered directly after a successful primal optimisation.
func (t *tableau) dualSimplex() error {
	obj := t.rows[t.m]

	for iter := 0; iter < t.maxIter; iter++ {
		leave := -1
		mostNeg := -EPSILON
		for i := 0; i < t.m; i++ {
			if v := t.rhs(i); v < mostNeg {
				mostNeg = v
				leave = i
			}
		}
		if leave == -1 {
			return nil
		}

		lrow := t.rows[leave]
		enter := -1
		bestRatio := math.Inf(1)
		for j := 0; j < t.numCols; j++ {
			a := lrow[j]
			if a >= -EPSILON {
				continue
			}
			ratio := obj[j] / -a
			switch {
			case ratio < bestRatio-EPSILON:
				bestRatio = ratio
				enter = j
			case ratio < bestRatio+EPSILON && (enter == -1 || j < enter):
				bestRatio = math.Min(bestRatio, ratio)
				enter = j
			}
		}
		if enter == -1 {
			return &InfeasibleError{Reason: "dual simplex found no entering column to restore feasibility"}
		}

		t.pivot(leave, enter)
	}

	return &DifficultError{Reason: "iteration budget exhausted during dual simplex"}
}

// addConstraint appends a new row a·x {ineq} bi to the tableau, expressed
// over the original n decision variables, and restores optimality (§4.5).
//
// The row is expanded to structural columns (splitting free variables the
// same way canonicalisation did), reduced modulo the current basis so its
// basic columns read 0, given a fresh slack/surplus/artificial column, and
// then driven back to optimal: by dual simplex if it came out primal
// infeasible (RHS < 0) with no artificial, and in every case by a final
// primal cleanup pass (which also handles the artificial-column big-M
// bookkeeping).
func (t *tableau) addConstraint(a []float64, ineq Inequality, bi float64) error {
	if len(a) != t.n {
		return &DataError{Field: "a", Reason: "length does not match the problem's variable count"}
	}

	row := make([]float64, t.structuralCount, t.numCols+1)
	for j := 0; j < t.n; j++ {
		row[j] = a[j]
	}
	for j := 0; j < t.n; j++ {
		if k := t.freeNegCol[j]; k != -1 {
			row[k] = -a[j]
		}
	}

	orient := 1.0
	if bi < 0 {
		orient = -1
		bi = -bi
		for j := range row {
			row[j] = -row[j]
		}
		ineq = ineq.Invert()
	}
	ineq = ineq.nonStrict()

	for len(row) < t.numCols {
		row = append(row, 0)
	}

	newRow := t.m
	t.rows = append(t.rows, nil)
	copy(t.rows[newRow+1:], t.rows[newRow:len(t.rows)-1])
	t.rows[newRow] = row
	t.m++

	// newRow is always the new last constraint row, so these parallel,
	// per-row arrays simply grow by one.
	t.basis = append(t.basis, 0)
	t.identityCol = append(t.identityCol, 0)
	t.orientation = append(t.orientation, orient)
	t.rhsTarget = append(t.rhsTarget, bi)
	t.rows[newRow] = append(t.rows[newRow], 0) // RHS placeholder, so every row's last entry is its RHS before aux columns are inserted.

	var auxCol int
	artificial := false
	switch ineq {
	case LQ:
		auxCol = t.appendColumnLive(newRow, 1, false)
	case GE:
		t.appendColumnLive(newRow, -1, false)
		auxCol = t.appendColumnLive(newRow, 1, true)
		artificial = true
	case EQ:
		auxCol = t.appendColumnLive(newRow, 1, true)
		artificial = true
	}
	t.basis[newRow] = auxCol
	t.identityCol[newRow] = auxCol
	t.isBasicCol[auxCol] = true

	t.setRHS(newRow, bi)

	// Reduce the new row modulo the current basis: every other basic
	// column must read 0 in this row, exactly as it does everywhere else.
	for i := 0; i < t.m; i++ {
		if i == newRow {
			continue
		}
		col := t.basis[i]
		if col == auxCol {
			continue
		}
		t.eliminateRow(newRow, i, col)
	}

	if artificial {
		t.rows[t.m][auxCol] = t.bigM
		t.eliminateRow(t.m, newRow, auxCol)
		return t.recover()
	}

	if t.rhs(newRow) < -EPSILON {
		if err := t.dualSimplex(); err != nil {
			return err
		}
	}
	return t.recover()
}

// appendColumnLive appends a new column to a tableau that has already
// finished canonicalisation, growing every row (including rows other than
// target, which receive 0) and recording a single nonzero entry at target.
func (t *tableau) appendColumnLive(target int, value float64, artificial bool) int {
	col := t.numCols
	for i := range t.rows {
		row := t.rows[i]
		var v float64
		if i == target {
			v = value
		}
		// Insert before the RHS entry (the last element), if one is present.
		if len(row) > 0 {
			row = append(row, 0)
			copy(row[col+1:], row[col:len(row)-1])
			row[col] = v
			t.rows[i] = row
		}
	}
	t.numCols++
	t.isArtificialCol = append(t.isArtificialCol, artificial)
	t.isBasicCol = append(t.isBasicCol, false)
	return col
}

// recover drives the tableau back to optimal after addConstraint's row
// insertion, then verifies artificial feasibility.
func (t *tableau) recover() error {
	if err := t.primalSimplex(); err != nil {
		return err
	}
	return t.checkArtificialFeasibility()
}

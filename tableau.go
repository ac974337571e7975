package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// tableau is the mutable revised-simplex tableau. It always minimises
// internally; Maximize problems are handled by negating C once at
// canonicalisation time and recomputing fx from the original C on extract.
//
// Row m (the last row) is the objective row. Row i < m corresponds to the
// i-th constraint, in creation order: the first originalConstraintCount
// rows come from canonicalising the Problem, and any further rows are
// appended later by addConstraint. Rows are never reordered or removed, so
// a row's index is a stable identity across the tableau's lifetime.
//
// The objective row stores -z (the negative of the current internal
// minimised objective) at its RHS entry; reduced costs (entries in
// non-RHS columns) are read directly, independent of that sign.
type tableau struct {
	rows [][]float64 // m+1 rows; each row is numCols structural/aux columns followed by one RHS entry.

	basis      []int  // basis[i] = column index basic in row i, length m.
	isBasicCol []bool // length numCols.
	isArtificialCol []bool // length numCols.

	// identityCol[i] is the column that held the standard basis vector e_i
	// across every row (including the objective row) immediately after
	// canonicalisation/append of row i. It lets changeB propagate an RHS
	// delta through every row without re-deriving the basis inverse.
	identityCol []int

	// orientation[i] is the sign applied to row i, at the time row i was
	// created, to make its initial RHS nonnegative. rhsTarget[i] is the
	// current internal (post-orientation) right-hand-side value the row
	// was last set to, used to compute deltas for changeB.
	orientation []float64
	rhsTarget   []float64

	m       int // number of constraint rows (excludes the objective row); grows via addConstraint.
	numCols int // number of data columns (excludes RHS); grows via addConstraint.

	n               int   // original decision variable count.
	freeNegCol      []int // length n; -1 if variable i is nonnegative, else the column holding its negative part.
	structuralCount int   // n plus the number of free-variable negative-part columns.

	bigM    float64
	maxIter int
}

func (t *tableau) rhs(i int) float64 {
	row := t.rows[i]
	return row[len(row)-1]
}

func (t *tableau) setRHS(i int, v float64) {
	row := t.rows[i]
	row[len(row)-1] = v
}

// newTableau canonicalises a validated Problem into a tableau and solves
// its initial relaxation (§4.2, §4.3).
func newTableau(p *Problem) (*tableau, error) {
	n := p.Cols()
	m := p.Rows()

	objSign := 1.0
	if p.Objective == Maximize {
		objSign = -1.0
	}

	freeNegCol := make([]int, n)
	structuralCount := n
	for i := range freeNegCol {
		freeNegCol[i] = -1
	}
	for i, normalized := range p.NormalizedX {
		if !normalized {
			freeNegCol[i] = structuralCount
			structuralCount++
		}
	}

	internalC := make([]float64, structuralCount)
	for j := 0; j < n; j++ {
		internalC[j] = objSign * p.C[j]
	}
	for j := 0; j < n; j++ {
		if k := freeNegCol[j]; k != -1 {
			internalC[k] = -internalC[j]
		}
	}

	ineqs := make([]Inequality, m)
	copy(ineqs, p.Inequalities)

	rows := make([][]float64, m+1)
	for i := 0; i < m; i++ {
		row := make([]float64, structuralCount)
		for j := 0; j < n; j++ {
			row[j] = p.A.At(i, j)
		}
		for j := 0; j < n; j++ {
			if k := freeNegCol[j]; k != -1 {
				row[k] = -row[j]
			}
		}
		rows[i] = row
	}
	rows[m] = append([]float64(nil), internalC...)

	orientation := make([]float64, m)
	rhsTarget := make([]float64, m)
	for i := 0; i < m; i++ {
		bi := p.B[i]
		orientation[i] = 1
		if bi < 0 {
			orientation[i] = -1
			bi = -bi
			for j := range rows[i] {
				rows[i][j] = -rows[i][j]
			}
			ineqs[i] = ineqs[i].Invert()
		}
		rhsTarget[i] = bi
		ineqs[i] = ineqs[i].nonStrict()
	}

	numCols := structuralCount
	isArtificialCol := make([]bool, 0, structuralCount)
	for range make([]int, structuralCount) {
		isArtificialCol = append(isArtificialCol, false)
	}

	appendColumn := func(entries map[int]float64, artificial bool) int {
		col := numCols
		for i := 0; i <= m; i++ {
			rows[i] = append(rows[i], entries[i])
		}
		numCols++
		isArtificialCol = append(isArtificialCol, artificial)
		return col
	}

	basis := make([]int, m)
	identityCol := make([]int, m)

	normAbsB := maxAbs(rhsTarget)
	normAbsC := maxAbs(internalC)
	bigM := bigMSentinel(normAbsC, normAbsB)

	for i := 0; i < m; i++ {
		switch ineqs[i] {
		case LQ:
			col := appendColumn(map[int]float64{i: 1}, false)
			basis[i] = col
			identityCol[i] = col
		case GE:
			appendColumn(map[int]float64{i: -1}, false)
			col := appendColumn(map[int]float64{i: 1}, true)
			basis[i] = col
			identityCol[i] = col
		case EQ:
			col := appendColumn(map[int]float64{i: 1}, true)
			basis[i] = col
			identityCol[i] = col
		}
	}

	for i := 0; i < m; i++ {
		rows[i] = append(rows[i], rhsTarget[i])
	}
	rows[m] = append(rows[m], 0)

	isBasicCol := make([]bool, numCols)
	for i := 0; i < m; i++ {
		isBasicCol[basis[i]] = true
	}
	for i := 0; i < m; i++ {
		if isArtificialCol[basis[i]] {
			rows[m][basis[i]] = bigM
		}
	}

	t := &tableau{
		rows:             rows,
		basis:            basis,
		isBasicCol:       isBasicCol,
		isArtificialCol:  isArtificialCol,
		identityCol:      identityCol,
		orientation:      orientation,
		rhsTarget:        rhsTarget,
		m:                m,
		numCols:          numCols,
		n:                n,
		freeNegCol:       freeNegCol,
		structuralCount:  structuralCount,
		bigM:             bigM,
		maxIter:          50 * (m + n),
	}

	// Normalise the objective row so every basic artificial has reduced
	// cost 0 (invariant 2): subtract bigM times each artificial-basic row.
	for i := 0; i < m; i++ {
		if t.isArtificialCol[t.basis[i]] {
			t.eliminateRow(m, i, t.basis[i])
		}
	}

	if err := t.primalSimplex(); err != nil {
		return nil, err
	}
	if err := t.checkArtificialFeasibility(); err != nil {
		return nil, err
	}

	return t, nil
}

// bigMSentinel picks a finite big-M penalty proportional to the magnitudes
// of C and B (§9), large enough to dominate any feasible objective value.
func bigMSentinel(normAbsC, normAbsB float64) float64 {
	scale := (normAbsC + 1) * (normAbsB + 1)
	return math.Max(1e7, 1e4*scale)
}

// eliminateRow subtracts coeff * rows[source] from rows[target], where
// coeff is rows[target][col]. Used to zero a column in target using a row
// in which that column is known to equal 1.
func (t *tableau) eliminateRow(target, source, col int) {
	factor := t.rows[target][col]
	if factor == 0 {
		return
	}
	trow := t.rows[target]
	srow := t.rows[source]
	for j := range trow {
		trow[j] -= factor * srow[j]
	}
}

// pivot performs Gauss-Jordan elimination around (r, s): scales row r so
// column s becomes 1, then eliminates column s from every other row
// including the objective row.
func (t *tableau) pivot(r, s int) {
	prow := t.rows[r]
	pivotVal := prow[s]
	for j := range prow {
		prow[j] /= pivotVal
	}
	for i := range t.rows {
		if i == r {
			continue
		}
		t.eliminateRow(i, r, s)
	}

	old := t.basis[r]
	t.isBasicCol[old] = false
	t.isBasicCol[s] = true
	t.basis[r] = s
}

// primalSimplex runs the revised-simplex main loop (§4.3) to optimality,
// using Bland's rule (smallest index on ties) for both entering and
// leaving selection to guarantee termination under degeneracy.
func (t *tableau) primalSimplex() error {
	obj := t.rows[t.m]

	for iter := 0; iter < t.maxIter; iter++ {
		enter := -1
		mostNeg := -EPSILON
		for j := 0; j < t.numCols; j++ {
			if obj[j] < mostNeg {
				mostNeg = obj[j]
				enter = j
			}
		}
		if enter == -1 {
			return nil
		}

		leave := -1
		bestRatio := math.Inf(1)
		for i := 0; i < t.m; i++ {
			v := t.rows[i][enter]
			if v <= EPSILON {
				continue
			}
			ratio := t.rhs(i) / v
			switch {
			case ratio < bestRatio-EPSILON:
				bestRatio = ratio
				leave = i
			case ratio < bestRatio+EPSILON && (leave == -1 || t.basis[i] < t.basis[leave]):
				bestRatio = math.Min(bestRatio, ratio)
				leave = i
			}
		}
		if leave == -1 {
			return &UnboundedError{Column: enter}
		}

		t.pivot(leave, enter)
	}

	return &DifficultError{Reason: "iteration budget exhausted during primal simplex"}
}

// checkArtificialFeasibility implements invariant 3: if any artificial
// column is basic with a strictly positive value, the problem is
// infeasible.
func (t *tableau) checkArtificialFeasibility() error {
	for i := 0; i < t.m; i++ {
		col := t.basis[i]
		if t.isArtificialCol[col] && t.rhs(i) > EPSILON {
			return &InfeasibleError{Reason: "an artificial variable remains positive at optimality"}
		}
	}
	return nil
}

// answer reads off the Answer from the current tableau state, using the
// original (pre-canonicalisation) Problem to recompute fx (§4.3, §4.7).
func (t *tableau) answer(p *Problem) Answer {
	raw := make([]float64, t.structuralCount)
	for i := 0; i < t.m; i++ {
		col := t.basis[i]
		if col < t.structuralCount {
			raw[col] = t.rhs(i)
		}
	}

	x := make([]float64, t.n)
	for i := 0; i < t.n; i++ {
		x[i] = raw[i]
		if neg := t.freeNegCol[i]; neg != -1 {
			x[i] -= raw[neg]
		}
	}

	fx := floats.Dot(p.C, x)
	return Answer{X: x, FX: fx}
}

// copy deep-clones the tableau so mutations on the clone never affect the
// source (used by Simplex.Copy and the discrete driver's per-node state).
func (t *tableau) copy() *tableau {
	cp := &tableau{
		m:               t.m,
		numCols:         t.numCols,
		n:               t.n,
		structuralCount: t.structuralCount,
		bigM:            t.bigM,
		maxIter:         t.maxIter,
	}

	cp.rows = make([][]float64, len(t.rows))
	for i, row := range t.rows {
		cp.rows[i] = append([]float64(nil), row...)
	}
	cp.basis = append([]int(nil), t.basis...)
	cp.isBasicCol = append([]bool(nil), t.isBasicCol...)
	cp.isArtificialCol = append([]bool(nil), t.isArtificialCol...)
	cp.identityCol = append([]int(nil), t.identityCol...)
	cp.orientation = append([]float64(nil), t.orientation...)
	cp.rhsTarget = append([]float64(nil), t.rhsTarget...)
	cp.freeNegCol = append([]int(nil), t.freeNegCol...)

	return cp
}

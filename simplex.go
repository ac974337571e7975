package simplex

// Simplex is a solved linear program together with the tableau state that
// produced it. A Simplex is safe to read concurrently but its warm-restart
// methods (ChangeB, AddConstraint) mutate shared tableau state and must not
// be called concurrently with each other or with Solve on the same
// receiver; use Copy to give concurrent callers independent instances
// (§4.6, where the branch-and-bound driver does exactly this per node).
type Simplex struct {
	problem *Problem
	tab     *tableau
}

// Solve returns the current optimal Answer. The LP was already solved by
// Build, ChangeB, or AddConstraint, so Solve only reads off the result; it
// never mutates the tableau.
func (s *Simplex) Solve() (Answer, error) {
	return s.tab.answer(s.problem), nil
}

// ChangeB updates the right-hand side of constraint row k to v and
// re-solves via warm restart (§4.4). The resulting Answer is equivalent to
// building a fresh Simplex with B[k] set to v, though the internal path
// taken to reach it may differ.
func (s *Simplex) ChangeB(k int, v float64) (Answer, error) {
	if err := s.tab.changeB(k, v); err != nil {
		return Answer{}, err
	}
	s.problem.B[k] = v
	return s.tab.answer(s.problem), nil
}

// AddConstraint appends a·x {ineq} b as a new row, expressed over the
// original decision variables, and re-solves via warm restart (§4.5).
func (s *Simplex) AddConstraint(a []float64, ineq Inequality, b float64) (Answer, error) {
	if err := s.tab.addConstraint(a, ineq, b); err != nil {
		return Answer{}, err
	}
	s.problem.A = appendProblemRow(s.problem.A, a)
	s.problem.B = append(s.problem.B, b)
	s.problem.Inequalities = append(s.problem.Inequalities, ineq)
	return s.tab.answer(s.problem), nil
}

// Copy returns an independent Simplex sharing no mutable state with s, so
// the two can be driven concurrently (ChangeB/AddConstraint/Solve on one
// never affects the other).
func (s *Simplex) Copy() *Simplex {
	return &Simplex{
		problem: s.problem.clone(),
		tab:     s.tab.copy(),
	}
}

// Problem returns the Problem this Simplex was built from, including any
// rows appended since via AddConstraint.
func (s *Simplex) Problem() *Problem {
	return s.problem
}

// Package simplex solves linear programs and mixed-integer linear programs
// over real-valued decision vectors.
//
// A Problem is built with Builder, minimizing or maximizing a linear
// objective subject to a finite set of linear constraints tagged EQ, LQ
// (<=), LE (<), GE (>=) or GR (>). Build converts it into a Simplex, a
// revised-simplex tableau that can be solved, then mutated in place and
// re-optimised from its previous basis via ChangeB and AddConstraint
// without restarting from scratch.
//
// DiscreteSimplex layers parallel branch-and-bound over a Simplex to enforce
// per-variable membership in a discrete set (integers by default).
//
//	b := simplex.NewBuilder()
//	b.C([]float64{100, 120}).B([]float64{15000, 12000, 5000})
//	b.A(mat.NewDense(3, 2, []float64{50, 75, 60, 30, 10, 25}))
//	b.Inequalities(simplex.GE, simplex.GE, simplex.LQ)
//	s, err := b.Build()
//	ans, err := s.Solve()
package simplex

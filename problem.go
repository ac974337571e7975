package simplex

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Objective selects whether a Problem's objective is minimized or
// maximized. The zero value is Minimize.
type Objective int

const (
	Minimize Objective = iota
	Maximize
)

func (o Objective) String() string {
	if o == Maximize {
		return "MAX"
	}
	return "MIN"
}

// MarshalJSON renders an Objective as "MIN" or "MAX", matching the JSON
// fixture schema's functionType field.
func (o Objective) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON parses "MIN" or "MAX".
func (o *Objective) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "MAX":
		*o = Maximize
	case "MIN":
		*o = Minimize
	default:
		return fmt.Errorf("simplex: invalid functionType %q", s)
	}
	return nil
}

// Inequality tags a single constraint row. LE and GR are the strict variants
// of LQ and GE; the LP relaxation treats them identically to their
// non-strict counterparts (see nonStrict below) but the tag itself
// round-trips through Invert and the
// JSON fixture schema.
type Inequality int

const (
	EQ Inequality = iota // =
	LQ                   // <=
	LE                   // <  (relaxed to <= inside the tableau)
	GE                   // >=
	GR                   // >  (relaxed to >= inside the tableau)
)

func (t Inequality) String() string {
	switch t {
	case EQ:
		return "="
	case LQ:
		return "<="
	case LE:
		return "<"
	case GE:
		return ">="
	case GR:
		return ">"
	default:
		return "?"
	}
}

// Invert returns the tag that results from multiplying a row by -1: EQ<->EQ,
// LQ<->GE, LE<->GR. Invert is an involution: Invert(Invert(t)) == t for every
// tag.
func (t Inequality) Invert() Inequality {
	switch t {
	case LQ:
		return GE
	case GE:
		return LQ
	case LE:
		return GR
	case GR:
		return LE
	default:
		return EQ
	}
}

// nonStrict maps a strict tag to its non-strict counterpart, used when
// canonicalising into the tableau (§4.2: the strict/non-strict distinction
// is not observed by the relaxation).
func (t Inequality) nonStrict() Inequality {
	switch t {
	case LE:
		return LQ
	case GR:
		return GE
	default:
		return t
	}
}

// MarshalJSON renders an Inequality as its symbol ("=", "<=", "<", ">=",
// ">"), per the JSON fixture schema (§6).
func (t Inequality) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses an inequality symbol.
func (t *Inequality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "=":
		*t = EQ
	case "<=":
		*t = LQ
	case "<":
		*t = LE
	case ">=":
		*t = GE
	case ">":
		*t = GR
	default:
		return fmt.Errorf("simplex: invalid inequality symbol %q", s)
	}
	return nil
}

// Problem is the immutable description of a linear program: A*x {<=,=,>=} B
// subject to an objective sense over C, with per-variable sign
// normalisation flags.
type Problem struct {
	A            *mat.Dense
	B            []float64
	C            []float64
	Inequalities []Inequality
	Objective    Objective
	NormalizedX  []bool
}

// Rows reports the number of constraint rows (m).
func (p *Problem) Rows() int { return len(p.B) }

// Cols reports the number of decision variables (n).
func (p *Problem) Cols() int { return len(p.C) }

// clone returns a deep copy of p, so mutating the copy (or its Simplex)
// never affects p.
func (p *Problem) clone() *Problem {
	return &Problem{
		A:            mat.DenseCopyOf(p.A),
		B:            append([]float64(nil), p.B...),
		C:            append([]float64(nil), p.C...),
		Inequalities: append([]Inequality(nil), p.Inequalities...),
		Objective:    p.Objective,
		NormalizedX:  append([]bool(nil), p.NormalizedX...),
	}
}

// appendProblemRow returns a new matrix equal to a with row appended below
// its existing rows.
func appendProblemRow(a *mat.Dense, row []float64) *mat.Dense {
	m, n := a.Dims()
	out := mat.NewDense(m+1, n, nil)
	out.Copy(a)
	for j, v := range row {
		out.Set(m, j, v)
	}
	return out
}

// Builder accumulates a Problem fluently before validating and building a
// Simplex out of it. The zero value is ready to use.
type Builder struct {
	a            *mat.Dense
	b            []float64
	c            []float64
	inequalities []Inequality
	objective    Objective
	normalizedX  []bool
}

// NewBuilder returns a ready-to-use Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// A sets the constraint coefficient matrix.
func (bld *Builder) A(a *mat.Dense) *Builder {
	bld.a = a
	return bld
}

// B sets the right-hand-side vector.
func (bld *Builder) B(b []float64) *Builder {
	bld.b = b
	return bld
}

// C sets the objective coefficient vector.
func (bld *Builder) C(c []float64) *Builder {
	bld.c = c
	return bld
}

// Inequalities sets the per-row constraint tags. If omitted, Build defaults
// every row to LQ.
func (bld *Builder) Inequalities(ineq ...Inequality) *Builder {
	bld.inequalities = ineq
	return bld
}

// FunctionType sets the objective sense. If omitted, Build defaults to
// Minimize.
func (bld *Builder) FunctionType(o Objective) *Builder {
	bld.objective = o
	return bld
}

// NormalizedX sets, per variable, whether the variable is asserted
// nonnegative (true) or free (false). If omitted, Build defaults every
// variable to nonnegative.
func (bld *Builder) NormalizedX(flags ...bool) *Builder {
	bld.normalizedX = flags
	return bld
}

// Build validates the accumulated fields and returns a Simplex ready to
// solve. It returns a *DataError identifying the offending field on any
// shape mismatch, non-finite entry, or missing required array.
func (bld *Builder) Build() (*Simplex, error) {
	if bld.a == nil {
		return nil, &DataError{Field: "A", Reason: "matrix is nil"}
	}
	if bld.c == nil {
		return nil, &DataError{Field: "C", Reason: "vector is nil"}
	}
	if bld.b == nil {
		return nil, &DataError{Field: "B", Reason: "vector is nil"}
	}

	m, n := bld.a.Dims()
	if m != len(bld.b) {
		return nil, &DataError{Field: "B", Reason: "length does not match A's row count"}
	}
	if n != len(bld.c) {
		return nil, &DataError{Field: "C", Reason: "length does not match A's column count"}
	}
	if m < 1 {
		return nil, &DataError{Field: "A", Reason: "must have at least one row"}
	}
	if n < 1 {
		return nil, &DataError{Field: "A", Reason: "must have at least one column"}
	}

	for i := 0; i < m; i++ {
		if math.IsNaN(bld.b[i]) || math.IsInf(bld.b[i], 0) {
			return nil, &DataError{Field: "B", Reason: "contains a non-finite entry"}
		}
		for j := 0; j < n; j++ {
			v := bld.a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &DataError{Field: "A", Reason: "contains a non-finite entry"}
			}
		}
	}
	for j := 0; j < n; j++ {
		if math.IsNaN(bld.c[j]) || math.IsInf(bld.c[j], 0) {
			return nil, &DataError{Field: "C", Reason: "contains a non-finite entry"}
		}
	}

	ineq := bld.inequalities
	if ineq == nil {
		ineq = make([]Inequality, m)
		for i := range ineq {
			ineq[i] = LQ
		}
	} else if len(ineq) != m {
		return nil, &DataError{Field: "inequalities", Reason: "length does not match A's row count"}
	}

	normalizedX := bld.normalizedX
	if normalizedX == nil {
		normalizedX = make([]bool, n)
		for i := range normalizedX {
			normalizedX[i] = true
		}
	} else if len(normalizedX) != n {
		return nil, &DataError{Field: "normalizedX", Reason: "length does not match C's length"}
	}

	problem := &Problem{
		A:            mat.DenseCopyOf(bld.a),
		B:            append([]float64(nil), bld.b...),
		C:            append([]float64(nil), bld.c...),
		Inequalities: ineq,
		Objective:    bld.objective,
		NormalizedX:  normalizedX,
	}

	tab, err := newTableau(problem)
	if err != nil {
		return nil, err
	}

	return &Simplex{problem: problem, tab: tab}, nil
}

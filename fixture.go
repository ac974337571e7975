package simplex

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ProblemPayload is the Builder payload of a Fixture: everything needed to
// reconstruct a Problem from JSON (§6's "simpleData").
type ProblemPayload struct {
	A            [][]float64 `json:"a"`
	B            []float64   `json:"b"`
	C            []float64   `json:"c"`
	Inequalities []Inequality `json:"inequalities"`
	FunctionType Objective   `json:"functionType"`
	NormalizedX  []bool      `json:"normalizedX,omitempty"`
}

// Build constructs a Simplex from the payload.
func (p ProblemPayload) Build() (*Simplex, error) {
	if len(p.A) == 0 {
		return nil, &DataError{Field: "a", Reason: "matrix is empty"}
	}
	m := len(p.A)
	n := len(p.A[0])
	dense := mat.NewDense(m, n, nil)
	for i, row := range p.A {
		if len(row) != n {
			return nil, &DataError{Field: "a", Reason: "rows have inconsistent length"}
		}
		for j, v := range row {
			dense.Set(i, j, v)
		}
	}

	bld := NewBuilder().A(dense).B(p.B).C(p.C).FunctionType(p.FunctionType)
	if p.Inequalities != nil {
		bld = bld.Inequalities(p.Inequalities...)
	}
	if p.NormalizedX != nil {
		bld = bld.NormalizedX(p.NormalizedX...)
	}
	return bld.Build()
}

// ChangeBPayload is the JSON shape of a changeB analysis step.
type ChangeBPayload struct {
	Row   int     `json:"row"`
	Value float64 `json:"value"`
}

// AddConstraintPayload is the JSON shape of an addConstraint analysis step
// (§6's "addConstraint": {ai, inequality, bi}).
type AddConstraintPayload struct {
	Ai          []float64  `json:"ai"`
	Inequality  Inequality `json:"inequality"`
	Bi          float64    `json:"bi"`
}

// Fixture is one entry of the JSON fixture schema described in §6: a
// Problem, its expected root Answer, and an optional follow-on warm-restart
// analysis step with its own expected Answer or expected failure.
type Fixture struct {
	SimpleData       ProblemPayload        `json:"simpleData"`
	SimplexAnswer    Answer                `json:"simplexAnswer"`
	AnalysisType     string                `json:"analysisType,omitempty"`
	ChangeB          *ChangeBPayload       `json:"changeB,omitempty"`
	AddConstraint    *AddConstraintPayload `json:"addConstraint,omitempty"`
	AnalysisAnswer   *Answer               `json:"analysisAnswer,omitempty"`
	ExceptionClass   string                `json:"exceptionClass,omitempty"`
	ExceptionMessage string                `json:"exceptionMessage,omitempty"`
}

// LoadFixtures reads and parses a JSON fixture file (an array of Fixture).
func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simplex: reading fixtures: %w", err)
	}
	var fixtures []Fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("simplex: parsing fixtures: %w", err)
	}
	return fixtures, nil
}

// RunAnalysis applies the fixture's optional warm-restart step (changeB or
// addConstraint) to s and returns the resulting Answer, or the error the
// step produced.
func (f Fixture) RunAnalysis(s *Simplex) (Answer, error) {
	switch {
	case f.ChangeB != nil:
		return s.ChangeB(f.ChangeB.Row, f.ChangeB.Value)
	case f.AddConstraint != nil:
		return s.AddConstraint(f.AddConstraint.Ai, f.AddConstraint.Inequality, f.AddConstraint.Bi)
	default:
		return Answer{}, fmt.Errorf("simplex: fixture has no analysis step")
	}
}

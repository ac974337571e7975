package simplex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Seed scenario 6 (§8) applied to seed scenario 3's polytope: the
// continuous optimum (4/3, 8/3) is fractional, and the best lattice point
// inside the feasible region is (1, 2), verifiable by exhaustive
// enumeration over the small bounded region.
func TestDiscreteSimplexFindsBestLatticePoint(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{5, -2, 1, -2, 1, 1})
	s, err := NewBuilder().
		A(a).
		B([]float64{4, -4, 4}).
		C([]float64{1, 2}).
		Inequalities(LQ, GE, LQ).
		FunctionType(Maximize).
		Build()
	require.NoError(t, err)

	ds := NewDiscreteSimplex(s)
	ans, err := ds.Solve(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1, ans.X[0], 1e-6)
	assert.InDelta(t, 2, ans.X[1], 1e-6)
	assert.InDelta(t, 5, ans.FX, 1e-6)
}

func TestDiscreteSimplexRespectsWorkerCap(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{5, -2, 1, -2, 1, 1})
	s, err := NewBuilder().
		A(a).
		B([]float64{4, -4, 4}).
		C([]float64{1, 2}).
		Inequalities(LQ, GE, LQ).
		FunctionType(Maximize).
		Build()
	require.NoError(t, err)

	ds := NewDiscreteSimplex(s)
	ans, err := ds.SolveWithOptions(context.Background(), DiscreteOptions{MaxWorkers: 1})
	require.NoError(t, err)
	assert.InDelta(t, 5, ans.FX, 1e-6)
}

func TestDiscreteSimplexReportsDecisionsToObserver(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{5, -2, 1, -2, 1, 1})
	s, err := NewBuilder().
		A(a).
		B([]float64{4, -4, 4}).
		C([]float64{1, 2}).
		Inequalities(LQ, GE, LQ).
		FunctionType(Maximize).
		Build()
	require.NoError(t, err)

	logger := NewTreeLogger()
	ds := NewDiscreteSimplex(s)
	_, err = ds.SolveWithOptions(context.Background(), DiscreteOptions{Observer: logger})
	require.NoError(t, err)
	assert.NotEmpty(t, logger.Entries())
}

func TestDiscreteSimplexNoFeasibleIntegerPoint(t *testing.T) {
	// 0.5 <= x <= 0.9 admits no integer point.
	a := mat.NewDense(2, 1, []float64{1, 1})
	s, err := NewBuilder().
		A(a).
		B([]float64{0.9, 0.5}).
		C([]float64{1}).
		Inequalities(LQ, GE).
		FunctionType(Minimize).
		Build()
	require.NoError(t, err)

	ds := NewDiscreteSimplex(s)
	_, err = ds.Solve(context.Background())
	var ie *InfeasibleError
	assert.True(t, errors.As(err, &ie))
}

func TestDiscreteSimplexWithPredicatesRejectsLengthMismatch(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{1, 1})
	s, err := NewBuilder().A(a).B([]float64{4}).C([]float64{1, 1}).Build()
	require.NoError(t, err)

	ds := NewDiscreteSimplex(s)
	_, err = ds.WithPredicates([]ValidityPredicate{nearlyInteger}, nil, nil)
	var de *DataError
	assert.True(t, errors.As(err, &de))
}

func TestDiscreteSimplexCustomExceptionHandlerDoesNotBreakSolve(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{5, -2, 1, -2, 1, 1})
	s, err := NewBuilder().
		A(a).
		B([]float64{4, -4, 4}).
		C([]float64{1, 2}).
		Inequalities(LQ, GE, LQ).
		FunctionType(Maximize).
		Build()
	require.NoError(t, err)

	ds := NewDiscreteSimplex(s)
	ds.SetExceptionHandler(func(error) {})

	ans, err := ds.Solve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5, ans.FX, 1e-6)
}

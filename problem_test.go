package simplex

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestInequalityInvertIsInvolution(t *testing.T) {
	for _, tag := range []Inequality{EQ, LQ, LE, GE, GR} {
		assert.Equal(t, tag, tag.Invert().Invert())
	}
}

func TestInequalityInvertTable(t *testing.T) {
	assert.Equal(t, EQ, EQ.Invert())
	assert.Equal(t, GE, LQ.Invert())
	assert.Equal(t, LQ, GE.Invert())
	assert.Equal(t, GR, LE.Invert())
	assert.Equal(t, LE, GR.Invert())
}

func TestInequalityNonStrict(t *testing.T) {
	assert.Equal(t, LQ, LE.nonStrict())
	assert.Equal(t, GE, GR.nonStrict())
	assert.Equal(t, EQ, EQ.nonStrict())
	assert.Equal(t, LQ, LQ.nonStrict())
	assert.Equal(t, GE, GE.nonStrict())
}

func TestInequalityJSONRoundTrip(t *testing.T) {
	for tag, symbol := range map[Inequality]string{
		EQ: `"="`, LQ: `"<="`, LE: `"<"`, GE: `">="`, GR: `">"`,
	} {
		data, err := json.Marshal(tag)
		require.NoError(t, err)
		assert.Equal(t, symbol, string(data))

		var out Inequality
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, tag, out)
	}

	var bad Inequality
	assert.Error(t, json.Unmarshal([]byte(`"nonsense"`), &bad))
}

func TestObjectiveJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Maximize)
	require.NoError(t, err)
	assert.Equal(t, `"MAX"`, string(data))

	var out Objective
	require.NoError(t, json.Unmarshal([]byte(`"MIN"`), &out))
	assert.Equal(t, Minimize, out)

	assert.Error(t, json.Unmarshal([]byte(`"nonsense"`), &out))
}

func TestBuilderRejectsNilArrays(t *testing.T) {
	_, err := NewBuilder().B([]float64{1}).C([]float64{1}).Build()
	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "A", de.Field)
}

func TestBuilderRejectsShapeMismatch(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	_, err := NewBuilder().A(a).B([]float64{1, 2, 3}).C([]float64{1, 1}).Build()
	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "B", de.Field)
}

func TestBuilderRejectsNonFiniteEntries(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{math.NaN()})
	_, err := NewBuilder().A(a).B([]float64{1}).C([]float64{1}).Build()
	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "A", de.Field)
}

func TestBuilderDefaultsInequalitiesAndNormalizedX(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{1, 1})
	s, err := NewBuilder().A(a).B([]float64{4}).C([]float64{1, 1}).Build()
	require.NoError(t, err)
	assert.Equal(t, []Inequality{LQ}, s.problem.Inequalities)
	assert.Equal(t, []bool{true, true}, s.problem.NormalizedX)
	assert.Equal(t, Minimize, s.problem.Objective)
}

func TestProblemCloneIsIndependent(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{1, 1})
	p := &Problem{A: a, B: []float64{4}, C: []float64{1, 1}, Inequalities: []Inequality{LQ}, NormalizedX: []bool{true, true}}
	clone := p.clone()
	clone.B[0] = 99
	clone.A.Set(0, 0, 99)
	assert.Equal(t, 4.0, p.B[0])
	assert.Equal(t, 1.0, p.A.At(0, 0))
}

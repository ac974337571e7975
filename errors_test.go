package simplex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataErrorUnwrap(t *testing.T) {
	err := &DataError{Field: "C", Reason: "length mismatch"}
	assert.True(t, errors.Is(err, ErrData))
	assert.Contains(t, err.Error(), "C")
}

func TestInfeasibleErrorUnwrap(t *testing.T) {
	err := &InfeasibleError{Reason: "artificial positive"}
	assert.True(t, errors.Is(err, ErrInfeasible))
	assert.Contains(t, err.Error(), "artificial positive")

	bare := &InfeasibleError{}
	assert.Equal(t, ErrInfeasible.Error(), bare.Error())
}

func TestUnboundedErrorUnwrap(t *testing.T) {
	err := &UnboundedError{Column: 2}
	assert.True(t, errors.Is(err, ErrUnbounded))
}

func TestDifficultErrorUnwrap(t *testing.T) {
	err := &DifficultError{Reason: "iteration budget exhausted"}
	assert.True(t, errors.Is(err, ErrDifficult))
	assert.Contains(t, err.Error(), "iteration budget exhausted")
}

func TestErrorsAsRecoversConcreteType(t *testing.T) {
	var err error = &InfeasibleError{Reason: "x"}
	var ie *InfeasibleError
	assert.True(t, errors.As(err, &ie))
	assert.Equal(t, "x", ie.Reason)
}

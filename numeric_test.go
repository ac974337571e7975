package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearlyEqual(t *testing.T) {
	assert.True(t, nearlyEqual(1.0, 1.0+EPSILON/2))
	assert.False(t, nearlyEqual(1.0, 1.0+EPSILON*10))
}

func TestNearlyZero(t *testing.T) {
	assert.True(t, nearlyZero(0))
	assert.True(t, nearlyZero(EPSILON/2))
	assert.False(t, nearlyZero(0.1))
}

func TestNearlyInteger(t *testing.T) {
	assert.True(t, nearlyInteger(3.0))
	assert.True(t, nearlyInteger(3.0+EPSILON/2))
	assert.False(t, nearlyInteger(3.2))
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 0.0, maxAbs(nil))
	assert.Equal(t, 5.0, maxAbs([]float64{1, -5, 2}))
}

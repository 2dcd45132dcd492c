package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewRand(t *testing.T) {
	r, err := NewRand()
	require.NoError(t, err)
	require.NotNil(t, r)
	n := r.IntN(10)
	assert.GreaterOrEqual(t, n, 0)
	assert.Less(t, n, 10)
}

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	var c Cache = NewMemory()

	_, ok, err := c.Get("features")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("features", `{"Features":[]}`))
	require.NoError(t, c.Set("features", `{"Features":null}`))

	value, ok, err := c.Get("features")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Features":null}`, value)
	assert.Equal(t, 1, c.(*Memory).Len())
}

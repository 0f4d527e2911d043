package deedseed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheState(t *testing.T) {
	c, err := NewCache(time.Minute)
	assert.NoError(t, err)
	defer c.Close()

	state := c.GetState()
	assert.False(t, state.MintingActive)
	assert.True(t, state.UpdatedAt.IsZero())

	c.UpdateState(ChainState{MintingActive: true, RemainingSupply: "88", TotalSupply: "12"})
	state = c.GetState()
	assert.True(t, state.MintingActive)
	assert.Equal(t, "88", state.RemainingSupply)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestCacheMetadata(t *testing.T) {
	c, err := NewCache(time.Minute)
	assert.NoError(t, err)
	defer c.Close()

	_, err = c.GetMetadata("QmNope")
	assert.Equal(t, ErrNotExist, err)

	assert.NoError(t, c.SetMetadata("QmTestMeta", []byte(`{"name":"x"}`)))
	data, err := c.GetMetadata("QmTestMeta")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"x"}`), data)
}

package deedseed

import (
	"context"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// ChainState is the periodically refreshed view of the contract used by
// cheap read endpoints; eligibility gating always re-reads the contract.
type ChainState struct {
	MintingActive   bool
	RemainingSupply string
	TotalSupply     string
	UpdatedAt       time.Time
}

// Cache holds the chain-state snapshot and a byte cache of pinned
// metadata documents keyed by cid.
type Cache struct {
	state ChainState
	lock  sync.RWMutex

	meta *bigcache.BigCache
}

func NewCache(metaTTL time.Duration) (*Cache, error) {
	meta, err := bigcache.New(context.Background(), bigcache.DefaultConfig(metaTTL))
	if err != nil {
		return nil, err
	}
	return &Cache{meta: meta}, nil
}

func (c *Cache) GetState() ChainState {
	c.lock.RLock()
	defer c.lock.RUnlock()
	state := c.state
	return state
}

func (c *Cache) UpdateState(state ChainState) {
	c.lock.Lock()
	defer c.lock.Unlock()
	state.UpdatedAt = time.Now()
	c.state = state
}

func (c *Cache) SetMetadata(cid string, data []byte) error {
	return c.meta.Set(cid, data)
}

func (c *Cache) GetMetadata(cid string) ([]byte, error) {
	data, err := c.meta.Get(cid)
	if err == bigcache.ErrEntryNotFound {
		return nil, ErrNotExist
	}
	return data, err
}

func (c *Cache) Close() error {
	return c.meta.Close()
}

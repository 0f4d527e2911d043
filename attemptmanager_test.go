package deedseed

import (
	"testing"

	"github.com/deedlabs/deedseed/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func newRegisteredAttempt() *MintAttempt {
	return NewMintAttempt(validForm(), testWallet, &fakePinner{}, &fakeChain{}, nil)
}

func TestAttemptManager_SingleFlightPerWallet(t *testing.T) {
	m := NewAttemptMg()

	first := newRegisteredAttempt()
	assert.NoError(t, m.Register(first))
	assert.Equal(t, ErrAttemptExist, m.Register(first))

	// wallet already has a running attempt
	second := newRegisteredAttempt()
	assert.Equal(t, ErrAttemptRunning, m.Register(second))

	// settling the first admits the second and evicts the first
	first.fail("boom")
	assert.NoError(t, m.Register(second))
	_, err := m.Get(first.Id)
	assert.Equal(t, ErrNotFound, err)

	got, err := m.GetByWallet(testWallet)
	assert.NoError(t, err)
	assert.Equal(t, second.Id, got.Id)
	assert.Equal(t, 1, m.Len())
}

func TestAttemptManager_OtherWalletUnaffected(t *testing.T) {
	m := NewAttemptMg()
	assert.NoError(t, m.Register(newRegisteredAttempt()))

	other := NewMintAttempt(validForm(), common.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"), &fakePinner{}, &fakeChain{}, nil)
	assert.NoError(t, m.Register(other))
	assert.Equal(t, 2, m.Len())
}

func TestAttemptManager_Del(t *testing.T) {
	m := NewAttemptMg()
	a := newRegisteredAttempt()
	assert.NoError(t, m.Register(a))

	m.Del(a.Id)
	_, err := m.Get(a.Id)
	assert.Equal(t, ErrNotFound, err)
	_, err = m.GetByWallet(testWallet)
	assert.Equal(t, ErrNotFound, err)

	// deleting twice is a no-op
	m.Del(a.Id)
}

func TestAttemptManager_PopFlushable(t *testing.T) {
	m := NewAttemptMg()

	running := newRegisteredAttempt()
	assert.NoError(t, m.Register(running))

	done := NewMintAttempt(validForm(), common.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"), &fakePinner{}, &fakeChain{}, nil)
	assert.NoError(t, m.Register(done))
	done.succeed(5, testHash)

	flushable := m.PopFlushable()
	if assert.Len(t, flushable, 1) {
		assert.Equal(t, done.Id, flushable[0].Id)
	}

	// already flushed, not returned again
	assert.Empty(t, m.PopFlushable())

	running.fail("gave up")
	flushable = m.PopFlushable()
	if assert.Len(t, flushable, 1) {
		assert.Equal(t, running.Id, flushable[0].Id)
	}
	assert.Equal(t, schema.StatusError, running.Status())
}

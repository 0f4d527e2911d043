package deedseed

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// AttemptManager tracks live mint attempts. At most one non-terminal
// attempt may exist per wallet: a new attempt is only accepted after the
// prior one settles, and registering it discards the settled predecessor.
type AttemptManager struct {
	attempts map[string]*MintAttempt // key: attemptId
	byWallet map[common.Address]*MintAttempt
	locker   sync.RWMutex
}

func NewAttemptMg() *AttemptManager {
	return &AttemptManager{
		attempts: make(map[string]*MintAttempt),
		byWallet: make(map[common.Address]*MintAttempt),
	}
}

func (m *AttemptManager) Register(a *MintAttempt) error {
	m.locker.Lock()
	defer m.locker.Unlock()

	if _, ok := m.attempts[a.Id]; ok {
		return ErrAttemptExist
	}
	if prev, ok := m.byWallet[a.Wallet]; ok {
		if !prev.Status().Terminal() {
			return ErrAttemptRunning
		}
		delete(m.attempts, prev.Id)
	}
	m.attempts[a.Id] = a
	m.byWallet[a.Wallet] = a
	return nil
}

func (m *AttemptManager) Get(id string) (*MintAttempt, error) {
	m.locker.RLock()
	defer m.locker.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *AttemptManager) GetByWallet(wallet common.Address) (*MintAttempt, error) {
	m.locker.RLock()
	defer m.locker.RUnlock()
	a, ok := m.byWallet[wallet]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Del discards an attempt, the "cancel" action from a terminal state.
func (m *AttemptManager) Del(id string) {
	m.locker.Lock()
	defer m.locker.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return
	}
	delete(m.attempts, id)
	if cur, ok := m.byWallet[a.Wallet]; ok && cur.Id == id {
		delete(m.byWallet, a.Wallet)
	}
}

// PopFlushable returns terminal attempts not yet written to the audit
// store, marking them flushed.
func (m *AttemptManager) PopFlushable() []*MintAttempt {
	m.locker.Lock()
	defer m.locker.Unlock()

	flushable := make([]*MintAttempt, 0)
	for _, a := range m.attempts {
		if !a.Status().Terminal() {
			continue
		}
		a.mu.Lock()
		if !a.flushed {
			a.flushed = true
			flushable = append(flushable, a)
		}
		a.mu.Unlock()
	}
	return flushable
}

func (m *AttemptManager) Len() int {
	m.locker.RLock()
	defer m.locker.RUnlock()
	return len(m.attempts)
}

package storefake

import (
	"sync"

	"github.com/jrsteele09/go-lms-client/token"
)

var _ token.Store = (*FakeStore)(nil)

// FakeStore is an in-memory token.Store for tests. Setting Unavailable
// simulates browser storage being inaccessible: writes are dropped and reads
// report an absent pair.
type FakeStore struct {
	pair        token.Pair
	present     bool
	Unavailable bool
	SetCalls    int
	ClearCalls  int
	lock        sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (s *FakeStore) Set(pair token.Pair) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.SetCalls++
	if s.Unavailable {
		return
	}
	s.pair = pair
	s.present = true
}

func (s *FakeStore) Get() (token.Pair, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Unavailable || !s.present {
		return token.Pair{}, false
	}
	return s.pair, true
}

func (s *FakeStore) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ClearCalls++
	s.pair = token.Pair{}
	s.present = false
}

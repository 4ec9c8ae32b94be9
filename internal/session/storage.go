package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

const (
	KeyAuthToken = "authToken"
	KeyRole      = "role"
	KeyUser      = "user"

	KeyRedirectAfterLogin = "redirectAfterLogin"
	KeyLogoutMessage      = "logoutMessage"
)

// Change describes one write. New is empty and Removed is true for removals.
type Change struct {
	Key     string
	Old     string
	New     string
	Removed bool
	Origin  string
}

// Storage is an observable string map. Every Set and every Remove of a
// present key is delivered to all subscribers synchronously, after the
// write is visible and outside the internal lock, so a subscriber may
// read or write the storage again.
type Storage struct {
	mu     sync.RWMutex
	data   map[string]string
	subs   map[int]func(Change)
	nextID int
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[string]string),
		subs: make(map[int]func(Change)),
	}
}

func (s *Storage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Storage) Set(origin, key, value string) {
	s.mu.Lock()
	old := s.data[key]
	s.data[key] = value
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, Change{Key: key, Old: old, New: value, Origin: origin})
}

func (s *Storage) Remove(origin, key string) {
	s.mu.Lock()
	old, ok := s.data[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.data, key)
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, Change{Key: key, Old: old, Removed: true, Origin: origin})
}

// Subscribe registers fn and returns a func that removes it.
func (s *Storage) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot copies the current contents.
func (s *Storage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Load replaces the contents without notifying subscribers.
func (s *Storage) Load(data map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string, len(data))
	for k, v := range data {
		s.data[k] = v
	}
}

// listeners returns subscribers in registration order. Caller holds mu.
func (s *Storage) listeners() []func(Change) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]func(Change), len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}

func notify(subs []func(Change), c Change) {
	for _, fn := range subs {
		fn(c)
	}
}

// Tab is one client view: persistent storage shared with other tabs plus
// its own session-scoped storage. Writes through a Tab carry its ID as origin.
type Tab struct {
	ID      string
	shared  *Storage
	session *Storage
}

func NewTab(shared *Storage) *Tab {
	return &Tab{
		ID:      uuid.NewString(),
		shared:  shared,
		session: NewStorage(),
	}
}

func (t *Tab) Get(key string) (string, bool) { return t.shared.Get(key) }

func (t *Tab) Set(key, value string) { t.shared.Set(t.ID, key, value) }

func (t *Tab) Remove(key string) { t.shared.Remove(t.ID, key) }

func (t *Tab) Subscribe(fn func(Change)) func() { return t.shared.Subscribe(fn) }

func (t *Tab) Shared() *Storage { return t.shared }

// Session is the per-tab storage holding the redirect target and logout message.
func (t *Tab) Session() *Storage { return t.session }

// TakeSession reads and removes a session-scoped key.
func (t *Tab) TakeSession(key string) (string, bool) {
	v, ok := t.session.Get(key)
	if ok {
		t.session.Remove(t.ID, key)
	}
	return v, ok
}

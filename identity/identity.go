// Package identity resolves composite keys and names to well-known parties.
package identity

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/party"
)

// Service is the lookup surface a validator needs to turn an anonymous key
// back into a named party.
type Service interface {
	PartyFromKey(key *compositekey.Key) (party.Full, bool)
	PartyFromName(name string) (party.Full, bool)
}

var (
	// ErrConflict means the name or key is already bound to another party.
	ErrConflict     = errors.New("identity: conflicting registration")
	ErrInvalidParty = errors.New("identity: invalid party")
)

// Memory is an in-process Service. The zero value is not usable; call
// NewMemory. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	byKey  map[string]party.Full
	byName map[string]party.Full
	// byLeaf indexes every leaf of every owning key to the first party
	// registered with it.
	byLeaf map[string]party.Full
}

func NewMemory() *Memory {
	return &Memory{
		byKey:  make(map[string]party.Full),
		byName: make(map[string]party.Full),
		byLeaf: make(map[string]party.Full),
	}
}

// Register binds p's name and owning key. Registering the same party again
// is a no-op; reusing either the name or the key for a different party
// fails with ErrConflict.
func (m *Memory) Register(p party.Full) error {
	if p.OwningKey() == nil || p.Name() == "" {
		return ErrInvalidParty
	}
	k := p.OwningKey().String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.byName[p.Name()]; ok {
		if prev.OwningKey().Equal(p.OwningKey()) {
			return nil
		}
		return fmt.Errorf("%w: name %q is bound to %s", ErrConflict, p.Name(), prev.OwningKey())
	}
	if prev, ok := m.byKey[k]; ok {
		return fmt.Errorf("%w: key is bound to %q", ErrConflict, prev.Name())
	}

	m.byName[p.Name()] = p
	m.byKey[k] = p
	for _, leaf := range p.OwningKey().Leaves() {
		lk := leaf.String()
		if _, ok := m.byLeaf[lk]; !ok {
			m.byLeaf[lk] = p
		}
	}
	return nil
}

// PartyFromKey returns the party owning key. When key is a single leaf that
// is not itself an owning key, the party whose owning key contains that leaf
// is returned instead.
func (m *Memory) PartyFromKey(key *compositekey.Key) (party.Full, bool) {
	if key == nil {
		return party.Full{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.byKey[key.String()]; ok {
		return p, true
	}
	if pk, ok := key.PublicKey(); ok {
		p, ok := m.byLeaf[pk.String()]
		return p, ok
	}
	return party.Full{}, false
}

func (m *Memory) PartyFromName(name string) (party.Full, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byName[name]
	return p, ok
}

// Parties lists every registered party ordered by name.
func (m *Memory) Parties() []party.Full {
	m.mu.RLock()
	out := make([]party.Full, 0, len(m.byName))
	for _, p := range m.byName {
		out = append(out, p)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

var _ Service = (*Memory)(nil)

package compositekey

import (
	"sort"

	"xdao.co/ledgertrust/keys"
)

// KeySet is a set of leaf public keys, typically the keys whose signatures
// have been verified. The zero value is an empty set ready to use.
type KeySet struct {
	m map[string]keys.PublicKey
}

// NewKeySet returns a set holding pks. Zero keys are skipped.
func NewKeySet(pks ...keys.PublicKey) KeySet {
	s := KeySet{m: make(map[string]keys.PublicKey, len(pks))}
	for _, pk := range pks {
		s.Add(pk)
	}
	return s
}

// Add inserts pk. Adding a zero key is a no-op.
func (s *KeySet) Add(pk keys.PublicKey) {
	if pk.IsZero() {
		return
	}
	if s.m == nil {
		s.m = make(map[string]keys.PublicKey)
	}
	s.m[pk.String()] = pk
}

// Contains reports whether pk is in the set.
func (s KeySet) Contains(pk keys.PublicKey) bool {
	return s.containsText(pk.String())
}

func (s KeySet) containsText(text string) bool {
	_, ok := s.m[text]
	return ok
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int { return len(s.m) }

// Keys returns the members sorted by their text form.
func (s KeySet) Keys() []keys.PublicKey {
	texts := make([]string, 0, len(s.m))
	for t := range s.m {
		texts = append(texts, t)
	}
	sort.Strings(texts)
	out := make([]keys.PublicKey, 0, len(texts))
	for _, t := range texts {
		out = append(out, s.m[t])
	}
	return out
}

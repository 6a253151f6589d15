// Package party defines network identities backed by composite keys.
//
// A Party is either Full (a legal name plus an owning key) or Anonymised
// (the owning key only). Equality and hashing depend solely on the owning
// key: two parties with the same key are the same party, whatever their
// names and whichever variant they are.
package party

import (
	"strings"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/keys"
)

// Party is implemented only by Full and Anonymised.
type Party interface {
	OwningKey() *compositekey.Key
	// ToAnonymised drops everything but the owning key.
	ToAnonymised() Anonymised
	Ref(ref OpaqueBytes) Reference
	RefBytes(b ...byte) (Reference, error)
	Equal(other Party) bool
	Hash() uint64
	String() string

	sealed()
}

// Full is a named identity.
type Full struct {
	name string
	key  *compositekey.Key
}

// NewFull returns a named party. It fails with ErrInvalidName when name is
// empty or only whitespace, and with ErrNilKey when key is missing.
func NewFull(name string, key *compositekey.Key) (Full, error) {
	if strings.TrimSpace(name) == "" {
		return Full{}, &Error{Kind: KindName, RuleID: "PARTY-NAME-001", Message: "party name must not be empty"}
	}
	if key == nil || key.String() == "" {
		return Full{}, &Error{Kind: KindKey, RuleID: "PARTY-KEY-001", Message: "party requires an owning key"}
	}
	return Full{name: name, key: key}, nil
}

// NewFullFromPublicKey is NewFull with a single-leaf owning key.
func NewFullFromPublicKey(name string, pk keys.PublicKey) (Full, error) {
	key, err := compositekey.NewLeaf(pk)
	if err != nil {
		return Full{}, &Error{Kind: KindKey, RuleID: "PARTY-KEY-002", Message: "invalid owning key", Cause: err}
	}
	return NewFull(name, key)
}

// Name returns the legal name.
func (p Full) Name() string { return p.name }

// OwningKey returns the key that controls the party.
func (p Full) OwningKey() *compositekey.Key { return p.key }

// ToAnonymised returns the party without its name.
func (p Full) ToAnonymised() Anonymised { return Anonymised{key: p.key} }

// Ref pairs the anonymised party with ref.
func (p Full) Ref(ref OpaqueBytes) Reference { return newReference(p, ref) }

// RefBytes is Ref over a copy of b. Empty b fails with ErrEmptyReference.
func (p Full) RefBytes(b ...byte) (Reference, error) { return refBytes(p, b) }

// Equal compares owning keys only; names are ignored.
func (p Full) Equal(other Party) bool { return equalKeys(p, other) }

// Hash is the owning key's hash.
func (p Full) Hash() uint64 { return p.key.Hash() }

// String returns the legal name.
func (p Full) String() string { return p.name }

func (Full) sealed() {}

// Anonymised is an identity carrying nothing but its owning key.
type Anonymised struct {
	key *compositekey.Key
}

// NewAnonymised wraps key. It only fails when key is missing.
func NewAnonymised(key *compositekey.Key) (Anonymised, error) {
	if key == nil || key.String() == "" {
		return Anonymised{}, &Error{Kind: KindKey, RuleID: "PARTY-KEY-001", Message: "party requires an owning key"}
	}
	return Anonymised{key: key}, nil
}

// OwningKey returns the key that controls the party.
func (p Anonymised) OwningKey() *compositekey.Key { return p.key }

// ToAnonymised returns p itself.
func (p Anonymised) ToAnonymised() Anonymised { return p }

func (p Anonymised) Ref(ref OpaqueBytes) Reference { return newReference(p, ref) }

func (p Anonymised) RefBytes(b ...byte) (Reference, error) { return refBytes(p, b) }

// Equal compares owning keys, so an Anonymised party equals the Full
// party it came from.
func (p Anonymised) Equal(other Party) bool { return equalKeys(p, other) }

func (p Anonymised) Hash() uint64 { return p.key.Hash() }

// String returns the canonical text form of the owning key.
func (p Anonymised) String() string { return p.key.String() }

func (Anonymised) sealed() {}

// Equal reports whether a and b have the same owning key. Nil parties are
// only equal to each other.
func Equal(a, b Party) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.OwningKey().Equal(b.OwningKey())
}

func equalKeys(p, other Party) bool {
	if other == nil {
		return false
	}
	return p.OwningKey().Equal(other.OwningKey())
}

var (
	_ Party = Full{}
	_ Party = Anonymised{}
)

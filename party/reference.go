package party

import (
	"bytes"
	"encoding/hex"
)

// OpaqueBytes is an immutable byte string whose meaning belongs to the caller.
type OpaqueBytes struct {
	b []byte
}

// NewOpaqueBytes copies b. Empty input is rejected.
func NewOpaqueBytes(b ...byte) (OpaqueBytes, error) {
	if len(b) == 0 {
		return OpaqueBytes{}, &Error{Kind: KindReference, RuleID: "PARTY-REF-001", Message: "reference bytes must not be empty"}
	}
	return OpaqueBytes{b: append([]byte(nil), b...)}, nil
}

// Bytes returns a copy of the underlying bytes.
func (o OpaqueBytes) Bytes() []byte { return append([]byte(nil), o.b...) }

// Len returns the number of bytes.
func (o OpaqueBytes) Len() int { return len(o.b) }

func (o OpaqueBytes) Equal(other OpaqueBytes) bool { return bytes.Equal(o.b, other.b) }

// String renders the bytes as hex.
func (o OpaqueBytes) String() string { return hex.EncodeToString(o.b) }

// Reference pairs the anonymised form of a party with a caller-owned tag,
// for example an issuer's internal account or deposit reference.
type Reference struct {
	Party     Anonymised
	Reference OpaqueBytes
}

func newReference(p Party, ref OpaqueBytes) Reference {
	return Reference{Party: p.ToAnonymised(), Reference: ref}
}

func refBytes(p Party, b []byte) (Reference, error) {
	ref, err := NewOpaqueBytes(b...)
	if err != nil {
		return Reference{}, err
	}
	return newReference(p, ref), nil
}

// Equal compares both the party (by key) and the tag.
func (r Reference) Equal(o Reference) bool {
	return r.Party.Equal(o.Party) && r.Reference.Equal(o.Reference)
}

// String is the party's key text followed by the hex tag.
func (r Reference) String() string {
	return r.Party.String() + r.Reference.String()
}

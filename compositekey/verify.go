package compositekey

import (
	"fmt"

	"xdao.co/ledgertrust/keys"
)

// Signature is a signature together with the leaf key that claims to have
// produced it.
type Signature struct {
	PublicKey keys.PublicKey
	Bytes     []byte
}

// SignedBy returns the leaves of k that produced a valid signature over
// hash(message).
//
// Signatures by keys that are not leaves of k are ignored, and so are
// signatures that fail to verify. An error means a signature could not be
// checked at all (unknown hash algorithm, malformed signature).
func (k *Key) SignedBy(message []byte, sigs []Signature, hashAlg string) (KeySet, error) {
	var set KeySet
	if k == nil {
		return set, nil
	}
	leaves := make(map[string]bool)
	for _, pk := range k.Leaves() {
		leaves[pk.String()] = true
	}
	for i, s := range sigs {
		text := s.PublicKey.String()
		if !leaves[text] || set.containsText(text) {
			continue
		}
		ok, err := s.PublicKey.Verify(message, s.Bytes, hashAlg)
		if err != nil {
			return KeySet{}, fmt.Errorf("signature %d by %s: %w", i, text, err)
		}
		if ok {
			set.Add(s.PublicKey)
		}
	}
	return set, nil
}

// VerifySignatures reports whether the valid signatures in sigs fulfil k.
func (k *Key) VerifySignatures(message []byte, sigs []Signature, hashAlg string) (bool, error) {
	set, err := k.SignedBy(message, sigs, hashAlg)
	if err != nil {
		return false, err
	}
	return k.IsFulfilledBy(set), nil
}

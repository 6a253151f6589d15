package compositekey

import (
	"github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"
)

// Base58 returns the canonical text form encoded with the Bitcoin base58
// alphabet. It is a compact, copy-paste safe rendering of the same identity.
func (k *Key) Base58() string {
	if k == nil {
		return ""
	}
	return base58.Encode([]byte(k.canonical))
}

// ParseBase58 inverts Base58.
func ParseBase58(s string) (*Key, error) {
	if s == "" {
		return nil, encodingError("CK-ENC-001", "empty composite key")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, wrapEncodingError("CK-ENC-020", "invalid base58", err)
	}
	return Parse(string(raw))
}

// CID returns a CIDv1 (raw codec, sha2-256 multihash) over the canonical text
// bytes. Equal keys always have equal CIDs.
func (k *Key) CID() (cid.Cid, error) {
	if k == nil || k.canonical == "" {
		return cid.Undef, encodingError("CK-ENC-001", "empty composite key")
	}
	sum, err := multihash.Sum([]byte(k.canonical), multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

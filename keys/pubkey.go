package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Supported leaf key algorithms.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// PublicKey is a single signing key, the leaf of a composite key.
//
// The zero value is not a valid key. Use ParsePublicKey, Ed25519PublicKey or
// Dilithium3PublicKey to construct one.
type PublicKey struct {
	alg   string
	bytes []byte
}

// Ed25519PublicKey wraps a raw Ed25519 public key.
func Ed25519PublicKey(pub ed25519.PublicKey) (PublicKey, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	return PublicKey{alg: AlgEd25519, bytes: append([]byte(nil), pub...)}, nil
}

// Dilithium3PublicKey wraps a circl Dilithium3 public key.
func Dilithium3PublicKey(pub *mode3.PublicKey) (PublicKey, error) {
	if pub == nil {
		return PublicKey{}, errors.New("missing dilithium3 public key")
	}
	b, err := pub.MarshalBinary()
	if err != nil {
		return PublicKey{}, fmt.Errorf("marshal dilithium3 public key: %w", err)
	}
	return PublicKey{alg: AlgDilithium3, bytes: b}, nil
}

// ParsePublicKey decodes the "<alg>:<base64>" text form.
// Standard padded base64 is canonical, raw (unpadded) base64 is accepted.
func ParsePublicKey(s string) (PublicKey, error) {
	alg, enc, ok := strings.Cut(s, ":")
	if !ok || alg == "" || enc == "" {
		return PublicKey{}, fmt.Errorf("invalid public key encoding %q", s)
	}
	raw, err := decodeBase64(enc)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key base64: %w", err)
	}
	switch alg {
	case AlgEd25519:
		return Ed25519PublicKey(raw)
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return PublicKey{}, fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
		return PublicKey{alg: AlgDilithium3, bytes: raw}, nil
	default:
		return PublicKey{}, fmt.Errorf("unsupported public key algorithm %q", alg)
	}
}

// MustParsePublicKey is ParsePublicKey for static inputs. It panics on error.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// Alg returns the key algorithm name.
func (k PublicKey) Alg() string { return k.alg }

// Bytes returns a copy of the raw key bytes.
func (k PublicKey) Bytes() []byte { return append([]byte(nil), k.bytes...) }

// IsZero reports whether k is the zero value.
func (k PublicKey) IsZero() bool { return k.alg == "" && len(k.bytes) == 0 }

// String returns the canonical "<alg>:<base64>" form.
func (k PublicKey) String() string {
	if k.IsZero() {
		return ""
	}
	return k.alg + ":" + base64.StdEncoding.EncodeToString(k.bytes)
}

// Equal reports whether both keys use the same algorithm and key bytes.
func (k PublicKey) Equal(o PublicKey) bool {
	return k.alg == o.alg && bytes.Equal(k.bytes, o.bytes)
}

// IssuerKeyFromPublicKey encodes an Ed25519 public key into its text form.
func IssuerKeyFromPublicKey(pub ed25519.PublicKey) (string, error) {
	k, err := Ed25519PublicKey(pub)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Supported message digests. Signatures always cover hash(message).
const (
	HashSHA256  = "sha256"
	HashSHA512  = "sha512"
	HashSHA3256 = "sha3-256"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA512:
		s := sha512.Sum512(message)
		return s[:], nil
	case HashSHA3256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignEd25519 returns an Ed25519 signature over hash(message).
func SignEd25519(message []byte, hashAlg string, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(privateKey, digest), nil
}

// SignDilithium3 returns a dilithium3 signature over hash(message).
func SignDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	return sig, nil
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// Verify checks sig against hash(message) under k.
//
// A well-formed but wrong signature yields (false, nil). Errors are reserved
// for inputs that cannot be checked at all: unknown hash or key algorithm, or
// a signature of the wrong size.
func (k PublicKey) Verify(message, sig []byte, hashAlg string) (bool, error) {
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return false, err
	}
	switch k.alg {
	case AlgEd25519:
		if len(sig) != ed25519.SignatureSize {
			return false, fmt.Errorf("invalid ed25519 signature length %d", len(sig))
		}
		return ed25519.Verify(ed25519.PublicKey(k.bytes), digest, sig), nil
	case AlgDilithium3:
		if len(sig) != mode3.SignatureSize {
			return false, fmt.Errorf("invalid dilithium3 signature length %d", len(sig))
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(k.bytes); err != nil {
			return false, fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
		return mode3.Verify(&pk, digest, sig), nil
	default:
		return false, fmt.Errorf("unsupported public key algorithm %q", k.alg)
	}
}

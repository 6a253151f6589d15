package compositekey

import (
	"crypto/ed25519"
	"math/rand"
	"testing"

	"xdao.co/ledgertrust/keys"
)

type testSigner struct {
	pub  keys.PublicKey
	priv ed25519.PrivateKey
}

func newTestSigner(t testing.TB, n int) testSigner {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(n*31 + i)
	}
	pub, priv, err := keys.Ed25519FromSeed(seed)
	if err != nil {
		t.Fatalf("Ed25519FromSeed: %v", err)
	}
	return testSigner{pub: pub, priv: priv}
}

func testPublicKeys(t testing.TB, n int) []keys.PublicKey {
	t.Helper()
	out := make([]keys.PublicKey, n)
	for i := range out {
		out[i] = newTestSigner(t, i).pub
	}
	return out
}

func leaves(pks ...keys.PublicKey) []*Key {
	out := make([]*Key, len(pks))
	for i, pk := range pks {
		out[i] = FromPublicKey(pk)
	}
	return out
}

// randomTree builds a valid tree over pool with random shape, weights and
// thresholds.
func randomTree(t testing.TB, r *rand.Rand, pool []keys.PublicKey, depth int) *Key {
	t.Helper()
	if depth <= 1 || r.Intn(3) == 0 {
		return FromPublicKey(pool[r.Intn(len(pool))])
	}
	n := 1 + r.Intn(4)
	children := make([]Weighted, n)
	total := 0
	for i := range children {
		w := 1 + r.Intn(3)
		total += w
		children[i] = Weighted{Key: randomTree(t, r, pool, depth-1), Weight: w}
	}
	k, err := New(children, 1+r.Intn(total))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return k
}

// randomSubset returns a random subset of pks.
func randomSubset(r *rand.Rand, pks []keys.PublicKey) []keys.PublicKey {
	var out []keys.PublicKey
	for _, pk := range pks {
		if r.Intn(2) == 0 {
			out = append(out, pk)
		}
	}
	return out
}

package compositekey

import (
	"math/rand"
	"testing"
)

const propertyIterations = 300

func TestProperty_AllLeavesFulfil(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pool := testPublicKeys(t, 8)
	for i := 0; i < propertyIterations; i++ {
		k := randomTree(t, r, pool, 5)
		if !k.IsFulfilledByKeys(k.Leaves()...) {
			t.Fatalf("tree %s not fulfilled by all of its leaves", k)
		}
	}
}

func TestProperty_EmptySetNeverFulfils(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	pool := testPublicKeys(t, 8)
	for i := 0; i < propertyIterations; i++ {
		k := randomTree(t, r, pool, 5)
		if k.IsFulfilledBy(KeySet{}) {
			t.Fatalf("tree %s fulfilled by empty set", k)
		}
	}
}

func TestProperty_Monotonic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pool := testPublicKeys(t, 8)
	for i := 0; i < propertyIterations; i++ {
		k := randomTree(t, r, pool, 5)
		small := randomSubset(r, pool)
		large := append(small[:len(small):len(small)], randomSubset(r, pool)...)
		if k.IsFulfilledByKeys(small...) && !k.IsFulfilledByKeys(large...) {
			t.Fatalf("tree %s: adding keys un-fulfilled it", k)
		}
	}
}

func TestProperty_ExplainAgreesWithIsFulfilledBy(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	pool := testPublicKeys(t, 8)
	for i := 0; i < propertyIterations; i++ {
		k := randomTree(t, r, pool, 5)
		set := NewKeySet(randomSubset(r, pool)...)
		if got, want := k.Explain(set).Satisfied, k.IsFulfilledBy(set); got != want {
			t.Fatalf("tree %s: Explain=%v IsFulfilledBy=%v", k, got, want)
		}
	}
}

func TestProperty_EncodingsRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	pool := testPublicKeys(t, 8)
	for i := 0; i < propertyIterations; i++ {
		k := randomTree(t, r, pool, 5)

		fromText, err := Parse(k.String())
		if err != nil {
			t.Fatalf("Parse(%s): %v", k, err)
		}
		if !fromText.Equal(k) || fromText.Hash() != k.Hash() {
			t.Fatalf("text round trip changed %s", k)
		}

		bin, err := k.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		fromBin, err := UnmarshalBinaryKey(bin)
		if err != nil {
			t.Fatalf("UnmarshalBinaryKey(%s): %v", k, err)
		}
		if !fromBin.Equal(k) {
			t.Fatalf("binary round trip changed %s", k)
		}

		fromB58, err := ParseBase58(k.Base58())
		if err != nil {
			t.Fatalf("ParseBase58: %v", err)
		}
		if !fromB58.Equal(k) {
			t.Fatalf("base58 round trip changed %s", k)
		}
		if fromText.Depth() != k.Depth() || fromText.NodeCount() != k.NodeCount() {
			t.Fatalf("decoded tree shape differs for %s", k)
		}
	}
}

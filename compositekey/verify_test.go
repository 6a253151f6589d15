package compositekey

import (
	"testing"

	"xdao.co/ledgertrust/keys"
)

func sign(t *testing.T, s testSigner, msg []byte) Signature {
	t.Helper()
	sig, err := keys.SignEd25519(msg, keys.HashSHA256, s.priv)
	if err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	return Signature{PublicKey: s.pub, Bytes: sig}
}

func TestVerifySignatures_TwoOfThree(t *testing.T) {
	s1, s2, s3, outsider := newTestSigner(t, 1), newTestSigner(t, 2), newTestSigner(t, 3), newTestSigner(t, 4)
	k, err := Threshold(2, leaves(s1.pub, s2.pub, s3.pub)...)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	msg := []byte("tx-bytes")

	ok, err := k.VerifySignatures(msg, []Signature{sign(t, s1, msg), sign(t, s3, msg)}, keys.HashSHA256)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if !ok {
		t.Fatalf("expected two valid signatures to fulfil")
	}

	// Duplicates of the same signer count once; outsiders are ignored.
	ok, err = k.VerifySignatures(msg, []Signature{sign(t, s1, msg), sign(t, s1, msg), sign(t, outsider, msg)}, keys.HashSHA256)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if ok {
		t.Fatalf("expected one distinct signer not to fulfil")
	}
}

func TestVerifySignatures_BadSignatureDoesNotCount(t *testing.T) {
	s1, s2 := newTestSigner(t, 1), newTestSigner(t, 2)
	k, err := AllOf(leaves(s1.pub, s2.pub)...)
	if err != nil {
		t.Fatalf("AllOf: %v", err)
	}
	msg := []byte("tx-bytes")
	forged := sign(t, s2, []byte("other"))

	set, err := k.SignedBy(msg, []Signature{sign(t, s1, msg), forged}, keys.HashSHA256)
	if err != nil {
		t.Fatalf("SignedBy: %v", err)
	}
	if set.Len() != 1 || !set.Contains(s1.pub) {
		t.Fatalf("expected only s1 in signed set, got %v", set.Keys())
	}
	if k.IsFulfilledBy(set) {
		t.Fatalf("expected forged signature not to count")
	}
}

func TestVerifySignatures_MalformedSignatureErrors(t *testing.T) {
	s1 := newTestSigner(t, 1)
	k := FromPublicKey(s1.pub)
	_, err := k.VerifySignatures([]byte("m"), []Signature{{PublicKey: s1.pub, Bytes: []byte{1, 2, 3}}}, keys.HashSHA256)
	if err == nil {
		t.Fatalf("expected malformed signature to error")
	}
	_, err = k.VerifySignatures([]byte("m"), []Signature{sign(t, s1, []byte("m"))}, "md5")
	if err == nil {
		t.Fatalf("expected unknown hash to error")
	}
}

func TestExplain_Reasons(t *testing.T) {
	pks := testPublicKeys(t, 4)
	execs, err := Threshold(2, leaves(pks[0], pks[1], pks[2])...)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	k, err := New([]Weighted{{Key: execs, Weight: 1}, {Key: FromPublicKey(pks[3]), Weight: 1}}, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v := k.Explain(NewKeySet(pks[0]))
	if v.Satisfied || v.Observed != 0 || v.Reasons[0] != "Missing required evidence" {
		t.Fatalf("unexpected root verdict %+v", v)
	}
	if got := v.Children[0]; got.Satisfied || got.Observed != 1 || got.Reasons[0] != "Insufficient weight" {
		t.Fatalf("unexpected execs verdict %+v", got)
	}
	if got := v.Children[0].Children[0]; !got.Leaf || !got.Satisfied {
		t.Fatalf("unexpected leaf verdict %+v", got)
	}
	if got := v.Children[1]; got.Satisfied || got.Reasons[0] != "Missing signature" {
		t.Fatalf("unexpected outsider verdict %+v", got)
	}

	v = k.Explain(NewKeySet(pks...))
	if !v.Satisfied || v.Observed != 2 || v.Reasons[0] != "Satisfied" || v.Weight != 1 {
		t.Fatalf("unexpected satisfied verdict %+v", v)
	}
}

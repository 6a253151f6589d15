// Package compositekey implements composite public keys: immutable trees that
// combine individual public keys into one identity key with a weighted
// threshold at every node.
//
// A leaf wraps a single keys.PublicKey. A node holds an ordered list of
// weighted children and a threshold; it is fulfilled when the summed weight
// of its fulfilled children reaches the threshold. "Any of" (threshold 1) and
// "all of" (threshold = total weight) are the two extremes, and nesting
// composes them, for example "2 of 3 executives, or compliance and audit":
//
//	execs, _ := compositekey.Threshold(2, e1, e2, e3)
//	controls, _ := compositekey.AllOf(compliance, audit)
//	policy, _ := compositekey.AnyOf(execs, controls)
//
// Identity is structural. Key.String returns the canonical text form, which
// is the display and interchange contract (see Parse for the grammar);
// equality and Hash are derived from it. MarshalBinary gives an equivalent
// protobuf-wire encoding, Base58 and CID give compact derived identifiers.
package compositekey

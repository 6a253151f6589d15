// Package keys models the individual public keys that sit at the leaves of a
// composite key.
//
// A key is rendered as "<alg>:<base64>", for example "ed25519:3q2+7w==".
// Supported algorithms are Ed25519 and Dilithium3. Signatures always cover a
// digest of the message (sha256, sha512 or sha3-256), never the raw message.
//
// The seed and signing helpers exist for tests and for the CLI; long-lived
// private key custody is the job of an external key management service.
package keys

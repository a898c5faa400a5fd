// Package hash provides helpers for hashing and verifying secrets.
//
// Passcodes are stored as keyed digests only: the issuer persists Hash(code)
// and the verifier checks the submitted value with Verify.
package hash

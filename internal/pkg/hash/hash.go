package hash

import "errors"

// ErrEmptySecret is returned when a keyed hasher is built without a secret.
var ErrEmptySecret = errors.New("hash: secret must not be empty")

// Hash produces a digest of a secret and verifies plaintext against it.
type Hash interface {
	// Hash returns the digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored digest in constant time.
	Verify(hashed, str string) bool
}

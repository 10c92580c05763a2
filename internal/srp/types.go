package srp

import (
	"errors"
	"math/big"
)

// ErrInvalidEphemeral означает, что клиент прислал A ≡ 0 (mod N) или вырожденный u.
// Такой клиент либо сломан, либо пытается обойти проверку пароля.
var ErrInvalidEphemeral = errors.New("invalid client ephemeral")

var errZeroPublic = errors.New("server ephemeral is zero mod N")

// Salt is the per-account random salt.
type Salt [KeySize]byte

// Verifier is v = g^x mod N, little-endian.
type Verifier [KeySize]byte

// PublicKey is an ephemeral public value (A or B), little-endian.
type PublicKey [KeySize]byte

// SharedSecret is S, little-endian.
type SharedSecret [KeySize]byte

// SessionKey is the 40-byte interleaved key K.
type SessionKey [SessionKeySize]byte

// Proof is a SHA-1 proof value (M1, M2, reconnect R2).
type Proof [ProofSize]byte

// Int returns the verifier as an integer.
func (v Verifier) Int() *big.Int {
	return fromLE(v[:])
}

// Int returns the public value as an integer.
func (p PublicKey) Int() *big.Int {
	return fromLE(p[:])
}

// IsZero reports whether the session key is unset.
func (k SessionKey) IsZero() bool {
	return k == SessionKey{}
}

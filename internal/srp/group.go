// Package srp implements the SRP6 variant used by the legacy WoW auth protocol.
//
// All integers travel little-endian and fixed-width (32 bytes). The session key
// is not a plain hash of S: see InterleaveHash.
package srp

import (
	"crypto/sha1"
	"encoding/hex"
	"math/big"

	"github.com/udisondev/realmd/internal/constants"
)

const (
	KeySize        = constants.SRPKeySize
	ProofSize      = constants.SRPProofSize
	SessionKeySize = constants.SessionKeySize
	ChallengeSize  = constants.ReconnectChallengeSize
)

// Generator is g as sent in the challenge reply.
const Generator = 7

var (
	// N is the 256-bit prime every client has compiled in.
	N = mustBigHex("894B645E89E1535BBDAD5B8B290650530801B18EBFBF5E8FAB3C82872A3E9BB7")

	// G is the group generator.
	G = big.NewInt(Generator)

	// Multiplier is k. The legacy client uses a literal 3, not SRP6a's H(N, g).
	Multiplier = big.NewInt(3)

	// nLE is N in wire order.
	nLE = toLE(N)

	// hashNG is H(N) xor H(g), the first input of M1.
	hashNG = xorDigests(sha1.Sum(nLE[:]), sha1.Sum([]byte{Generator}))
)

// Modulus returns N as 32 little-endian bytes, ready for the challenge reply.
func Modulus() [KeySize]byte {
	return nLE
}

func mustBigHex(s string) *big.Int {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(b)
}

func xorDigests(a, b [sha1.Size]byte) [sha1.Size]byte {
	var out [sha1.Size]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// toLE encodes a non-negative integer below 2^256 as 32 little-endian bytes.
func toLE(n *big.Int) [KeySize]byte {
	var out [KeySize]byte
	n.FillBytes(out[:])
	reverse(out[:])
	return out
}

// fromLE decodes little-endian bytes into a new integer.
func fromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	copy(be, b)
	reverse(be)
	return new(big.Int).SetBytes(be)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func sha1Sum(parts ...[]byte) [sha1.Size]byte {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [sha1.Size]byte
	h.Sum(out[:0])
	return out
}

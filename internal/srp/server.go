package srp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// secretSize is the size of the random server exponent b.
const secretSize = 32

// Challenge is the server ephemeral pair of one handshake.
// secret never leaves the process and must not be reused.
type Challenge struct {
	secret *big.Int
	Public PublicKey
}

// GenerateChallenge picks a random b and computes B = (k*v + g^b) mod N.
// B ≡ 0 is redrawn.
func GenerateChallenge(v Verifier) (Challenge, error) {
	buf := make([]byte, secretSize)
	for {
		if _, err := rand.Read(buf); err != nil {
			return Challenge{}, fmt.Errorf("generating server secret: %w", err)
		}
		c, err := NewChallenge(v, new(big.Int).SetBytes(buf))
		if errors.Is(err, errZeroPublic) {
			continue
		}
		return c, err
	}
}

// NewChallenge computes B for a caller-supplied secret b.
func NewChallenge(v Verifier, b *big.Int) (Challenge, error) {
	pub := new(big.Int).Exp(G, b, N)
	kv := new(big.Int).Mul(Multiplier, v.Int())
	pub.Add(pub, kv)
	pub.Mod(pub, N)
	if pub.Sign() == 0 {
		return Challenge{}, errZeroPublic
	}
	return Challenge{secret: new(big.Int).Set(b), Public: PublicKey(toLE(pub))}, nil
}

// ComputeSessionKey derives S = (A * v^u)^b mod N and the interleaved key K.
func ComputeSessionKey(c Challenge, clientPublic PublicKey, v Verifier) (SharedSecret, SessionKey, error) {
	if c.secret == nil {
		return SharedSecret{}, SessionKey{}, fmt.Errorf("challenge has no secret")
	}

	a := clientPublic.Int()
	if new(big.Int).Mod(a, N).Sign() == 0 {
		return SharedSecret{}, SessionKey{}, ErrInvalidEphemeral
	}

	u := scramble(clientPublic, c.Public)
	if u.Sign() == 0 {
		return SharedSecret{}, SessionKey{}, ErrInvalidEphemeral
	}

	s := new(big.Int).Exp(v.Int(), u, N)
	s.Mul(s, a)
	s.Mod(s, N)
	s.Exp(s, c.secret, N)

	secret := SharedSecret(toLE(s))
	return secret, InterleaveHash(secret), nil
}

// u = H(A | B), read little-endian
func scramble(clientPublic, serverPublic PublicKey) *big.Int {
	u := sha1Sum(clientPublic[:], serverPublic[:])
	return fromLE(u[:])
}

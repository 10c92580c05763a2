package srp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// NewVerifier derives v from credentials. The client hashes upper-cased
// username and password, so both are upper-cased here too.
func NewVerifier(username, password string, salt Salt) Verifier {
	x := credentialsHash(username, password, salt)
	return Verifier(toLE(new(big.Int).Exp(G, x, N)))
}

// Register generates a fresh salt and the matching verifier for a new account.
func Register(username, password string) (Salt, Verifier, error) {
	var salt Salt
	if _, err := rand.Read(salt[:]); err != nil {
		return Salt{}, Verifier{}, fmt.Errorf("generating salt: %w", err)
	}
	return salt, NewVerifier(username, password, salt), nil
}

// x = H(s | H(I ":" P)), read little-endian
func credentialsHash(username, password string, salt Salt) *big.Int {
	inner := sha1Sum([]byte(strings.ToUpper(username) + ":" + strings.ToUpper(password)))
	x := sha1Sum(salt[:], inner[:])
	return fromLE(x[:])
}

package srp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Client is the client half of the exchange. The server never needs it;
// it backs the test client and the account tooling self-check.
type Client struct {
	username string
	password string
	secret   *big.Int
	public   PublicKey
}

// NewClient creates a client with a random secret a.
func NewClient(username, password string) (*Client, error) {
	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating client secret: %w", err)
	}
	return NewClientWithSecret(username, password, new(big.Int).SetBytes(buf)), nil
}

// NewClientWithSecret creates a client with a fixed secret a.
func NewClientWithSecret(username, password string, a *big.Int) *Client {
	return &Client{
		username: strings.ToUpper(username),
		password: strings.ToUpper(password),
		secret:   new(big.Int).Set(a),
		public:   PublicKey(toLE(new(big.Int).Exp(G, a, N))),
	}
}

// Username returns the upper-cased account name sent on the wire.
func (c *Client) Username() string {
	return c.username
}

// Public returns A = g^a mod N.
func (c *Client) Public() PublicKey {
	return c.public
}

// SessionKey computes S = (B - k*g^x)^(a + u*x) mod N and K.
func (c *Client) SessionKey(salt Salt, serverPublic PublicKey) (SharedSecret, SessionKey, error) {
	b := serverPublic.Int()
	if new(big.Int).Mod(b, N).Sign() == 0 {
		return SharedSecret{}, SessionKey{}, ErrInvalidEphemeral
	}

	x := credentialsHash(c.username, c.password, salt)
	u := scramble(c.public, serverPublic)

	gx := new(big.Int).Exp(G, x, N)
	base := new(big.Int).Mul(Multiplier, gx)
	base.Sub(b, base)
	base.Mod(base, N)

	exp := new(big.Int).Mul(u, x)
	exp.Add(exp, c.secret)

	s := new(big.Int).Exp(base, exp, N)
	secret := SharedSecret(toLE(s))
	return secret, InterleaveHash(secret), nil
}

// Proof computes M1 for the given exchange.
func (c *Client) Proof(salt Salt, serverPublic PublicKey, key SessionKey) Proof {
	return ClientProof(c.username, salt, c.public, serverPublic, key)
}

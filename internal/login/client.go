package login

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/realmd/internal/srp"
)

// handshake is the logon context between challenge and proof.
// It never leaves the connection.
type handshake struct {
	salt      srp.Salt
	verifier  srp.Verifier
	challenge srp.Challenge
}

// reconnect is the context between reconnect challenge and proof.
type reconnect struct {
	challenge [srp.ChallengeSize]byte
	// stored is the key loaded from the account store when the registry had none.
	stored srp.SessionKey
}

// Client represents a single client connection to the auth server.
type Client struct {
	conn net.Conn
	ip   string
	id   uuid.UUID

	state     ConnectionState
	account   string
	accountID int64
	build     uint16
	handshake *handshake
	reconnect *reconnect

	mu sync.Mutex
}

// NewClient creates a new auth client state for the given connection.
func NewClient(conn net.Conn) (*Client, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	return &Client{
		conn:  conn,
		ip:    host,
		id:    uuid.New(),
		state: StateAwaitingChallenge,
	}, nil
}

// IP returns the client's remote IP address.
func (c *Client) IP() string {
	return c.ip
}

// ID returns the connection correlation ID used in logs.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState sets the connection state.
func (c *Client) SetState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Account returns the upper-case account name from the last challenge.
func (c *Client) Account() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// AccountID returns the store ID of the account, 0 until it is found.
func (c *Client) AccountID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID
}

// Build returns the client build from the last challenge.
func (c *Client) Build() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build
}

func (c *Client) setIdentity(account string, build uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = account
	c.build = build
}

func (c *Client) setAccountID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountID = id
}

func (c *Client) beginHandshake(hs *handshake) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handshake = hs
}

// takeHandshake returns the pending handshake and forgets it.
func (c *Client) takeHandshake() *handshake {
	c.mu.Lock()
	defer c.mu.Unlock()
	hs := c.handshake
	c.handshake = nil
	return hs
}

func (c *Client) beginReconnect(rc *reconnect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnect = rc
}

// takeReconnect returns the pending reconnect context and forgets it.
func (c *Client) takeReconnect() *reconnect {
	c.mu.Lock()
	defer c.mu.Unlock()
	rc := c.reconnect
	c.reconnect = nil
	return rc
}

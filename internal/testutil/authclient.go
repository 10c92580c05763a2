package testutil

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/crypto"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/protocol"
	"github.com/udisondev/realmd/internal/srp"
)

// StatusError is returned when the server answers with a non-success status.
type StatusError struct {
	Op     protocol.Opcode
	Status protocol.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %s", e.Op, e.Status)
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status protocol.Status) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// AuthClient speaks the client side of the auth protocol for integration tests.
type AuthClient struct {
	t       testing.TB
	conn    net.Conn
	build   uint16
	timeout time.Duration
}

// NewAuthClient подключается к auth серверу и закрывает соединение через t.Cleanup.
func NewAuthClient(t testing.TB, addr string, build uint16) (*AuthClient, error) {
	t.Helper()

	// Retry dial с экспоненциальным бэкофф + jitter
	var conn net.Conn
	var err error
	for attempt := range 10 {
		conn, err = net.DialTimeout("tcp", addr, 5*time.Second)
		if err == nil {
			break
		}
		if attempt < 9 {
			base := time.Duration(20<<min(attempt, 6)) * time.Millisecond
			jitter := time.Duration(rand.IntN(int(base/2) + 1))
			time.Sleep(base + jitter)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial auth server: %w", err)
	}

	return NewAuthClientConn(t, conn, build), nil
}

// NewAuthClientConn оборачивает готовое соединение (например, из PipeConn).
func NewAuthClientConn(t testing.TB, conn net.Conn, build uint16) *AuthClient {
	c := &AuthClient{
		t:       t,
		conn:    conn,
		build:   build,
		timeout: 5 * time.Second,
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Close закрывает соединение.
func (c *AuthClient) Close() error {
	return c.conn.Close()
}

// Conn возвращает соединение для низкоуровневых тестов.
func (c *AuthClient) Conn() net.Conn {
	return c.conn
}

// Send writes one encoded frame.
func (c *AuthClient) Send(e protocol.Encoder) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	if _, err := c.conn.Write(protocol.EncodeFrame(e)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadN reads exactly n bytes.
func (c *AuthClient) ReadN(n int) ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return buf, nil
}

// ExpectClosed проверяет, что сервер закрыл соединение.
func (c *AuthClient) ExpectClosed() error {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	var one [1]byte
	n, err := c.conn.Read(one[:])
	if err == nil {
		return fmt.Errorf("expected closed connection, got %d bytes", n)
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("expected closed connection, read timed out")
	}
	// RST вместо FIN тоже закрытие
	return nil
}

func (c *AuthClient) postBC() bool {
	return protocol.IsPostBC(c.build)
}

func versionFor(build uint16) [3]byte {
	switch {
	case build >= constants.BuildWotLK:
		return [3]byte{3, 3, 5}
	case build >= constants.FirstPostBCBuild:
		return [3]byte{2, 4, 3}
	default:
		return [3]byte{1, 12, 1}
	}
}

// ChallengeResult is the decoded success body of the challenge reply.
type ChallengeResult struct {
	B       srp.PublicKey
	G       byte
	N       [srp.KeySize]byte
	Salt    srp.Salt
	Version [constants.VersionChallengeSize]byte
	Flags   byte
}

// LogonChallenge sends the challenge and reads the reply.
func (c *AuthClient) LogonChallenge(username string) (ChallengeResult, error) {
	var res ChallengeResult

	info := protocol.NewChallengeInfo(username, c.build, versionFor(c.build))
	if err := c.Send(protocol.LogonChallenge{ChallengeInfo: info}); err != nil {
		return res, err
	}

	head, err := c.ReadN(3)
	if err != nil {
		return res, err
	}
	if protocol.Opcode(head[0]) != protocol.OpLogonChallenge {
		return res, fmt.Errorf("unexpected reply opcode 0x%02X", head[0])
	}
	if status := protocol.Status(head[2]); status != protocol.StatusSuccess {
		return res, &StatusError{Op: protocol.OpLogonChallenge, Status: status}
	}

	body, err := c.ReadN(srp.KeySize + 2 + 1 + srp.KeySize + srp.KeySize + constants.VersionChallengeSize + 1)
	if err != nil {
		return res, err
	}

	// B, g_len, g, N_len, N, salt, version challenge, security flags
	off := 0
	off += copy(res.B[:], body[off:])
	gLen := body[off]
	res.G = body[off+1]
	nLen := body[off+2]
	off += 3
	off += copy(res.N[:], body[off:])
	off += copy(res.Salt[:], body[off:])
	off += copy(res.Version[:], body[off:])
	res.Flags = body[off]

	if gLen != 1 || nLen != srp.KeySize {
		return res, fmt.Errorf("unexpected group lengths g=%d N=%d", gLen, nLen)
	}
	return res, nil
}

// ProofResult is the decoded success body of the proof reply.
type ProofResult struct {
	M2           srp.Proof
	AccountFlags uint32
}

// LogonProof sends A and M1 and reads the reply.
func (c *AuthClient) LogonProof(a srp.PublicKey, m1 srp.Proof) (ProofResult, error) {
	var res ProofResult

	if err := c.Send(protocol.LogonProof{A: a, M1: m1}); err != nil {
		return res, err
	}

	head, err := c.ReadN(2)
	if err != nil {
		return res, err
	}
	if protocol.Opcode(head[0]) != protocol.OpLogonProof {
		return res, fmt.Errorf("unexpected reply opcode 0x%02X", head[0])
	}
	if status := protocol.Status(head[1]); status != protocol.StatusSuccess {
		if c.postBC() {
			if _, err := c.ReadN(2); err != nil {
				return res, err
			}
		}
		return res, &StatusError{Op: protocol.OpLogonProof, Status: status}
	}

	n := srp.ProofSize + 4
	if c.postBC() {
		n += 4 + 2
	}
	body, err := c.ReadN(n)
	if err != nil {
		return res, err
	}

	r := protocol.NewReader(body)
	if err := r.ReadInto(res.M2[:]); err != nil {
		return res, err
	}
	if res.AccountFlags, err = r.ReadUint32(); err != nil {
		return res, err
	}
	return res, nil
}

// Login runs the full SRP handshake and verifies M2.
// Returns the session key the client derived.
func (c *AuthClient) Login(username, password string) (srp.SessionKey, error) {
	ch, err := c.LogonChallenge(username)
	if err != nil {
		return srp.SessionKey{}, err
	}

	sc, err := srp.NewClient(username, password)
	if err != nil {
		return srp.SessionKey{}, err
	}
	_, key, err := sc.SessionKey(ch.Salt, ch.B)
	if err != nil {
		return srp.SessionKey{}, fmt.Errorf("client session key: %w", err)
	}
	m1 := sc.Proof(ch.Salt, ch.B, key)

	res, err := c.LogonProof(sc.Public(), m1)
	if err != nil {
		return srp.SessionKey{}, err
	}

	expected := srp.ServerProof(sc.Public(), m1, key)
	if !crypto.Equal(expected[:], res.M2[:]) {
		return srp.SessionKey{}, fmt.Errorf("server proof M2 mismatch")
	}
	return key, nil
}

// Reconnect runs the reconnect handshake with a previously derived key.
func (c *AuthClient) Reconnect(username string, key srp.SessionKey) error {
	info := protocol.NewChallengeInfo(username, c.build, versionFor(c.build))
	if err := c.Send(protocol.ReconnectChallenge{ChallengeInfo: info}); err != nil {
		return err
	}

	head, err := c.ReadN(2)
	if err != nil {
		return err
	}
	if protocol.Opcode(head[0]) != protocol.OpReconnectChallenge {
		return fmt.Errorf("unexpected reply opcode 0x%02X", head[0])
	}
	if status := protocol.Status(head[1]); status != protocol.StatusSuccess {
		return &StatusError{Op: protocol.OpReconnectChallenge, Status: status}
	}

	body, err := c.ReadN(constants.ReconnectChallengeSize + constants.VersionChallengeSize)
	if err != nil {
		return err
	}
	var serverChallenge [srp.ChallengeSize]byte
	copy(serverChallenge[:], body)

	var r1 [srp.ChallengeSize]byte
	random, err := crypto.RandomBytes(srp.ChallengeSize)
	if err != nil {
		return err
	}
	copy(r1[:], random)

	proof := protocol.ReconnectProof{
		R1: r1,
		R2: srp.ReconnectProof(model.NormalizeUsername(username), r1, serverChallenge, key),
	}
	if err := c.Send(proof); err != nil {
		return err
	}

	n := 2
	if c.postBC() {
		n = 4
	}
	reply, err := c.ReadN(n)
	if err != nil {
		return err
	}
	if protocol.Opcode(reply[0]) != protocol.OpReconnectProof {
		return fmt.Errorf("unexpected reply opcode 0x%02X", reply[0])
	}
	if status := protocol.Status(reply[1]); status != protocol.StatusSuccess {
		return &StatusError{Op: protocol.OpReconnectProof, Status: status}
	}
	return nil
}

// RealmList requests and decodes the realm list.
func (c *AuthClient) RealmList() ([]protocol.RealmEntry, error) {
	if err := c.Send(protocol.RealmListRequest{}); err != nil {
		return nil, err
	}

	head, err := c.ReadN(3)
	if err != nil {
		return nil, err
	}
	if protocol.Opcode(head[0]) != protocol.OpRealmList {
		return nil, fmt.Errorf("unexpected reply opcode 0x%02X", head[0])
	}
	size := int(head[1]) | int(head[2])<<8

	body, err := c.ReadN(size)
	if err != nil {
		return nil, err
	}
	return DecodeRealmList(body, c.build)
}

// DecodeRealmList parses the realm list body (everything after the size field).
func DecodeRealmList(body []byte, build uint16) ([]protocol.RealmEntry, error) {
	postBC := protocol.IsPostBC(build)
	r := protocol.NewReader(body)

	if _, err := r.ReadUint32(); err != nil {
		return nil, err
	}

	var count int
	if postBC {
		n, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		count = int(n)
	} else {
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		count = int(n)
	}

	realms := make([]protocol.RealmEntry, 0, count)
	for range count {
		e, err := decodeRealmEntry(r, postBC)
		if err != nil {
			return nil, fmt.Errorf("realm %d: %w", len(realms), err)
		}
		realms = append(realms, e)
	}

	if r.Remaining() != 2 {
		return nil, fmt.Errorf("expected 2 trailer bytes, got %d", r.Remaining())
	}
	return realms, nil
}

func decodeRealmEntry(r *protocol.Reader, postBC bool) (protocol.RealmEntry, error) {
	var e protocol.RealmEntry
	var err error

	if postBC {
		if e.Type, err = r.ReadByte(); err != nil {
			return e, err
		}
		locked, err := r.ReadByte()
		if err != nil {
			return e, err
		}
		e.Locked = locked != 0
	} else {
		t, err := r.ReadUint32()
		if err != nil {
			return e, err
		}
		e.Type = uint8(t)
	}

	if e.Flags, err = r.ReadByte(); err != nil {
		return e, err
	}
	if e.Name, err = r.ReadCString(); err != nil {
		return e, err
	}
	if e.Address, err = r.ReadCString(); err != nil {
		return e, err
	}
	pop, err := r.ReadUint32()
	if err != nil {
		return e, err
	}
	e.Population = math.Float32frombits(pop)
	if e.Characters, err = r.ReadByte(); err != nil {
		return e, err
	}
	if e.Timezone, err = r.ReadByte(); err != nil {
		return e, err
	}
	if e.ID, err = r.ReadByte(); err != nil {
		return e, err
	}

	if postBC && e.Flags&0x04 != 0 {
		if err := r.ReadInto(e.Version[:]); err != nil {
			return e, err
		}
		if e.Build, err = r.ReadUint16(); err != nil {
			return e, err
		}
	}
	return e, nil
}

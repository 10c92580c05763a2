package protocol

import (
	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/srp"
)

// Frame is a decoded client message.
type Frame interface {
	Opcode() Opcode
}

// ChallengeInfo is the body shared by LogonChallenge and ReconnectChallenge.
type ChallengeInfo struct {
	Error        byte
	GameName     [4]byte // "WoW\0"
	Version      [3]byte // major, minor, patch
	Build        uint16
	Platform     [4]byte // reversed fourcc: "68x\0"
	OS           [4]byte // "niW\0"
	Country      [4]byte // "SUne"
	TimezoneBias uint32
	IP           [4]byte
	Account      string
}

// LogonChallenge starts a full SRP handshake.
type LogonChallenge struct {
	ChallengeInfo
}

func (LogonChallenge) Opcode() Opcode { return OpLogonChallenge }

// ReconnectChallenge starts the lightweight reconnect handshake.
type ReconnectChallenge struct {
	ChallengeInfo
}

func (ReconnectChallenge) Opcode() Opcode { return OpReconnectChallenge }

// LogonProof carries the client ephemeral A and proof M1.
type LogonProof struct {
	A             srp.PublicKey
	M1            srp.Proof
	CRC           [20]byte
	NumKeys       byte
	SecurityFlags byte
}

func (LogonProof) Opcode() Opcode { return OpLogonProof }

// ReconnectProof carries R1 (client challenge) and R2 (proof).
// R3 is a hash of client binaries; the server never checks it.
type ReconnectProof struct {
	R1      [constants.ReconnectChallengeSize]byte
	R2      srp.Proof
	R3      [20]byte
	NumKeys byte
}

func (ReconnectProof) Opcode() Opcode { return OpReconnectProof }

// RealmListRequest asks for the realm list. Its 4-byte body is padding.
type RealmListRequest struct{}

func (RealmListRequest) Opcode() Opcode { return OpRealmList }

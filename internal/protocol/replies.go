package protocol

import (
	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/srp"
)

// VersionChallenge is the fixed 16-byte value every retail server sends
// after the salt in the challenge reply.
var VersionChallenge = [constants.VersionChallengeSize]byte{
	0xBA, 0xA3, 0x1E, 0x99, 0xA0, 0x0B, 0x21, 0x57,
	0xFC, 0x37, 0x3F, 0xB3, 0x69, 0xCD, 0xD2, 0xF1,
}

// Security flags of the challenge reply.
const (
	SecurityFlagPIN    byte = 0x01
	SecurityFlagMatrix byte = 0x02
	SecurityFlagToken  byte = 0x04
)

// Encoder writes exactly Size() bytes into buf and returns the count;
// buf must be at least Size() long.
type Encoder interface {
	Size() int
	Encode(buf []byte) int
}

// Reply is a server message.
type Reply interface {
	Opcode() Opcode
	Encoder
}

// EncodeFrame serializes a message into a fresh slice.
func EncodeFrame(e Encoder) []byte {
	buf := make([]byte, e.Size())
	return buf[:e.Encode(buf)]
}

// IsPostBC reports whether build uses the extended (2.x+) reply layouts.
func IsPostBC(build uint16) bool {
	return build >= constants.FirstPostBCBuild
}

// PINChallenge is the optional PIN section (SecurityFlagPIN).
type PINChallenge struct {
	GridSeed uint32
	Salt     [16]byte
}

// MatrixChallenge is the optional matrix card section (SecurityFlagMatrix).
type MatrixChallenge struct {
	Width          byte
	Height         byte
	DigitCount     byte
	ChallengeCount byte
	Seed           uint64
}

// LogonChallengeReply answers LogonChallenge.
// On failure only opcode, 0x00 and Status are sent.
type LogonChallengeReply struct {
	Status Status
	B      srp.PublicKey
	Salt   srp.Salt

	PIN    *PINChallenge
	Matrix *MatrixChallenge
	Token  bool
}

func (LogonChallengeReply) Opcode() Opcode { return OpLogonChallenge }

// SecurityFlags returns the flags byte derived from the optional sections.
func (r LogonChallengeReply) SecurityFlags() byte {
	var flags byte
	if r.PIN != nil {
		flags |= SecurityFlagPIN
	}
	if r.Matrix != nil {
		flags |= SecurityFlagMatrix
	}
	if r.Token {
		flags |= SecurityFlagToken
	}
	return flags
}

func (r LogonChallengeReply) Size() int {
	if r.Status != StatusSuccess {
		return 3
	}
	// opcode, 0, status, B, g_len, g, N_len, N, salt, version challenge, flags
	n := 3 + srp.KeySize + 1 + 1 + 1 + srp.KeySize + srp.KeySize + constants.VersionChallengeSize + 1
	if r.PIN != nil {
		n += 4 + 16
	}
	if r.Matrix != nil {
		n += 4 + 8
	}
	if r.Token {
		n++
	}
	return n
}

func (r LogonChallengeReply) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpLogonChallenge))
	w.putByte(0x00)
	w.putByte(byte(r.Status))
	if r.Status != StatusSuccess {
		return w.off
	}

	n := srp.Modulus()
	w.putBytes(r.B[:])
	w.putByte(1)
	w.putByte(srp.Generator)
	w.putByte(srp.KeySize)
	w.putBytes(n[:])
	w.putBytes(r.Salt[:])
	w.putBytes(VersionChallenge[:])
	w.putByte(r.SecurityFlags())

	if r.PIN != nil {
		w.putUint32(r.PIN.GridSeed)
		w.putBytes(r.PIN.Salt[:])
	}
	if r.Matrix != nil {
		w.putByte(r.Matrix.Width)
		w.putByte(r.Matrix.Height)
		w.putByte(r.Matrix.DigitCount)
		w.putByte(r.Matrix.ChallengeCount)
		w.putUint64(r.Matrix.Seed)
	}
	if r.Token {
		w.putByte(1)
	}
	return w.off
}

// LogonProofReply answers LogonProof. The layout depends on the client build.
type LogonProofReply struct {
	Build        uint16
	Status       Status
	M2           srp.Proof
	AccountFlags uint32
	SurveyID     uint32
	LoginFlags   uint16
}

func (LogonProofReply) Opcode() Opcode { return OpLogonProof }

func (r LogonProofReply) Size() int {
	postBC := IsPostBC(r.Build)
	switch {
	case r.Status != StatusSuccess && postBC:
		return 4
	case r.Status != StatusSuccess:
		return 2
	case postBC:
		return 2 + srp.ProofSize + 4 + 4 + 2
	default:
		return 2 + srp.ProofSize + 4
	}
}

func (r LogonProofReply) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpLogonProof))
	w.putByte(byte(r.Status))

	postBC := IsPostBC(r.Build)
	if r.Status != StatusSuccess {
		if postBC {
			w.putUint16(0)
		}
		return w.off
	}

	w.putBytes(r.M2[:])
	if postBC {
		w.putUint32(r.AccountFlags)
		w.putUint32(r.SurveyID)
		w.putUint16(r.LoginFlags)
	} else {
		w.putUint32(0)
	}
	return w.off
}

// ReconnectChallengeReply answers ReconnectChallenge with a fresh server challenge.
type ReconnectChallengeReply struct {
	Status    Status
	Challenge [constants.ReconnectChallengeSize]byte
}

func (ReconnectChallengeReply) Opcode() Opcode { return OpReconnectChallenge }

func (r ReconnectChallengeReply) Size() int {
	if r.Status != StatusSuccess {
		return 2
	}
	return 2 + constants.ReconnectChallengeSize + constants.VersionChallengeSize
}

func (r ReconnectChallengeReply) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpReconnectChallenge))
	w.putByte(byte(r.Status))
	if r.Status != StatusSuccess {
		return w.off
	}
	w.putBytes(r.Challenge[:])
	w.putBytes(VersionChallenge[:])
	return w.off
}

// ReconnectProofReply answers ReconnectProof.
type ReconnectProofReply struct {
	Build  uint16
	Status Status
}

func (ReconnectProofReply) Opcode() Opcode { return OpReconnectProof }

func (r ReconnectProofReply) Size() int {
	if IsPostBC(r.Build) {
		return 4
	}
	return 2
}

func (r ReconnectProofReply) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpReconnectProof))
	w.putByte(byte(r.Status))
	if IsPostBC(r.Build) {
		w.putUint16(0)
	}
	return w.off
}

package protocol

import (
	"github.com/udisondev/realmd/internal/constants"
)

// Client frame encoders. The server never sends these; they back the test
// client and let codec tests build frames without hand-written byte slices.

func (f ChallengeInfo) size() int {
	return constants.ChallengeHeaderSize + constants.ChallengeFixedBodySize + len(f.Account)
}

func (f ChallengeInfo) encode(op Opcode, buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(op))
	w.putByte(f.Error)
	w.putUint16(uint16(constants.ChallengeFixedBodySize + len(f.Account)))
	w.putBytes(f.GameName[:])
	w.putBytes(f.Version[:])
	w.putUint16(f.Build)
	w.putBytes(f.Platform[:])
	w.putBytes(f.OS[:])
	w.putBytes(f.Country[:])
	w.putUint32(f.TimezoneBias)
	w.putBytes(f.IP[:])
	w.putByte(byte(len(f.Account)))
	w.putBytes([]byte(f.Account))
	return w.off
}

func (f LogonChallenge) Size() int             { return f.size() }
func (f LogonChallenge) Encode(buf []byte) int { return f.encode(OpLogonChallenge, buf) }

func (f ReconnectChallenge) Size() int             { return f.size() }
func (f ReconnectChallenge) Encode(buf []byte) int { return f.encode(OpReconnectChallenge, buf) }

func (LogonProof) Size() int { return 1 + constants.LogonProofBodySize }

func (f LogonProof) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpLogonProof))
	w.putBytes(f.A[:])
	w.putBytes(f.M1[:])
	w.putBytes(f.CRC[:])
	w.putByte(f.NumKeys)
	w.putByte(f.SecurityFlags)
	return w.off
}

func (ReconnectProof) Size() int { return 1 + constants.ReconnectProofBodySize }

func (f ReconnectProof) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpReconnectProof))
	w.putBytes(f.R1[:])
	w.putBytes(f.R2[:])
	w.putBytes(f.R3[:])
	w.putByte(f.NumKeys)
	return w.off
}

func (RealmListRequest) Size() int { return 1 + constants.RealmListBodySize }

func (RealmListRequest) Encode(buf []byte) int {
	w := writer{buf: buf}
	w.putByte(byte(OpRealmList))
	w.putUint32(0)
	return w.off
}

// NewChallengeInfo fills the fixed fields the way a retail enUS Windows client does.
func NewChallengeInfo(account string, build uint16, version [3]byte) ChallengeInfo {
	return ChallengeInfo{
		Error:    0x08,
		GameName: [4]byte{'W', 'o', 'W', 0},
		Version:  version,
		Build:    build,
		Platform: [4]byte{'6', '8', 'x', 0},
		OS:       [4]byte{'n', 'i', 'W', 0},
		Country:  [4]byte{'S', 'U', 'n', 'e'},
		IP:       [4]byte{127, 0, 0, 1},
		Account:  account,
	}
}

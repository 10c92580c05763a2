package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/udisondev/realmd/internal/constants"
)

// ErrMalformedFrame is returned for any frame the codec cannot accept:
// unknown opcode, inconsistent size, oversize account name.
var ErrMalformedFrame = errors.New("malformed frame")

// TryDecodeFrame decodes one frame from the head of buf.
//
// Returns (nil, 0, nil) if buf holds an incomplete frame: the caller must read
// more bytes and call again. On success returns the frame and the number of
// bytes consumed. The returned frame never aliases buf.
func TryDecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) == 0 {
		return nil, 0, nil
	}

	op := Opcode(buf[0])
	switch op {
	case OpLogonChallenge, OpReconnectChallenge:
		return decodeChallenge(op, buf)
	case OpLogonProof:
		return decodeFixed(buf, constants.LogonProofBodySize, decodeLogonProof)
	case OpReconnectProof:
		return decodeFixed(buf, constants.ReconnectProofBodySize, decodeReconnectProof)
	case OpRealmList:
		return decodeFixed(buf, constants.RealmListBodySize, func(*Reader) (Frame, error) {
			return RealmListRequest{}, nil
		})
	default:
		if op.isTransfer() {
			return nil, 0, fmt.Errorf("%w: %s is not supported", ErrMalformedFrame, op)
		}
		return nil, 0, fmt.Errorf("%w: unknown opcode 0x%02X", ErrMalformedFrame, byte(op))
	}
}

func decodeFixed(buf []byte, bodySize int, decode func(*Reader) (Frame, error)) (Frame, int, error) {
	total := 1 + bodySize
	if len(buf) < total {
		return nil, 0, nil
	}
	frame, err := decode(NewReader(buf[1:total]))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, Opcode(buf[0]), err)
	}
	return frame, total, nil
}

// opcode, error, size(u16), body[size]
func decodeChallenge(op Opcode, buf []byte) (Frame, int, error) {
	if len(buf) < constants.ChallengeHeaderSize {
		return nil, 0, nil
	}

	size := int(binary.LittleEndian.Uint16(buf[2:4]))
	if size < constants.ChallengeFixedBodySize || size > constants.ChallengeFixedBodySize+constants.MaxAccountNameLength {
		return nil, 0, fmt.Errorf("%w: %s declares body size %d", ErrMalformedFrame, op, size)
	}

	total := constants.ChallengeHeaderSize + size
	if len(buf) < total {
		return nil, 0, nil
	}

	info, err := readChallengeInfo(buf[1], NewReader(buf[constants.ChallengeHeaderSize:total]))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, op, err)
	}
	if op == OpReconnectChallenge {
		return ReconnectChallenge{info}, total, nil
	}
	return LogonChallenge{info}, total, nil
}

func readChallengeInfo(errByte byte, r *Reader) (ChallengeInfo, error) {
	info := ChallengeInfo{Error: errByte}

	if err := r.ReadInto(info.GameName[:]); err != nil {
		return info, err
	}
	if err := r.ReadInto(info.Version[:]); err != nil {
		return info, err
	}
	build, err := r.ReadUint16()
	if err != nil {
		return info, err
	}
	info.Build = build
	if err := r.ReadInto(info.Platform[:]); err != nil {
		return info, err
	}
	if err := r.ReadInto(info.OS[:]); err != nil {
		return info, err
	}
	if err := r.ReadInto(info.Country[:]); err != nil {
		return info, err
	}
	tz, err := r.ReadUint32()
	if err != nil {
		return info, err
	}
	info.TimezoneBias = tz
	if err := r.ReadInto(info.IP[:]); err != nil {
		return info, err
	}

	nameLen, err := r.ReadByte()
	if err != nil {
		return info, err
	}
	if nameLen == 0 || int(nameLen) > constants.MaxAccountNameLength {
		return info, fmt.Errorf("account name length %d out of range", nameLen)
	}
	if int(nameLen) != r.Remaining() {
		return info, fmt.Errorf("account name length %d, %d bytes left", nameLen, r.Remaining())
	}
	name, err := r.ReadString(int(nameLen))
	if err != nil {
		return info, err
	}
	info.Account = name
	return info, nil
}

func decodeLogonProof(r *Reader) (Frame, error) {
	var p LogonProof
	if err := r.ReadInto(p.A[:]); err != nil {
		return nil, err
	}
	if err := r.ReadInto(p.M1[:]); err != nil {
		return nil, err
	}
	if err := r.ReadInto(p.CRC[:]); err != nil {
		return nil, err
	}
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.NumKeys = n
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.SecurityFlags = flags
	return p, nil
}

func decodeReconnectProof(r *Reader) (Frame, error) {
	var p ReconnectProof
	if err := r.ReadInto(p.R1[:]); err != nil {
		return nil, err
	}
	if err := r.ReadInto(p.R2[:]); err != nil {
		return nil, err
	}
	if err := r.ReadInto(p.R3[:]); err != nil {
		return nil, err
	}
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.NumKeys = n
	return p, nil
}

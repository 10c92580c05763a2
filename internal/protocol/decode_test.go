package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Logon challenge as sent by a 3.3.5a enUS client for account ARLYON.
var arlyonChallenge = []byte{
	0x00, 0x08, 0x24, 0x00, // opcode, error, size=36
	'W', 'o', 'W', 0x00,
	0x03, 0x03, 0x05, // version 3.3.5
	0x34, 0x30, // build 12340
	'6', '8', 'x', 0x00,
	'n', 'i', 'W', 0x00,
	'S', 'U', 'n', 'e',
	0x3c, 0x00, 0x00, 0x00, // timezone bias 60
	0x7f, 0x00, 0x00, 0x01, // 127.0.0.1
	0x06, 'A', 'R', 'L', 'Y', 'O', 'N',
}

func TestTryDecodeFrame_LogonChallenge(t *testing.T) {
	frame, n, err := TryDecodeFrame(arlyonChallenge)
	require.NoError(t, err)
	require.Equal(t, len(arlyonChallenge), n)

	ch, ok := frame.(LogonChallenge)
	require.True(t, ok, "expected LogonChallenge, got %T", frame)
	assert.Equal(t, "ARLYON", ch.Account)
	assert.Equal(t, uint16(12340), ch.Build)
	assert.Equal(t, [3]byte{3, 3, 5}, ch.Version)
	assert.Equal(t, uint32(60), ch.TimezoneBias)
	assert.Equal(t, [4]byte{127, 0, 0, 1}, ch.IP)
	assert.Equal(t, byte(0x08), ch.Error)
}

func TestTryDecodeFrame_ReconnectChallenge(t *testing.T) {
	data := bytes.Clone(arlyonChallenge)
	data[0] = byte(OpReconnectChallenge)

	frame, n, err := TryDecodeFrame(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	rc, ok := frame.(ReconnectChallenge)
	require.True(t, ok, "expected ReconnectChallenge, got %T", frame)
	assert.Equal(t, "ARLYON", rc.Account)
}

func TestTryDecodeFrame_LogonProof(t *testing.T) {
	want := LogonProof{NumKeys: 0, SecurityFlags: 0}
	for i := range want.A {
		want.A[i] = byte(i)
	}
	for i := range want.M1 {
		want.M1[i] = byte(0xA0 + i)
	}
	want.CRC[0] = 0xCC

	data := EncodeFrame(want)
	require.Len(t, data, 75)

	frame, n, err := TryDecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, 75, n)
	assert.Equal(t, want, frame)
}

func TestTryDecodeFrame_ReconnectProof(t *testing.T) {
	want := ReconnectProof{}
	for i := range want.R1 {
		want.R1[i] = byte(0x10 + i)
	}
	want.R2[19] = 0xFF
	want.R3[0] = 0x01

	data := EncodeFrame(want)
	require.Len(t, data, 58)

	frame, n, err := TryDecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, 58, n)
	assert.Equal(t, want, frame)
}

func TestTryDecodeFrame_RealmList(t *testing.T) {
	frame, n, err := TryDecodeFrame([]byte{0x10, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, RealmListRequest{}, frame)
}

// Любой префикс валидного фрейма — "incomplete", не ошибка.
func TestTryDecodeFrame_IncompleteThenComplete(t *testing.T) {
	proof := EncodeFrame(LogonProof{})
	frames := map[string][]byte{
		"challenge":  arlyonChallenge,
		"proof":      proof,
		"reconnect":  EncodeFrame(ReconnectProof{}),
		"realm list": EncodeFrame(RealmListRequest{}),
	}

	for name, data := range frames {
		t.Run(name, func(t *testing.T) {
			for cut := range len(data) {
				frame, n, err := TryDecodeFrame(data[:cut])
				if err != nil {
					t.Fatalf("prefix of %d bytes: unexpected error %v", cut, err)
				}
				if frame != nil || n != 0 {
					t.Fatalf("prefix of %d bytes: expected incomplete, got %T (%d)", cut, frame, n)
				}
			}

			frame, n, err := TryDecodeFrame(data)
			require.NoError(t, err)
			require.NotNil(t, frame)
			require.Equal(t, len(data), n)
		})
	}
}

func TestTryDecodeFrame_ConsumesOnlyOneFrame(t *testing.T) {
	data := append(bytes.Clone(arlyonChallenge), EncodeFrame(RealmListRequest{})...)

	frame, n, err := TryDecodeFrame(data)
	require.NoError(t, err)
	require.IsType(t, LogonChallenge{}, frame)

	frame, m, err := TryDecodeFrame(data[n:])
	require.NoError(t, err)
	require.IsType(t, RealmListRequest{}, frame)
	require.Equal(t, len(data), n+m)
}

func TestTryDecodeFrame_Malformed(t *testing.T) {
	withSize := func(size uint16) []byte {
		d := bytes.Clone(arlyonChallenge)
		d[2] = byte(size)
		d[3] = byte(size >> 8)
		return d
	}
	withNameLen := func(n byte) []byte {
		d := bytes.Clone(arlyonChallenge)
		d[33] = n
		return d
	}
	emptyName := withSize(30)[:34]
	emptyName[33] = 0
	longName := EncodeFrame(LogonChallenge{NewChallengeInfo("ABCDEFGHIJKLMNOPQ", 12340, [3]byte{3, 3, 5})})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "unknown opcode", data: []byte{0x42, 0, 0, 0}},
		{name: "transfer opcode", data: []byte{byte(OpTransferInitiate), 0, 0, 0}},
		{name: "size below fixed body", data: withSize(29)},
		{name: "size above bound", data: withSize(0xFFFF)},
		{name: "name length shorter than size", data: withNameLen(5)},
		{name: "name length longer than size", data: withNameLen(7)},
		{name: "empty name", data: emptyName},
		{name: "name longer than 16", data: longName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, n, err := TryDecodeFrame(tt.data)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Fatalf("expected ErrMalformedFrame, got frame=%T n=%d err=%v", frame, n, err)
			}
		})
	}
}

func TestTryDecodeFrame_Empty(t *testing.T) {
	frame, n, err := TryDecodeFrame(nil)
	if frame != nil || n != 0 || err != nil {
		t.Fatalf("expected incomplete on empty buffer, got %v %d %v", frame, n, err)
	}
}

func FuzzTryDecodeFrame(f *testing.F) {
	f.Add(arlyonChallenge)
	f.Add(EncodeFrame(LogonProof{}))
	f.Add(EncodeFrame(ReconnectProof{}))
	f.Add([]byte{0x10, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		frame, n, err := TryDecodeFrame(data)
		if err != nil {
			return
		}
		if frame == nil && n != 0 {
			t.Fatalf("incomplete frame consumed %d bytes", n)
		}
		if n > len(data) {
			t.Fatalf("consumed %d of %d bytes", n, len(data))
		}
	})
}

package protocol

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/realmd/internal/srp"
)

func mustArray32(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, b, 32)
	var out [32]byte
	copy(out[:], b)
	return out
}

func TestLogonChallengeReply_Success(t *testing.T) {
	reply := LogonChallengeReply{
		Status: StatusSuccess,
		B:      srp.PublicKey(mustArray32(t, "c02b84a10662a658274b495054f971c019c90d86b144af8dd183398f53127f35")),
		Salt:   srp.Salt(mustArray32(t, "8163f26a4b2e0dcdb8bc61242d4e8f2b4da70aa2b8f1cbc615f55e503a309714")),
	}

	data := EncodeFrame(reply)
	require.Len(t, data, 119)
	require.Equal(t, reply.Size(), len(data))

	want := "000000" +
		"c02b84a10662a658274b495054f971c019c90d86b144af8dd183398f53127f35" +
		"010720" +
		"b79b3e2a87823cab8f5ebfbf8eb10108535006298b5badbd5b53e1895e644b89" +
		"8163f26a4b2e0dcdb8bc61242d4e8f2b4da70aa2b8f1cbc615f55e503a309714" +
		"baa31e99a00b2157fc373fb369cdd2f1" +
		"00"
	assert.Equal(t, want, hex.EncodeToString(data))
}

func TestLogonChallengeReply_Failure(t *testing.T) {
	data := EncodeFrame(LogonChallengeReply{Status: StatusUnknownAccount})
	assert.Equal(t, []byte{0x00, 0x00, 0x04}, data)
}

func TestLogonChallengeReply_SecuritySections(t *testing.T) {
	reply := LogonChallengeReply{
		Status: StatusSuccess,
		PIN:    &PINChallenge{GridSeed: 0x01020304},
		Matrix: &MatrixChallenge{Width: 8, Height: 10, DigitCount: 2, ChallengeCount: 3, Seed: 42},
		Token:  true,
	}
	data := EncodeFrame(reply)
	require.Len(t, data, 119+20+12+1)
	assert.Equal(t, byte(0x07), data[118], "security flags")
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, data[119:123])
	assert.Equal(t, byte(8), data[139])
	assert.Equal(t, byte(1), data[len(data)-1])
}

func TestLogonProofReply(t *testing.T) {
	var m2 srp.Proof
	for i := range m2 {
		m2[i] = byte(i + 1)
	}

	t.Run("post-BC success", func(t *testing.T) {
		data := EncodeFrame(LogonProofReply{Build: 12340, Status: StatusSuccess, M2: m2, AccountFlags: 0x00800000})
		require.Len(t, data, 32)
		assert.Equal(t, []byte{0x01, 0x00}, data[:2])
		assert.Equal(t, m2[:], data[2:22])
		assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x00}, data[22:26])
		assert.Equal(t, make([]byte, 6), data[26:])
	})

	t.Run("pre-BC success", func(t *testing.T) {
		data := EncodeFrame(LogonProofReply{Build: 5875, Status: StatusSuccess, M2: m2, AccountFlags: 0x00800000})
		require.Len(t, data, 26)
		assert.Equal(t, m2[:], data[2:22])
		assert.Equal(t, make([]byte, 4), data[22:])
	})

	t.Run("post-BC failure", func(t *testing.T) {
		data := EncodeFrame(LogonProofReply{Build: 12340, Status: StatusIncorrectPassword})
		assert.Equal(t, []byte{0x01, 0x05, 0x00, 0x00}, data)
	})

	t.Run("pre-BC failure", func(t *testing.T) {
		data := EncodeFrame(LogonProofReply{Build: 5875, Status: StatusIncorrectPassword})
		assert.Equal(t, []byte{0x01, 0x05}, data)
	})
}

func TestReconnectReplies(t *testing.T) {
	var challenge [16]byte
	for i := range challenge {
		challenge[i] = byte(0xA0 + i)
	}

	data := EncodeFrame(ReconnectChallengeReply{Status: StatusSuccess, Challenge: challenge})
	require.Len(t, data, 34)
	assert.Equal(t, []byte{0x02, 0x00}, data[:2])
	assert.Equal(t, challenge[:], data[2:18])
	assert.Equal(t, VersionChallenge[:], data[18:])

	assert.Equal(t, []byte{0x02, 0x04}, EncodeFrame(ReconnectChallengeReply{Status: StatusUnknownAccount}))
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00}, EncodeFrame(ReconnectProofReply{Build: 12340}))
	assert.Equal(t, []byte{0x03, 0x00}, EncodeFrame(ReconnectProofReply{Build: 5875}))
}

func testRealm() RealmEntry {
	return RealmEntry{
		ID:         1,
		Type:       1,
		Name:       "Azeroth",
		Address:    "127.0.0.1:8085",
		Population: 0.5,
		Characters: 2,
		Timezone:   1,
	}
}

func TestRealmListReply_PostBC(t *testing.T) {
	data := EncodeFrame(RealmListReply{Build: 12340, Realms: []RealmEntry{testRealm()}})

	want := []byte{0x10, 0x29, 0x00, 0, 0, 0, 0, 0x01, 0x00}
	want = append(want, 0x01, 0x00, 0x00) // type, locked, flags
	want = append(want, "Azeroth\x00"...)
	want = append(want, "127.0.0.1:8085\x00"...)
	want = append(want, 0x00, 0x00, 0x00, 0x3F, 0x02, 0x01, 0x01) // population 0.5, chars, tz, id
	want = append(want, 0x10, 0x00)

	assert.Equal(t, want, data)
}

func TestRealmListReply_PreBC(t *testing.T) {
	data := EncodeFrame(RealmListReply{Build: 5875, Realms: []RealmEntry{testRealm()}})

	want := []byte{0x10, 0x2A, 0x00, 0, 0, 0, 0, 0x01}
	want = append(want, 0x01, 0x00, 0x00, 0x00, 0x00) // type u32, flags
	want = append(want, "Azeroth\x00"...)
	want = append(want, "127.0.0.1:8085\x00"...)
	want = append(want, 0x00, 0x00, 0x00, 0x3F, 0x02, 0x01, 0x00)
	want = append(want, 0x00, 0x02)

	assert.Equal(t, want, data)
}

func TestRealmListReply_SpecifyBuild(t *testing.T) {
	realm := testRealm()
	realm.Flags = 0x04
	realm.Version = [3]byte{3, 3, 5}
	realm.Build = 12340

	data := EncodeFrame(RealmListReply{Build: 12340, Realms: []RealmEntry{realm}})
	require.Len(t, data, 44+5)
	assert.Equal(t, []byte{0x03, 0x03, 0x05, 0x34, 0x30, 0x10, 0x00}, data[len(data)-7:])
	assert.Equal(t, uint16(len(data)-3), uint16(data[1])|uint16(data[2])<<8)
}

func TestRealmListReply_Empty(t *testing.T) {
	data := EncodeFrame(RealmListReply{Build: 12340})
	assert.Equal(t, []byte{0x10, 0x08, 0x00, 0, 0, 0, 0, 0, 0, 0x10, 0x00}, data)
}

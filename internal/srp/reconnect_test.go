package srp

import (
	"encoding/hex"
	"testing"
)

func reconnectVector(t *testing.T) (SessionKey, [ChallengeSize]byte, [ChallengeSize]byte) {
	t.Helper()
	var key SessionKey
	copy(key[:], mustHex(t, vecK))

	var r1, server [ChallengeSize]byte
	for i := range r1 {
		r1[i] = byte(0x10 + i)
		server[i] = byte(0xA0 + i)
	}
	return key, r1, server
}

func TestReconnectProof_KnownAnswer(t *testing.T) {
	key, r1, server := reconnectVector(t)

	r2 := ReconnectProof(vecUsername, r1, server, key)
	if got := hex.EncodeToString(r2[:]); got != "d0010108d96fb9fedb40d298ba5cb2dbd6ac10e1" {
		t.Fatalf("R2 = %s", got)
	}
	if !ReconnectProofMatches(vecUsername, key, r1, server, r2) {
		t.Fatal("valid reconnect proof rejected")
	}
}

func TestReconnectProofMatches_FailsClosed(t *testing.T) {
	key, r1, server := reconnectVector(t)
	r2 := ReconnectProof(vecUsername, r1, server, key)

	stale := key
	stale[0] ^= 0xFF

	otherServer := server
	otherServer[15]++

	tests := []struct {
		name   string
		user   string
		key    SessionKey
		server [ChallengeSize]byte
	}{
		{name: "stale key", user: vecUsername, key: stale, server: server},
		{name: "absent key", user: vecUsername, key: SessionKey{}, server: server},
		{name: "replayed against new challenge", user: vecUsername, key: key, server: otherServer},
		{name: "other account", user: "GHOST", key: key, server: server},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ReconnectProofMatches(tt.user, tt.key, r1, tt.server, r2) {
				t.Fatal("reconnect proof must not match")
			}
		})
	}
}

package srp

import (
	"github.com/udisondev/realmd/internal/crypto"
)

// ClientProof computes M1 = H(H(N) xor H(g), H(I), s, A, B, K).
func ClientProof(username string, salt Salt, clientPublic, serverPublic PublicKey, key SessionKey) Proof {
	hi := sha1Sum([]byte(username))
	return sha1Sum(hashNG[:], hi[:], salt[:], clientPublic[:], serverPublic[:], key[:])
}

// ClientProofMatches recomputes M1 and compares it in constant time.
func ClientProofMatches(username string, salt Salt, clientPublic, serverPublic PublicKey, key SessionKey, m1 Proof) bool {
	expected := ClientProof(username, salt, clientPublic, serverPublic, key)
	return crypto.Equal(expected[:], m1[:])
}

// ServerProof computes M2 = H(A, M1, K).
func ServerProof(clientPublic PublicKey, m1 Proof, key SessionKey) Proof {
	return sha1Sum(clientPublic[:], m1[:], key[:])
}

// ReconnectProof computes R2 = H(I, R1, serverChallenge, K).
func ReconnectProof(username string, clientChallenge, serverChallenge [ChallengeSize]byte, key SessionKey) Proof {
	return sha1Sum([]byte(username), clientChallenge[:], serverChallenge[:], key[:])
}

// ReconnectProofMatches validates R2 against the stored session key.
// A zero key never matches.
func ReconnectProofMatches(username string, key SessionKey, clientChallenge, serverChallenge [ChallengeSize]byte, proof Proof) bool {
	if key.IsZero() {
		return false
	}
	expected := ReconnectProof(username, clientChallenge, serverChallenge, key)
	return crypto.Equal(expected[:], proof[:])
}

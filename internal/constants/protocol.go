package constants

// WoW Auth Protocol Constants
//
// This file contains protocol-level constants for the legacy authentication
// handshake (grunt protocol) spoken by 1.12 - 3.3.5 clients on port 3724.

// Network
const (
	// DefaultAuthPort is the port the client connects to for authentication
	DefaultAuthPort = 3724

	// DefaultAdminAddress is the operator HTTP endpoint (health, metrics)
	DefaultAdminAddress = "127.0.0.1:3725"
)

// SRP6 Field Sizes
const (
	// SRPKeySize is the width of N, B, A, salt and S on the wire (256 bits)
	SRPKeySize = 32

	// SRPProofSize is the size of M1, M2 and reconnect proofs (SHA-1 digest)
	SRPProofSize = 20

	// SessionKeySize is the size of the interleaved session key K (2 * SHA-1)
	SessionKeySize = 40

	// VersionChallengeSize is the size of the fixed version challenge nonce
	VersionChallengeSize = 16

	// ReconnectChallengeSize is the size of R1 and the server reconnect challenge
	ReconnectChallengeSize = 16
)

// Frame Layout Constants
const (
	// ChallengeHeaderSize is opcode + error + size(u16) of a client challenge
	ChallengeHeaderSize = 4

	// ChallengeFixedBodySize is the body of a client challenge without the account name:
	// gamename[4] + version[3] + build(u16) + platform[4] + os[4] + country[4] +
	// timezone(u32) + ip[4] + I_len(u8)
	ChallengeFixedBodySize = 30

	// MaxAccountNameLength is the longest account name the client may send
	MaxAccountNameLength = 16

	// MaxChallengeFrameSize is the largest LogonChallenge / ReconnectChallenge frame
	MaxChallengeFrameSize = ChallengeHeaderSize + ChallengeFixedBodySize + MaxAccountNameLength

	// LogonProofBodySize is A[32] + M1[20] + crc[20] + nkeys(u8) + secflags(u8)
	LogonProofBodySize = 74

	// MaxFrameSize is the largest client frame: opcode + LogonProof body
	MaxFrameSize = 1 + LogonProofBodySize

	// ReconnectProofBodySize is R1[16] + R2[20] + R3[20] + nkeys(u8)
	ReconnectProofBodySize = 57

	// RealmListBodySize is the u32 padding after the RealmList opcode
	RealmListBodySize = 4
)

// Client Builds
const (
	// FirstPostBCBuild is the first build (2.0.0) using the extended
	// proof reply and the u16-counted realm list
	FirstPostBCBuild = 6299

	BuildVanilla  = 5875  // 1.12.1
	BuildVanilla2 = 6005  // 1.12.2
	BuildVanilla3 = 6141  // 1.12.3
	BuildTBC      = 8606  // 2.4.3
	BuildWotLK    = 12340 // 3.3.5a
)

// DefaultAcceptedBuilds lists client builds allowed to authenticate.
var DefaultAcceptedBuilds = []int{BuildVanilla, BuildVanilla2, BuildVanilla3, BuildTBC, BuildWotLK}

// Buffer Sizes
const (
	// DefaultSendBufSize is the initial capacity of pooled reply buffers
	DefaultSendBufSize = 4096

	// DefaultReadBufSize is the capacity of the per-connection read buffer
	DefaultReadBufSize = 256
)

// Account Flags (LogonProof reply, post-BC)
const (
	// AccountFlagProPass is sent by every retail server in the proof reply
	AccountFlagProPass = 0x00800000
)

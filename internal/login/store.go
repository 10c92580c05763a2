package login

import (
	"context"
	"time"

	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/srp"
)

// AccountStore is the account backend consumed by the handshake.
// Implementations must tolerate concurrent calls for the same username.
type AccountStore interface {
	// FindAccount returns the account by upper-case name.
	// Returns nil, nil if the account does not exist.
	FindAccount(ctx context.Context, username string) (*model.Account, error)

	// RecordSession persists the session key after a successful logon.
	// A no-op implementation is valid.
	RecordSession(ctx context.Context, username string, key srp.SessionKey) error
}

// SessionFinder is implemented by stores that persist session keys.
// Reconnect falls back to it when the in-memory registry has no entry,
// e.g. after a restart.
type SessionFinder interface {
	// FindSession returns the key recorded within maxAge. maxAge <= 0 disables the age check.
	FindSession(ctx context.Context, username string, maxAge time.Duration) (srp.SessionKey, bool, error)
}

// CharacterCounter is implemented by stores that know how many characters
// an account has on each realm.
type CharacterCounter interface {
	CharacterCounts(ctx context.Context, accountID int64) (map[uint8]uint8, error)
}

// RealmSnapshotter returns the current realm list. The slice must not be mutated.
type RealmSnapshotter interface {
	Snapshot() []model.Realm
}

// LoginRecorder is implemented by stores that keep the address of the last login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, username, ip string) error
}

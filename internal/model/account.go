package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/udisondev/realmd/internal/srp"
)

// BanStatus is the lock state of an account.
type BanStatus int16

const (
	BanNone      BanStatus = iota
	BanTemporary           // клиент увидит "suspended"
	BanPermanent           // клиент увидит "banned"
)

func (b BanStatus) String() string {
	switch b {
	case BanNone:
		return "none"
	case BanTemporary:
		return "temporary"
	case BanPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("BanStatus(%d)", int16(b))
	}
}

// ParseBanStatus parses the CLI/config spelling of a ban status.
func ParseBanStatus(s string) (BanStatus, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return BanNone, nil
	case "temporary", "suspended":
		return BanTemporary, nil
	case "permanent", "banned":
		return BanPermanent, nil
	default:
		return BanNone, fmt.Errorf("unknown ban status %q", s)
	}
}

// Account represents an auth account stored in the database.
// Salt и Verifier создаются вместе при регистрации и никогда не меняются по отдельности.
type Account struct {
	ID        int64
	Username  string // всегда upper-case
	Salt      srp.Salt
	Verifier  srp.Verifier
	Email     string
	Ban       BanStatus
	LastIP    string
	LastLogin time.Time
}

// Banned reports whether the account may not log in.
func (a *Account) Banned() bool {
	return a.Ban != BanNone
}

// NormalizeUsername returns the canonical (upper-case, trimmed) account name.
func NormalizeUsername(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

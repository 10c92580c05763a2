package model

import (
	"fmt"
	"net"
	"strconv"
)

// RealmType is the realm ruleset shown in the realm list.
type RealmType uint8

const (
	RealmNormal RealmType = 0
	RealmPvP    RealmType = 1
	RealmRP     RealmType = 6
	RealmRPPvP  RealmType = 8
)

func (t RealmType) String() string {
	switch t {
	case RealmNormal:
		return "normal"
	case RealmPvP:
		return "pvp"
	case RealmRP:
		return "rp"
	case RealmRPPvP:
		return "rppvp"
	default:
		return fmt.Sprintf("RealmType(%d)", uint8(t))
	}
}

// RealmFlags is the realm status bitset.
type RealmFlags uint8

const (
	RealmFlagInvalid      RealmFlags = 0x01
	RealmFlagOffline      RealmFlags = 0x02
	RealmFlagSpecifyBuild RealmFlags = 0x04
	RealmFlagRecommended  RealmFlags = 0x20
	RealmFlagNew          RealmFlags = 0x40
	RealmFlagFull         RealmFlags = 0x80
)

// Has reports whether all bits of f are set.
func (r RealmFlags) Has(f RealmFlags) bool {
	return r&f == f
}

// Realm describes one world server.
type Realm struct {
	ID         uint8
	Name       string
	Host       string
	Port       int
	Type       RealmType
	Flags      RealmFlags
	Locked     bool
	Timezone   uint8
	Population float32
	// Build != 0 pins the realm to one client build.
	Build   uint16
	Version [3]byte
}

// Address returns "host:port" as the client expects it.
func (r Realm) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

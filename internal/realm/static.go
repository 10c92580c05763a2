package realm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/model"
)

// StaticSource serves the realm list from configuration.
type StaticSource struct {
	realms []model.Realm
}

// NewStaticSource converts config entries into realms.
func NewStaticSource(entries []config.RealmEntry) (*StaticSource, error) {
	realms := make([]model.Realm, 0, len(entries))
	for _, e := range entries {
		if e.ID <= 0 || e.ID > 255 {
			return nil, fmt.Errorf("realm %q: id %d out of range", e.Name, e.ID)
		}
		typ, err := ParseType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("realm %q: %w", e.Name, err)
		}
		version, err := ParseVersion(e.Version)
		if err != nil {
			return nil, fmt.Errorf("realm %q: %w", e.Name, err)
		}
		realms = append(realms, model.Realm{
			ID:         uint8(e.ID),
			Name:       e.Name,
			Host:       e.Host,
			Port:       e.Port,
			Type:       typ,
			Flags:      model.RealmFlags(e.Flags),
			Locked:     e.Locked,
			Timezone:   uint8(e.Timezone),
			Population: e.Population,
			Build:      uint16(e.Build),
			Version:    version,
		})
	}
	return &StaticSource{realms: realms}, nil
}

// ListRealms returns the configured realms.
func (s *StaticSource) ListRealms(context.Context) ([]model.Realm, error) {
	return s.realms, nil
}

// ParseType parses a realm type name: normal, pvp, rp or rppvp.
func ParseType(s string) (model.RealmType, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return model.RealmNormal, nil
	case "pvp":
		return model.RealmPvP, nil
	case "rp":
		return model.RealmRP, nil
	case "rppvp":
		return model.RealmRPPvP, nil
	default:
		return 0, fmt.Errorf("unknown realm type %q", s)
	}
}

// ParseVersion parses "major.minor.patch". Empty string is 0.0.0.
func ParseVersion(s string) ([3]byte, error) {
	var v [3]byte
	if s == "" {
		return v, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return v, fmt.Errorf("invalid realm version %q", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return v, fmt.Errorf("invalid realm version %q: %w", s, err)
		}
		v[i] = byte(n)
	}
	return v, nil
}

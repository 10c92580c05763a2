package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAuthServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadAuthServer(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthServer(), cfg)
}

func TestLoadAuthServer_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authserver.yaml")
	data := `
port: 3800
idle_timeout: 15s
accepted_builds: [12340]
realm_source: static
realms:
  - id: 2
    name: Lordaeron
    host: 10.0.0.2
    port: 8086
    type: rp
    flags: 4
    build: 8606
    version: 2.4.3
    population: 0.5
    locked: true
database:
  host: db
  port: 5433
  user: u
  password: p
  dbname: auth
  sslmode: require
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadAuthServer(path)
	require.NoError(t, err)

	assert.Equal(t, 3800, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.BindAddress, "unset fields keep defaults")
	assert.Equal(t, 15*time.Second, cfg.IdleTimeout)
	assert.Equal(t, []int{12340}, cfg.AcceptedBuilds)
	assert.Equal(t, RealmSourceStatic, cfg.RealmSource)
	require.Len(t, cfg.Realms, 1)
	assert.Equal(t, "Lordaeron", cfg.Realms[0].Name)
	assert.Equal(t, "2.4.3", cfg.Realms[0].Version)
	assert.Equal(t, 8606, cfg.Realms[0].Build)
	assert.InDelta(t, 0.5, cfg.Realms[0].Population, 0.001)
	assert.True(t, cfg.Realms[0].Locked)
	assert.Equal(t, "postgres://u:p@db:5433/auth?sslmode=require", cfg.Database.DSN())
}

func TestLoadAuthServer_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "port: [",
		"bad port":       "port: 70000",
		"no builds":      "accepted_builds: []",
		"bad source":     "realm_source: redis",
		"short seal key": "session_seal_key: abcd",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "authserver.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
			_, err := LoadAuthServer(path)
			assert.Error(t, err)
		})
	}
}

func TestWriteAuthServer_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authserver.yaml")
	cfg := DefaultAuthServer()
	cfg.Port = 4000
	cfg.SessionTTL = time.Hour

	require.NoError(t, WriteAuthServer(path, cfg))

	loaded, err := LoadAuthServer(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/realmd/internal/constants"
)

// Realm source kinds.
const (
	RealmSourceDatabase = "database"
	RealmSourceStatic   = "static"
)

// AuthServer holds all configuration for the auth server.
type AuthServer struct {
	// Network
	BindAddress string        `yaml:"bind_address"`
	Port        int           `yaml:"port"`
	IdleTimeout time.Duration `yaml:"idle_timeout"` // закрываем соединение, если клиент молчит дольше

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Protocol
	AcceptedBuilds []int `yaml:"accepted_builds"`
	CryptoWorkers  int   `yaml:"crypto_workers"` // 0 = runtime.NumCPU()

	// Sessions
	SessionTTL           time.Duration `yaml:"session_ttl"`
	SessionCleanInterval time.Duration `yaml:"session_clean_interval"`
	SessionSealKey       string        `yaml:"session_seal_key"` // hex, 32 bytes; пусто = ключи хранятся как есть

	// Realms
	RealmSource          string        `yaml:"realm_source"` // database | static
	RealmRefreshInterval time.Duration `yaml:"realm_refresh_interval"`
	RealmLoadTimeout     time.Duration `yaml:"realm_load_timeout"`
	Realms               []RealmEntry  `yaml:"realms"`

	// Operator endpoint (/_health, /_metrics); empty disables it
	AdminAddress string `yaml:"admin_address"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RealmEntry is a realm in the static list.
type RealmEntry struct {
	ID         int     `yaml:"id"`
	Name       string  `yaml:"name"`
	Host       string  `yaml:"host"`
	Port       int     `yaml:"port"`
	Type       string  `yaml:"type"` // normal | pvp | rp | rppvp
	Flags      int     `yaml:"flags"`
	Locked     bool    `yaml:"locked"`
	Timezone   int     `yaml:"timezone"`
	Population float32 `yaml:"population"`
	Build      int     `yaml:"build"`
	Version    string  `yaml:"version"` // "2.4.3", sent with SpecifyBuild
}

// DefaultAuthServer returns AuthServer config with sensible defaults.
func DefaultAuthServer() AuthServer {
	return AuthServer{
		BindAddress:          "0.0.0.0",
		Port:                 constants.DefaultAuthPort,
		IdleTimeout:          60 * time.Second,
		AcceptedBuilds:       append([]int(nil), constants.DefaultAcceptedBuilds...),
		CryptoWorkers:        runtime.NumCPU(),
		SessionTTL:           24 * time.Hour,
		SessionCleanInterval: 5 * time.Minute,
		RealmSource:          RealmSourceDatabase,
		RealmRefreshInterval: 30 * time.Second,
		RealmLoadTimeout:     30 * time.Second,
		AdminAddress:         constants.DefaultAdminAddress,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "realmd",
			Password: "realmd",
			DBName:   "realmd",
			SSLMode:  "disable",
		},
		Realms: []RealmEntry{
			{
				ID:   1,
				Name: "Azeroth",
				Host: "127.0.0.1",
				Port: 8085,
				Type: "pvp",
			},
		},
	}
}

// LoadAuthServer loads auth server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadAuthServer(path string) (AuthServer, error) {
	cfg := DefaultAuthServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// WriteAuthServer writes cfg as YAML, creating parent directories.
func WriteAuthServer(path string, cfg AuthServer) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks values the server cannot start without.
func (c AuthServer) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(c.AcceptedBuilds) == 0 {
		return fmt.Errorf("accepted_builds is empty")
	}
	switch c.RealmSource {
	case RealmSourceDatabase, RealmSourceStatic:
	default:
		return fmt.Errorf("unknown realm_source %q", c.RealmSource)
	}
	if c.SessionSealKey != "" && len(c.SessionSealKey) != 64 {
		return fmt.Errorf("session_seal_key must be 64 hex chars, got %d", len(c.SessionSealKey))
	}
	return nil
}

// Address returns bind_address:port.
func (c AuthServer) Address() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

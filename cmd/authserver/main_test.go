package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/realmd/internal/config"
)

func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authserver.yaml")

	err := newApp().Run(context.Background(), []string{appName, "--config", path, "--no-color", "init"})
	require.NoError(t, err)

	cfg, err := config.LoadAuthServer(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAuthServer(), cfg)

	// повторный init без --force не затирает файл
	err = newApp().Run(context.Background(), []string{appName, "--config", path, "init"})
	assert.Error(t, err)

	err = newApp().Run(context.Background(), []string{appName, "--config", path, "init", "--force"})
	assert.NoError(t, err)
}

func TestInvalidLogSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "level", args: []string{"--log-level", "loud"}},
		{name: "format", args: []string{"--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "authserver.yaml")
			args := append([]string{appName, "--config", path}, tt.args...)
			args = append(args, "init")

			err := newApp().Run(context.Background(), args)

			assert.Error(t, err)
		})
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/udisondev/realmd/internal/config"
)

const (
	appName           = "realmd"
	defaultConfigPath = "config/authserver.yaml"
)

// Заполняется через -ldflags при сборке.
var version = "dev"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	app := &cli.Command{
		Name:    appName,
		Usage:   "WoW 1.12-3.3.5 authentication server",
		Version: version,
	}

	app.Flags = append(app.Flags,
		&cli.StringFlag{
			Name:    "config",
			Value:   defaultConfigPath,
			Usage:   "Path to the YAML config",
			Sources: cli.EnvVars("REALMD_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "Log format (text, json)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file path",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colors in log output",
		},
	)

	var cleanup CleanupFunc
	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		closer, err := initDefaultLogger(c)
		if err != nil {
			return ctx, err
		}
		cleanup = closer
		return ctx, nil
	}
	app.After = func(_ context.Context, _ *cli.Command) error {
		if cleanup != nil {
			return cleanup()
		}
		return nil
	}

	app.Commands = append(app.Commands,
		serveCommand(),
		initCommand(),
		accountCommand(),
		realmCommand(),
	)

	return app
}

func loadConfig(c *cli.Command) (config.AuthServer, error) {
	path := c.String("config")
	cfg, err := config.LoadAuthServer(path)
	if err != nil {
		return config.AuthServer{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/realmd/internal/admin"
	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/crypto"
	"github.com/udisondev/realmd/internal/db"
	"github.com/udisondev/realmd/internal/login"
	"github.com/udisondev/realmd/internal/metrics"
	"github.com/udisondev/realmd/internal/realm"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the authentication server",
		Action: serve,
	}
}

func serve(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	slog.Info("realmd starting", "version", version, "bind", cfg.Address(), "realm_source", cfg.RealmSource)

	metrics.Init()

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return err
	}
	slog.Info("database migrations applied")

	accounts, err := newAccountRepository(database, cfg)
	if err != nil {
		return err
	}

	src, err := newRealmSource(database, cfg)
	if err != nil {
		return err
	}
	directory := realm.NewDirectory(src, cfg.RealmRefreshInterval)
	if err := directory.Load(ctx, cfg.RealmLoadTimeout); err != nil {
		return fmt.Errorf("loading realm list: %w", err)
	}
	slog.Info("realm list loaded", "realms", len(directory.Snapshot()))

	server := login.NewServer(cfg, accounts, directory)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("auth server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return directory.Run(gctx)
	})

	g.Go(func() error {
		return server.RunJanitor(gctx, cfg.SessionCleanInterval, cfg.SessionTTL)
	})

	// SIGHUP перечитывает realm list вне расписания
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				slog.Info("realm list refresh requested")
				directory.Trigger()
			}
		}
	})

	if cfg.AdminAddress != "" {
		g.Go(func() error {
			return admin.NewServer(database, server.SessionManager()).Run(gctx, cfg.AdminAddress)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("realmd stopped")
	return nil
}

func newAccountRepository(database *db.DB, cfg config.AuthServer) (*db.AccountRepository, error) {
	if cfg.SessionSealKey == "" {
		return db.NewAccountRepository(database.Pool(), nil), nil
	}
	sealer, err := crypto.NewSealerFromHex(cfg.SessionSealKey)
	if err != nil {
		return nil, fmt.Errorf("session seal key: %w", err)
	}
	return db.NewAccountRepository(database.Pool(), sealer), nil
}

func newRealmSource(database *db.DB, cfg config.AuthServer) (realm.Source, error) {
	switch cfg.RealmSource {
	case config.RealmSourceStatic:
		src, err := realm.NewStaticSource(cfg.Realms)
		if err != nil {
			return nil, fmt.Errorf("static realms: %w", err)
		}
		return src, nil
	default:
		return db.NewRealmRepository(database.Pool()), nil
	}
}

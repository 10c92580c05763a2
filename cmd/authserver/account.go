package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/udisondev/realmd/internal/db"
	"github.com/udisondev/realmd/internal/model"
)

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Register a new account",
				ArgsUsage: "NAME PASSWORD",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Contact e-mail"},
				},
				Action: createAccount,
			},
			{
				Name:      "ban",
				Usage:     "Set the ban status of an account",
				ArgsUsage: "NAME [none|temporary|permanent]",
				Action:    banAccount,
			},
		},
	}
}

func createAccount(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: account create NAME PASSWORD")
	}

	return withRepositories(ctx, c, func(accounts *db.AccountRepository, _ *db.RealmRepository) error {
		acc, err := accounts.CreateAccount(ctx, c.Args().Get(0), c.Args().Get(1), c.String("email"))
		if err != nil {
			return err
		}
		slog.Info("account created", "account", acc.Username, "id", acc.ID)
		return nil
	})
}

func banAccount(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return fmt.Errorf("usage: account ban NAME [none|temporary|permanent]")
	}
	status := "permanent"
	if c.NArg() == 2 {
		status = c.Args().Get(1)
	}
	ban, err := model.ParseBanStatus(status)
	if err != nil {
		return err
	}

	return withRepositories(ctx, c, func(accounts *db.AccountRepository, _ *db.RealmRepository) error {
		username := model.NormalizeUsername(c.Args().First())
		if err := accounts.SetBan(ctx, username, ban); err != nil {
			return err
		}
		slog.Info("account ban updated", "account", username, "status", ban)
		return nil
	})
}

// withRepositories opens the database, applies migrations and runs fn.
func withRepositories(ctx context.Context, c *cli.Command, fn func(*db.AccountRepository, *db.RealmRepository) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return err
	}

	accounts, err := newAccountRepository(database, cfg)
	if err != nil {
		return err
	}
	return fn(accounts, db.NewRealmRepository(database.Pool()))
}

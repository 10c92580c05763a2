package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/db"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/realm"
)

func realmCommand() *cli.Command {
	return &cli.Command{
		Name:  "realm",
		Usage: "Manage the realm list",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print realms from the configured source",
				Action: listRealms,
			},
			{
				Name:      "add",
				Usage:     "Add or replace a realm in the database",
				ArgsUsage: "ID NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Value: "127.0.0.1"},
					&cli.IntFlag{Name: "port", Value: 8085},
					&cli.StringFlag{Name: "type", Value: "normal", Usage: "normal, pvp, rp, rppvp"},
					&cli.IntFlag{Name: "flags"},
					&cli.IntFlag{Name: "timezone", Value: 1},
					&cli.IntFlag{Name: "build", Usage: "Pin the realm to one client build"},
					&cli.StringFlag{Name: "version", Usage: "Client version for --build, e.g. 2.4.3"},
					&cli.FloatFlag{Name: "population"},
					&cli.BoolFlag{Name: "locked"},
				},
				Action: addRealm,
			},
		},
	}
}

func listRealms(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var realms []model.Realm
	if cfg.RealmSource == config.RealmSourceStatic {
		src, err := realm.NewStaticSource(cfg.Realms)
		if err != nil {
			return err
		}
		realms, _ = src.ListRealms(ctx)
	} else {
		err := withRepositories(ctx, c, func(_ *db.AccountRepository, repo *db.RealmRepository) error {
			var err error
			realms, err = repo.ListRealms(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tTYPE\tFLAGS\tBUILD")
	for _, r := range realms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t0x%02x\t%d\n", r.ID, r.Name, r.Address(), r.Type, uint8(r.Flags), r.Build)
	}
	return tw.Flush()
}

func addRealm(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: realm add ID NAME [flags]")
	}

	// NewStaticSource валидирует запись так же, как static config
	entry := config.RealmEntry{
		Name:       c.Args().Get(1),
		Host:       c.String("host"),
		Port:       c.Int("port"),
		Type:       c.String("type"),
		Flags:      c.Int("flags"),
		Locked:     c.Bool("locked"),
		Timezone:   c.Int("timezone"),
		Population: float32(c.Float("population")),
		Build:      c.Int("build"),
		Version:    c.String("version"),
	}
	id, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("invalid realm id %q", c.Args().Get(0))
	}
	entry.ID = id
	src, err := realm.NewStaticSource([]config.RealmEntry{entry})
	if err != nil {
		return err
	}
	realms, _ := src.ListRealms(ctx)

	return withRepositories(ctx, c, func(_ *db.AccountRepository, repo *db.RealmRepository) error {
		if err := repo.AddRealm(ctx, realms[0]); err != nil {
			return err
		}
		slog.Info("realm saved", "id", realms[0].ID, "name", realms[0].Name, "address", realms[0].Address())
		return nil
	})
}

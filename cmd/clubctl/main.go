package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	eventservice "github.com/Black-And-White-Club/curling-club/app/modules/event/application"
	eventseed "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/seed"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/Black-And-White-Club/curling-club/config"
	"github.com/Black-And-White-Club/curling-club/db/bundb"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

func main() {
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "clubctl",
		Usage: "curling club administration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			seedCommand(),
			rosterCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*config.Config, *bundb.DBService, error) {
	cfg, err := config.ReadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL or postgres.dsn is required")
	}
	db, err := bundb.NewBunDBService(c.Context, cfg.Postgres.DSN, cfg.Location())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "create the events listed in a YAML file; existing ids are skipped",
		ArgsUsage: "<events.yaml>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("a seed file is required", 2)
			}

			cfg, db, err := openDB(c)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := eventseed.Load(f, cfg.Location())
			if err != nil {
				return err
			}
			created, err := eventseed.Apply(c.Context, db.EventDB, db.GetDB(), records)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d of %d events from %s\n", created, len(records), path)
			return nil
		},
	}
}

func rosterCommand() *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "export an event's attendees and rides as a spreadsheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "event", Required: true, Usage: "event id"},
			&cli.StringFlag{Name: "out", Value: "roster.xlsx", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			eventID, err := uuid.Parse(c.String("event"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid event id: %v", err), 2)
			}

			cfg, db, err := openDB(c)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			service := eventservice.NewEventService(
				db.EventDB,
				nil,
				db.GetDB(),
				eventservice.Config{Location: cfg.Location()},
				logger,
				metrics.NewNoop(),
				noop.NewTracerProvider().Tracer("clubctl"),
			)

			out, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			defer out.Close()

			event, err := service.WriteRoster(c.Context, eventID, out)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote roster for %q to %s\n", event.Title, c.String("out"))
			return nil
		},
	}
}

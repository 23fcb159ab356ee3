package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"odbcperf/internal/config"
	"odbcperf/internal/data"
	"odbcperf/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

var typesCommand = &cli.Command{
	Name:  "types",
	Usage: "list the sql-type test cases and the query each one runs",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "fixture-schema",
			Value: service.DefaultFixtureSchema,
		},
		&cli.StringFlag{
			Name:  "fixture-table",
			Value: service.DefaultFixtureTable,
		},
	},
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		for _, q := range service.TypeQueries(c.String("fixture-schema"), c.String("fixture-table")) {
			fmt.Fprintf(w, "%s%s\t%s\n", service.TestSQLType, q.Type, q.SQL)
		}
		return w.Flush()
	},
}

func historyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show recently recorded fetches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "history-db",
				Value:     cfg.HistoryDB,
				TakesFile: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("history-db")
			if path == "" {
				return fmt.Errorf("no history database; pass --history-db or set %s", config.EnvHistoryDB)
			}

			db, err := data.InitDB(path)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer db.Close()

			runs, err := data.NewRunRepo(db).GetRecent(c.Int("limit"))
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(c.App.Writer, "No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tRUN\tLIBRARY\tDRIVER\tTEST CASE\tROWS\tDURATION\tSTATUS")
			for _, run := range runs {
				status := run.Status
				if run.ErrorMsg != "" {
					status += ": " + run.ErrorMsg
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(run.StartedAt),
					shortID(run.RunID),
					run.Library,
					run.SQLDriver,
					run.TestCase,
					humanize.Comma(run.RowCount),
					time.Duration(run.DurationMs)*time.Millisecond,
					status,
				)
			}
			return w.Flush()
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

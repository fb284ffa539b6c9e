package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/config"
	"github.com/rxtech-lab/mt5-bridge/internal/export"
	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Fetch configured data sets and append them to the archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "database",
				Usage: "Archive database path (overrides the config)",
			},
		},
		Action: exportAction,
	}
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	dbPath := rt.cfg.Export.Database
	if v := cmd.String("database"); v != "" {
		dbPath = v
	}

	jobs := rt.cfg.Export.Jobs
	if len(jobs) == 0 {
		rt.log.Warn("no export jobs configured")

		return nil
	}

	store, err := export.Open(dbPath, rt.log)
	if err != nil {
		return err
	}
	defer store.Close()

	bar := progressbar.Default(int64(len(jobs)))
	total := 0

	for _, job := range jobs {
		table, err := fetchJob(ctx, rt, job)
		if err != nil {
			return fmt.Errorf("job %s/%s: %w", job.Kind, job.Table, err)
		}

		inserted, err := store.Append(ctx, job.Table, table)
		if err != nil {
			return fmt.Errorf("job %s/%s: %w", job.Kind, job.Table, err)
		}

		total += inserted
		_ = bar.Add(1)
	}

	rt.log.Info("export finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("rows_inserted", total),
	)

	return nil
}

// fetchJob runs one configured fetch. Raw epoch times go into the archive;
// DuckDB timestamps would lose the venue's native representation.
func fetchJob(ctx context.Context, rt *runtime, job config.ExportJob) (*tabular.Table, error) {
	now := time.Now()
	from := now.Add(-time.Duration(job.LookbackMinutes) * time.Minute)

	switch job.Kind {
	case "rates":
		timeframe, err := types.ParseTimeframe(job.Timeframe)
		if err != nil {
			return nil, err
		}

		return rt.data.RatesRangeTable(ctx, job.Symbol, timeframe, from, now, tabular.WithRawTime())
	case "ticks":
		return rt.data.TicksRangeTable(ctx, job.Symbol, from, now, types.TickFlagAll, tabular.WithRawTime())
	case "deals":
		return rt.data.HistoryDealsTable(ctx, terminal.HistoryQuery{
			From:  from.Unix(),
			To:    now.Unix(),
			Group: job.Symbol,
		}, tabular.WithRawTime())
	case "positions":
		return rt.data.PositionsTable(ctx, terminal.OrderFilter{Symbol: job.Symbol}, tabular.WithRawTime())
	default:
		return nil, fmt.Errorf("unsupported export kind %q", job.Kind)
	}
}

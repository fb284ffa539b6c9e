package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/mt5-bridge/internal/trading"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/urfave/cli/v3"
)

func positionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "positions",
		Usage: "Batch operations on open positions",
		Commands: []*cli.Command{
			closeCommand(),
			sltpCommand(),
		},
	}
}

func closeCommand() *cli.Command {
	return &cli.Command{
		Name:  "close",
		Usage: "Close the selected open positions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbol", Usage: "Only positions on this symbol"},
			&cli.StringFlag{Name: "group", Usage: "Only positions whose symbol matches this group pattern"},
			&cli.UintSliceFlag{Name: "ticket", Usage: "Only these position tickets"},
			&cli.StringFlag{Name: "filling", Value: "IOC", Usage: "Filling mode: FOK, IOC or RETURN"},
			&cli.BoolFlag{
				Name:  "dry-run",
				Value: true,
				Usage: "Validate the close requests without executing them",
			},
		},
		Action: closeAction,
	}
}

func closeAction(ctx context.Context, cmd *cli.Command) error {
	filling, err := types.ParseOrderFilling(cmd.String("filling"))
	if err != nil {
		return err
	}

	rt, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	results, err := rt.trading.ClosePositions(ctx, trading.CloseParams{
		Selector: trading.Selector{
			Symbol:  cmd.String("symbol"),
			Group:   cmd.String("group"),
			Tickets: ticketArgs(cmd),
		},
		FillingMode: filling,
		DryRun:      cmd.Bool("dry-run"),
	})
	if err != nil {
		return err
	}

	return printResults(closeReport(results))
}

func sltpCommand() *cli.Command {
	return &cli.Command{
		Name:  "sltp",
		Usage: "Rewrite stop loss / take profit on the selected positions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbol", Required: true, Usage: "Positions on this symbol"},
			&cli.UintSliceFlag{Name: "ticket", Usage: "Only these position tickets"},
			&cli.FloatFlag{Name: "sl", Usage: "New stop loss price"},
			&cli.FloatFlag{Name: "tp", Usage: "New take profit price"},
			&cli.BoolFlag{
				Name:  "dry-run",
				Value: true,
				Usage: "Validate the updates without executing them",
			},
		},
		Action: sltpAction,
	}
}

func sltpAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	params := trading.SLTPParams{
		Symbol:  cmd.String("symbol"),
		Tickets: ticketArgs(cmd),
		DryRun:  cmd.Bool("dry-run"),
	}

	if cmd.IsSet("sl") {
		params.SL = optional.Some(cmd.Float("sl"))
	}

	if cmd.IsSet("tp") {
		params.TP = optional.Some(cmd.Float("tp"))
	}

	results, err := rt.trading.UpdateSLTP(ctx, params)
	if err != nil {
		return err
	}

	return printResults(sltpReport(results))
}

func ticketArgs(cmd *cli.Command) []uint64 {
	return cmd.UintSlice("ticket")
}

// itemReport is the printable shape of one batch result.
type itemReport struct {
	Ticket  uint64 `json:"ticket"`
	Symbol  string `json:"symbol"`
	Status  string `json:"status"`
	Retcode uint32 `json:"retcode,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func closeReport(results []trading.CloseResult) []itemReport {
	out := make([]itemReport, 0, len(results))

	for _, r := range results {
		item := itemReport{Ticket: r.Ticket, Symbol: r.Symbol}
		switch {
		case r.Err != nil:
			item.Status = "failed"
			item.Detail = r.Err.Error()
		default:
			item.Status = r.Outcome.Class.String()
		}

		if r.Outcome != nil && r.Outcome.Result != nil {
			item.Retcode = uint32(r.Outcome.Result.Retcode)
		}

		out = append(out, item)
	}

	return out
}

func sltpReport(results []trading.SLTPResult) []itemReport {
	out := make([]itemReport, 0, len(results))

	for _, r := range results {
		item := itemReport{Ticket: r.Ticket, Symbol: r.Symbol}
		switch {
		case r.Skipped:
			item.Status = "skipped"
			item.Detail = "protective prices already match"
		case r.Err != nil:
			item.Status = "failed"
			item.Detail = r.Err.Error()
		default:
			item.Status = r.Outcome.Class.String()
		}

		if r.Outcome != nil && r.Outcome.Result != nil {
			item.Retcode = uint32(r.Outcome.Result.Retcode)
		}

		out = append(out, item)
	}

	return out
}

func printResults(items []itemReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	return nil
}

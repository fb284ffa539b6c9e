// Command mt5-bridge runs the terminal bridge: an HTTP façade over the
// terminal's read surface, an export job runner, and batch position
// operations.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/mt5-bridge/internal/config"
	"github.com/rxtech-lab/mt5-bridge/internal/dataclient"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal/sim"
	"github.com/rxtech-lab/mt5-bridge/internal/trading"
	"github.com/urfave/cli/v3"
)

// runtime bundles the connected service stack a command works with.
type runtime struct {
	cfg     config.Config
	log     *logger.Logger
	sess    *session.Session
	data    *dataclient.Client
	trading *trading.Client
}

// newBackend selects the terminal backend. The native terminal binding is
// platform-specific and ships separately; sim is always available.
func newBackend(cfg config.TerminalConfig) (terminal.API, error) {
	switch cfg.Backend {
	case "sim":
		return sim.New(sim.DefaultConfig()), nil
	default:
		return nil, fmt.Errorf("unsupported terminal backend %q", cfg.Backend)
	}
}

// connect builds and connects the full stack from the config file the
// command was given.
func connect(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if backend := cmd.String("backend"); backend != "" {
		cfg.Terminal.Backend = backend
	}

	lg, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	api, err := newBackend(cfg.Terminal)
	if err != nil {
		return nil, err
	}

	sess := session.New(api, session.Config{
		Init: terminal.InitParams{
			Path:      cfg.Terminal.Path,
			Login:     cfg.Terminal.Login,
			Password:  cfg.Terminal.Password,
			Server:    cfg.Terminal.Server,
			TimeoutMS: cfg.Terminal.TimeoutMS,
			Portable:  cfg.Terminal.Portable,
		},
		RetryCount:    cfg.Session.RetryCount,
		RetryInterval: cfg.SessionRetryInterval(),
	}, lg)

	if err := sess.Connect(ctx); err != nil {
		sess.Close()

		return nil, err
	}

	data := dataclient.New(sess, dataclient.Config{
		ReadRetries:   cfg.Data.ReadRetries,
		RetryInterval: cfg.DataRetryInterval(),
	}, lg)

	return &runtime{
		cfg:     cfg,
		log:     lg,
		sess:    sess,
		data:    data,
		trading: trading.New(sess, data, trading.Config{BatchLimit: cfg.Trading.BatchLimit}, lg),
	}, nil
}

func (rt *runtime) close() {
	rt.sess.Close()
	_ = rt.log.Sync()
}

func main() {
	cmd := &cli.Command{
		Name:  "mt5-bridge",
		Usage: "Bridge to a MetaTrader 5 terminal: HTTP façade, exports and batch position operations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Terminal backend override (e.g. sim)",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			exportCommand(),
			positionsCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

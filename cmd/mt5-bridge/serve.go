package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/api"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP façade",
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	server := api.NewServer(api.Config{
		Addr:      rt.cfg.Server.Addr,
		APIKey:    rt.cfg.Server.APIKey,
		RateLimit: rt.cfg.Server.RateLimit,
		RateBurst: rt.cfg.Server.RateBurst,
	}, rt.data, rt.log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		rt.log.Error("shutdown failed", zap.Error(err))

		return err
	}

	return <-errCh
}

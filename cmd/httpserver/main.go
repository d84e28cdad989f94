package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/sskr-service/cmd/flags"
	"github.com/ruteri/sskr-service/httpserver"
	"github.com/ruteri/sskr-service/kms"
	"github.com/ruteri/sskr-service/metrics"
	"github.com/urfave/cli/v2"
)

var cliFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "admin-listen-addr",
		Usage: "serve the recovery keeper's admin API on this address instead of under /admin",
	},
	&cli.StringFlag{
		Name:  "plan",
		Usage: "YAML split plan; when set the server runs a recovery keeper for it under /admin",
	},
	&cli.DurationFlag{
		Name:  "unlock-timeout",
		Value: 0,
		Usage: "give up waiting for the keeper to unlock after this long, 0 waits forever",
	},
	flags.StoreFlag,
	flags.LogServiceFlagFn("sskr-service"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "sskr-server",
		Usage: "Serve the sskr split/combine API and an optional recovery keeper",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String("listen-addr"))
			cfg.AdminListenAddr = cCtx.String("admin-listen-addr")
			cfg.UnlockTimeout = cCtx.Duration("unlock-timeout")

			var store httpserver.ShardStore
			shardStore, err := flags.OpenShardStore(cCtx, logger)
			if err != nil {
				logger.Error("Failed to configure storage", "err", err)
				return err
			}
			if shardStore != nil {
				store = shardStore
			}
			handler := httpserver.NewHandler(store, logger)

			var adminHandler *httpserver.AdminHandler
			if planPath := cCtx.String("plan"); planPath != "" {
				f, err := os.Open(planPath)
				if err != nil {
					logger.Error("Failed to open split plan", "err", err)
					return err
				}
				plan, err := kms.LoadSplitPlan(f)
				f.Close()
				if err != nil {
					logger.Error("Failed to load split plan", "err", err)
					return err
				}

				keeper, err := kms.NewSSKRKMSRecovery(plan.Config())
				if err != nil {
					logger.Error("Failed to create recovery keeper", "err", err)
					return err
				}
				adminHandler = httpserver.NewAdminHandler(logger, keeper, plan.AdminKeys())
				metrics.KeeperUnlocked.Set(0)
				logger.Info("Recovery keeper configured", "admins", len(plan.Admins), "groups", len(plan.Groups), "groupThreshold", plan.GroupThreshold)
			}

			server, err := httpserver.New(cfg, handler, adminHandler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}
			server.RunInBackground()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if adminHandler != nil {
				go func() {
					waitCtx := ctx
					if cfg.UnlockTimeout > 0 {
						var cancel context.CancelFunc
						waitCtx, cancel = context.WithTimeout(ctx, cfg.UnlockTimeout)
						defer cancel()
					}

					logger.Info("Waiting for admins to submit shards")
					if err := adminHandler.WaitForUnlock(waitCtx); err != nil {
						if errors.Is(err, context.Canceled) {
							return
						}
						logger.Error("Keeper was not unlocked", "err", err)
						stop()
						return
					}
					logger.Info("Keeper unlocked, secret recovered")
				}()
			}

			logger.Info("Server is running, press Ctrl+C to stop")
			<-ctx.Done()
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

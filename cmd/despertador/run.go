package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bsid.es/despertador"
	"bsid.es/despertador/mem"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alarm daemon",
	Long: `Run the alarm daemon: arm active alarms with the in-process wake
service, ring them when due, and log notifications. Stops on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		wake := mem.NewWakeService()
		handler := &despertador.FireHandler{
			OpenStore: func(ctx context.Context) (despertador.AlarmStore, error) {
				return store, nil
			},
			Notify:  mem.NewNotifyLog(slog.Default()),
			Epsilon: cfg.Epsilon,
		}
		wake.RegisterFunc(func(ctx context.Context, id int64) {
			if err := handler.HandleWake(ctx); err != nil {
				slog.Error("wake handling failed", "id", id, "error", err)
			}
		})
		if err := wake.Run(ctx); err != nil {
			return err
		}
		defer wake.Interrupt()

		sched := &despertador.Scheduler{Store: store, Wake: wake}
		if cfg.RearmOnBoot {
			if err := sched.Reconcile(ctx); err != nil {
				slog.Error("boot reconciliation failed", "error", err)
			}
		}

		slog.Info("daemon started", "db", cfg.DBPath, "rearm_on_boot", cfg.RearmOnBoot)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
		}

		slog.Info("daemon stopped")
		return nil
	},
}

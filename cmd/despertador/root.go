package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bsid.es/despertador"
	"bsid.es/despertador/config"
	"bsid.es/despertador/sqlite"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "despertador",
	Short: "Alarm clock daemon and manager",
	Long: `Despertador keeps alarm records in a durable store, arms them with a
wake service, and rings them on time: the daemon re-arms active alarms at
boot, fires due ones, and supports snooze and dismissal.

Subcommands manage alarms in the shared database; "run" starts the daemon.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(runCmd)
}

func openStore() (*sqlite.Store, error) {
	return sqlite.Open(cfg.DBPath, 2)
}

// rearmWake stands in for the wake service in one-shot management commands.
// It accepts every registration: the actual arming happens when the daemon
// reconciles active records at boot, which is how the platform's
// reschedule-on-boot flag is modeled host-side.
type rearmWake struct{}

func (rearmWake) RegisterOneShot(ctx context.Context, id int64, delay time.Duration) bool {
	return true
}

func (rearmWake) Cancel(ctx context.Context, id int64) bool {
	return true
}

var _ despertador.WakeService = rearmWake{}

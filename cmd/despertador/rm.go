package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bsid.es/despertador"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sched := &despertador.Scheduler{Store: store, Wake: rearmWake{}}
		if err := sched.Cancel(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Alarm %d deleted\n", id)
		return nil
	},
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List alarms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		alarms, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(alarms) == 0 {
			fmt.Println("No alarms.")
			return nil
		}
		for _, alarm := range alarms {
			state := "off"
			if alarm.Active {
				state = "on"
			}
			fmt.Printf("%4d  %-3s  %s  %s\n", alarm.ID, state, alarm.FireAt.Local().Format(time.RFC1123), alarm.Label)
		}
		return nil
	},
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bsid.es/despertador"
)

var addCmd = &cobra.Command{
	Use:   "add <time> [label]",
	Short: "Create an alarm",
	Long: `Create an alarm. Time is either "15:04" (today, rolled over to
tomorrow if already past) or "2006-01-02T15:04".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fireAt, err := parseWhen(args[0], time.Now())
		if err != nil {
			return err
		}
		label := ""
		if len(args) > 1 {
			label = args[1]
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sched := &despertador.Scheduler{Store: store, Wake: rearmWake{}}
		alarm, err := sched.ScheduleNew(cmd.Context(), fireAt, label)
		if err != nil {
			return err
		}
		fmt.Printf("Alarm %d (%s) set for %s\n", alarm.ID, alarm.Label, alarm.FireAt.Local().Format(time.RFC1123))
		return nil
	},
}

func parseWhen(s string, now time.Time) (time.Time, error) {
	if strings.Contains(s, "T") {
		at, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
		return at, nil
	}
	at, err := time.ParseInLocation("15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.Local), nil
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/scheduler"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage daily scheduled messages (run by `serve`)",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add PHONE HH:MM MESSAGE",
	Short: "Send MESSAGE to PHONE every day at HH:MM",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			task, next, err := msg.Schedule(args[0], args[2], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏰ Scheduled %s for +%s daily at %s (next: %s)\n",
				task.ID, task.Phone, task.Time, next.Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		now := st.Now()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tNEXT\tMESSAGE")
		for _, t := range st.ListSchedules() {
			next := "-"
			if h, m, err := scheduler.ParseHHMM(t.Time); err == nil {
				next = scheduler.NextDaily(now, h, m).Format("2006-01-02 15:04")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Time, next, t.Message)
		}
		return tw.Flush()
	},
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		ok, err := st.RemoveSchedule(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("schedule %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑  Removed %s\n", args[0])
		return nil
	},
}

func init() {
	scheduleCmd.AddCommand(scheduleAddCmd, scheduleListCmd, scheduleRemoveCmd)
}

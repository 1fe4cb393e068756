package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/db"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/repository"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect and export the send log",
}

func openSendLogRepo() (*repository.SendLogRepositoryImpl, func() error, error) {
	sqlDB, err := db.OpenSink(cfg.Sink)
	if err != nil {
		return nil, nil, fmt.Errorf("sink connect: %w", err)
	}
	repo, err := repository.NewSendLogRepository(sqlDB, strings.ToLower(cfg.Sink.Driver))
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return repo, sqlDB.Close, nil
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent send log entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		fromSink, _ := cmd.Flags().GetBool("sink")
		rawStatus, _ := cmd.Flags().GetString("status")
		rawPhone, _ := cmd.Flags().GetString("phone")

		status := model.MessageStatus(rawStatus)
		if rawStatus != "" && !status.Valid() {
			return fmt.Errorf("invalid status %q (sent | failed)", rawStatus)
		}
		phone := ""
		if rawPhone != "" {
			phone = util.NormalizePhone(rawPhone, cfg.Owner.CountryCode)
		}

		var entries []model.SendLogEntry
		if fromSink {
			repo, closeDB, err := openSendLogRepo()
			if err != nil {
				return err
			}
			defer app.LogClose("sink", closeDB)

			entries, err = repo.List(cmd.Context(), phone, status, limit, 0)
			if err != nil {
				return fmt.Errorf("sink list: %w", err)
			}
		} else {
			st, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			all := st.LogEntries()
			for i := len(all) - 1; i >= 0 && len(entries) < limit; i-- {
				e := all[i]
				if (phone != "" && e.Phone != phone) || (status != "" && e.Status != status) {
					continue
				}
				entries = append(entries, e)
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tPHONE\tTYPE\tSTATUS\tMESSAGE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t+%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Phone, e.Type, e.Status, oneLine(e.Message, 60))
		}
		return tw.Flush()
	},
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the local send log into the SQL sink (idempotent)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		entries := st.LogEntries()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "send log is empty, nothing to export")
			return nil
		}

		repo, closeDB, err := openSendLogRepo()
		if err != nil {
			return err
		}
		defer app.LogClose("sink", closeDB)

		n, err := repo.InsertBatch(cmd.Context(), entries)
		if err != nil {
			return fmt.Errorf("export (%d written before failure): %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), ">> Exported %d new of %d entries to %s ✅\n", n, len(entries), cfg.Sink.Driver)
		return nil
	},
}

func init() {
	logsListCmd.Flags().Int("limit", 20, "max entries to show")
	logsListCmd.Flags().Bool("sink", false, "read from the SQL sink instead of the local log")
	logsListCmd.Flags().String("status", "", "sent | failed")
	logsListCmd.Flags().String("phone", "", "only this phone")
	logsCmd.AddCommand(logsListCmd, logsExportCmd)
}

package cmd

import (
	"fmt"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the send_log table in the configured sink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dry, _ := cmd.Flags().GetBool("print"); dry {
			ddl, err := repository.MigrationSQL(cfg.Sink.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ddl)
			return nil
		}

		repo, closeDB, err := openSendLogRepo()
		if err != nil {
			return err
		}
		defer app.LogClose("sink", closeDB)

		if err := repo.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> Migration complete on %s ✅\n", cfg.Sink.Driver)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("print", false, "print the DDL instead of running it")
}

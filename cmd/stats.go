package cmd

import (
	"fmt"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the bot status report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		// reporting only; no transport needed
		msg := app.NewMessenger(cfg, st, nil)

		if asJSON {
			return printJSON(cmd.OutOrStdout(), msg.Stats())
		}
		fmt.Fprint(cmd.OutOrStdout(), msg.StatusReport())
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "print counters as JSON")
}

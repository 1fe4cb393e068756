package cmd

import (
	"fmt"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Manage message templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List message templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		for _, t := range st.ListTemplates() {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] (%s)\n%s\n\n", t.ID, t.Category, t.Content)
		}
		return nil
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add CONTENT",
	Short: "Add a message template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		t, err := st.AddTemplate(args[0], category)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Template %d added (%s)\n", t.ID, t.Category)
		return nil
	},
}

func init() {
	templatesAddCmd.Flags().String("category", "custom", "template category")
	templatesCmd.AddCommand(templatesListCmd, templatesAddCmd)
}

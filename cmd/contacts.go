package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage contacts",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add NAME PHONE",
	Short: "Add a contact (phone is normalized to the country code)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")

		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		c, err := st.AddContact(args[0], args[1], group)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s (+%s) to %s\n", c.Name, c.Phone, c.Group)
		return nil
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts, optionally one group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		contacts := st.ListContacts()
		if group != "" {
			contacts = st.ListContactsByGroup(group)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), contacts)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPHONE\tGROUP\tADDED")
		for _, c := range contacts {
			fmt.Fprintf(tw, "%s\t+%s\t%s\t%s\n", c.Name, c.Phone, c.Group, c.AddedAt.Format("2006-01-02 15:04"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d contact(s)\n", len(contacts))
		return nil
	},
}

func init() {
	contactsAddCmd.Flags().String("group", "general", "contact group")
	contactsListCmd.Flags().String("group", "", "only list this group")
	contactsListCmd.Flags().Bool("json", false, "print JSON")
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd)
}

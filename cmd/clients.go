package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/service/business"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Business edition: paying clients, plans and income",
}

func openBusiness() (*business.Service, error) {
	st, err := app.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return app.NewBusiness(cfg, st), nil
}

var clientsAddCmd = &cobra.Command{
	Use:   "add BUSINESS CONTACT PHONE",
	Short: "Add a client and print its welcome message",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("plan")
		plan, ok := model.ParsePlan(raw)
		if !ok {
			return fmt.Errorf("unknown plan %q (basic | pro | enterprise)", raw)
		}

		biz, err := openBusiness()
		if err != nil {
			return err
		}
		c, welcome, err := biz.Onboard(args[0], args[1], args[2], plan)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Added client #%d: %s\n", c.ID, c.Business)
		fmt.Fprintf(out, "   Plan: %s - R%d/month\n", c.Plan, c.Price)
		fmt.Fprintf(out, "   Contact: %s (+%s)\n\n", c.Contact, c.Phone)
		fmt.Fprintln(out, "📝 Welcome message:")
		fmt.Fprintln(out, welcome)
		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients with the monthly income report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		biz, err := openBusiness()
		if err != nil {
			return err
		}
		r := biz.Report()
		out := cmd.OutOrStdout()
		if len(r.Clients) == 0 {
			fmt.Fprintln(out, "📭 No clients yet")
			return nil
		}
		for _, c := range r.Clients {
			fmt.Fprintf(out, "\n🏢 #%d %s\n", c.ID, c.Business)
			fmt.Fprintf(out, "   👤 %s\n   📞 +%s\n", c.Contact, c.Phone)
			fmt.Fprintf(out, "   📋 Plan: %s\n   💰 R%d/month\n", strings.ToUpper(c.Plan.String()), c.Price)
			fmt.Fprintf(out, "   📅 Joined: %s\n   🔄 Status: %s\n", c.JoinDate, c.Status)
		}
		fmt.Fprintf(out, "\n💰 MONTHLY INCOME: R%d\n👥 ACTIVE CLIENTS: %d of %d\n", r.MonthlyIncome, r.Active, len(r.Clients))
		return nil
	},
}

var clientsCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("client id %q: %w", args[0], err)
		}
		biz, err := openBusiness()
		if err != nil {
			return err
		}
		c, err := biz.Cancel(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client #%d (%s) cancelled\n", c.ID, c.Business)
		return nil
	},
}

var clientsWelcomeCmd = &cobra.Command{
	Use:   "welcome ID",
	Short: "Print the welcome message for an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("client id %q: %w", args[0], err)
		}
		biz, err := openBusiness()
		if err != nil {
			return err
		}
		c, ok := biz.Client(id)
		if !ok {
			return fmt.Errorf("client %d not found", id)
		}
		fmt.Fprintln(cmd.OutOrStdout(), biz.WelcomeMessage(c))
		return nil
	},
}

var clientsPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show available plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, p := range model.Plans() {
			fmt.Fprintf(out, "\n%s PLAN - R%d/month\n", strings.ToUpper(p.Name.String()), p.Price)
			for _, f := range p.Features {
				fmt.Fprintf(out, "   ✓ %s\n", f)
			}
		}
		return nil
	},
}

var clientsIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Project income for a number of clients per plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := map[model.Plan]int{}
		for _, p := range model.Plans() {
			n, _ := cmd.Flags().GetInt(p.Name.String())
			counts[p.Name] = n
		}
		proj, err := business.ProjectIncome(counts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "📈 INCOME PROJECTION")
		for _, l := range proj.Lines {
			fmt.Fprintf(out, "%s clients: %d × R%d = R%d\n", l.Plan, l.Clients, l.Price, l.Subtotal)
		}
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintf(out, "💰 MONTHLY INCOME: R%d\n💰 YEARLY INCOME: R%d\n", proj.Monthly, proj.Yearly)
		return nil
	},
}

var clientsPitchCmd = &cobra.Command{
	Use:   "pitch",
	Short: "Print the sales pitch for prospects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		biz, err := openBusiness()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), biz.SalesPitch())
		return nil
	},
}

func init() {
	clientsAddCmd.Flags().String("plan", "basic", "basic | pro | enterprise")
	for _, p := range model.Plans() {
		clientsIncomeCmd.Flags().Int(p.Name.String(), 0, fmt.Sprintf("number of %s clients (R%d/month)", p.Name, p.Price))
	}
	clientsCmd.AddCommand(
		clientsAddCmd,
		clientsListCmd,
		clientsCancelCmd,
		clientsWelcomeCmd,
		clientsPlansCmd,
		clientsIncomeCmd,
		clientsPitchCmd,
	)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the data directory with demo contacts and templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Seeding demo data...")

		added, err := seedContacts(st)
		if err != nil {
			return err
		}
		if err := seedTemplates(st); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> Seed completed ✅ (%d new contacts, data in %s)\n", added, st.Dir())
		return nil
	},
}

// seedContacts adds deterministic demo contacts; re-running skips existing ones.
func seedContacts(st *store.Store) (int, error) {
	demo := []struct{ name, phone, group string }{
		{"Thandi Mokoena", "082 555 0101", "clients"},
		{"Johan van Wyk", "083 555 0102", "clients"},
		{"Lerato Dlamini", "084 555 0103", "vip"},
		{"Sipho Nkosi", "+27 71 555 0104", "vip"},
		{"Anele Khumalo", "072 555 0105", model.DefaultGroup},
	}

	added := 0
	for _, d := range demo {
		_, err := st.AddContact(d.name, d.phone, d.group)
		switch {
		case err == nil:
			added++
		case errors.Is(err, store.ErrDuplicateContact):
		default:
			return added, fmt.Errorf("seed contact %q: %w", d.name, err)
		}
	}
	return added, nil
}

// seedTemplates adds the demo promo template once.
func seedTemplates(st *store.Store) error {
	const promo = "🎉 This week only: 20% off for our WhatsApp subscribers. Reply YES to claim!"
	for _, t := range st.ListTemplates() {
		if t.Content == promo {
			return nil
		}
	}
	if _, err := st.AddTemplate(promo, "promo"); err != nil {
		return fmt.Errorf("seed template: %w", err)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/spf13/cobra"
)

// withMessenger opens the store and the configured transport for the lifetime of fn.
func withMessenger(cmd *cobra.Command, fn func(st *store.Store, msg *messenger.Service) error) error {
	st, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	tr, closeTr, err := app.NewTransport(cfg, cfg.Sender.Transport, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("transport %s: %w", cfg.Sender.Transport, err)
	}
	defer app.LogClose("transport", closeTr)

	return fn(st, app.NewMessenger(cfg, st, tr))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func printResults(w io.Writer, results []messenger.Result) {
	for _, r := range results {
		if r.Sent {
			fmt.Fprintf(w, "✅ %s\n", r.Canonical)
		} else {
			fmt.Fprintf(w, "❌ %s: %s\n", r.Phone, r.Error)
		}
	}
	fmt.Fprintf(w, "sent %d/%d\n", messenger.CountSent(results), len(results))
}

package cmd

import (
	"fmt"
	"os"

	"github.com/jmehdipour/wa-assistant/cmd/worker"
	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	cfg     config.Config

	rootCmd = &cobra.Command{
		Use:           "wa-assistant",
		Short:         "WhatsApp messaging assistant CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = c
			logger.Init(cfg.LogLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(
		contactsCmd,
		templatesCmd,
		sendCmd,
		scheduleCmd,
		statsCmd,
		clientsCmd,
		logsCmd,
		serveCmd,
		migrateCmd,
		seedCmd,
		worker.NewWorkerCmd(),
	)
}

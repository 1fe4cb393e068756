package worker

import "github.com/spf13/cobra"

// NewWorkerCmd returns the parent "worker" command.
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background workers",
		Long: `Background workers drain the Kafka topic filled by the kafka transport
(sender.transport: kafka) and deliver through worker.transport.`,
	}
	cmd.AddCommand(senderCmd)

	return cmd
}

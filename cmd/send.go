package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send messages through the configured transport",
}

// interruptible returns a context cancelled by SIGINT/SIGTERM, so a bulk send stops
// between recipients instead of dying mid-write.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var sendInstantCmd = &cobra.Command{
	Use:   "instant PHONE MESSAGE",
	Short: "Send one message now",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			phone, err := msg.SendInstant(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Message to +%s handed to %s transport\n", phone, cfg.Sender.Transport)
			return nil
		})
	},
}

var sendBulkCmd = &cobra.Command{
	Use:   "bulk MESSAGE --to PHONE[,PHONE...]",
	Short: "Send one message to several phones, pausing between sends",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetStringSlice("to")
		if len(to) == 0 {
			return fmt.Errorf("--to is required")
		}
		ctx, stop := interruptible(cmd)
		defer stop()

		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			results, err := msg.SendMany(ctx, to, args[0])
			printResults(cmd.OutOrStdout(), results)
			return err
		})
	},
}

var sendGroupCmd = &cobra.Command{
	Use:   "group GROUP MESSAGE",
	Short: "Broadcast a message to every contact in a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := interruptible(cmd)
		defer stop()

		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			results, err := msg.Broadcast(ctx, args[0], args[1])
			if len(results) == 0 && err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No contacts in group %q\n", args[0])
				return nil
			}
			printResults(cmd.OutOrStdout(), results)
			return err
		})
	},
}

var sendAttachCmd = &cobra.Command{
	Use:   "attach PHONE FILE",
	Short: "Send a file with an optional caption",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caption, _ := cmd.Flags().GetString("caption")
		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			phone, err := msg.SendAttachment(cmd.Context(), args[0], caption, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s sent to +%s\n", args[1], phone)
			return nil
		})
	},
}

var sendTemplateCmd = &cobra.Command{
	Use:   "template ID PHONE",
	Short: "Send a stored template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("template id %q: %w", args[0], err)
		}
		return withMessenger(cmd, func(st *store.Store, msg *messenger.Service) error {
			t, ok := st.Template(id)
			if !ok {
				return fmt.Errorf("template %d not found", id)
			}
			phone, err := msg.SendInstant(cmd.Context(), args[1], t.Content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Template %d sent to +%s\n", id, phone)
			return nil
		})
	},
}

var sendStatusCmd = &cobra.Command{
	Use:   "status [PHONE]",
	Short: "Send the bot status report (to the owner by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := cfg.Owner.Phone
		if len(args) == 1 {
			to = args[0]
		}
		return withMessenger(cmd, func(_ *store.Store, msg *messenger.Service) error {
			phone, err := msg.SendStatus(cmd.Context(), to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Status report sent to +%s\n", phone)
			return nil
		})
	},
}

func init() {
	sendBulkCmd.Flags().StringSlice("to", nil, "recipient phones, comma separated")
	sendAttachCmd.Flags().String("caption", "", "message sent with the file")
	sendCmd.AddCommand(sendInstantCmd, sendBulkCmd, sendGroupCmd, sendAttachCmd, sendTemplateCmd, sendStatusCmd)
}

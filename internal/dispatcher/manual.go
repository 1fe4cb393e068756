package dispatcher

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ManualTransport prints step-by-step instructions for sending the message by hand
// from the WhatsApp app. It never fails unless the writer does.
type ManualTransport struct {
	out io.Writer
}

func NewManualTransport(out io.Writer) *ManualTransport {
	return &ManualTransport{out: out}
}

func (t *ManualTransport) Deliver(ctx context.Context, phone, message, attachment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	sep := strings.Repeat("=", 40)
	fmt.Fprintf(&b, "\n📤 READY TO SEND:\nTo: +%s\nMessage: %s\n", phone, message)
	if attachment != "" {
		fmt.Fprintf(&b, "Attachment: %s\n", attachment)
	}
	b.WriteString("\n📱 INSTRUCTIONS:\n1. Open WhatsApp on your phone\n")
	fmt.Fprintf(&b, "2. Send to: +%s\n3. Copy this message: %s\n", phone, message)
	if attachment != "" {
		fmt.Fprintf(&b, "4. Attach the file: %s\n", attachment)
	}
	b.WriteString(sep + "\n")

	_, err := io.WriteString(t.out, b.String())
	return err
}

// Package notify contains notification delivery adapters.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/example/tempo/internal/ports/secondary"
)

// ConsoleSender implements secondary.NotificationSender by printing to a
// writer. It stands in for a mail or chat integration in single-machine
// installs; the engine only sees the port.
type ConsoleSender struct {
	out io.Writer
}

// NewConsoleSender creates a sender printing to stdout.
func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{out: os.Stdout}
}

// NewConsoleSenderTo creates a sender printing to the given writer.
func NewConsoleSenderTo(out io.Writer) *ConsoleSender {
	return &ConsoleSender{out: out}
}

// Send prints the notification.
func (s *ConsoleSender) Send(ctx context.Context, userID, templateKind string, params map[string]string) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := color.New(color.FgCyan).Sprintf("notify %s [%s]", userID, templateKind)
	if _, err := fmt.Fprintln(s.out, header); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(s.out, "  %s: %s\n", k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// Ensure ConsoleSender implements the interface
var _ secondary.NotificationSender = (*ConsoleSender)(nil)

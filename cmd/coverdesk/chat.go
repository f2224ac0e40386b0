package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var chatWatchFAQ bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the support desk in the terminal",
	Long: `Start a line-based support conversation.

Type a question and press Enter. When the desk needs a policy number,
customer ID or claim ID it asks for it; reply on the next line. The session
ends when the conversation is resolved or handed to a human agent, or on
Ctrl+D.

Examples:
  coverdesk chat
  coverdesk chat --watch-faq    # reload faq.path while chatting`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatWatchFAQ, "watch-faq", false, "Reload faq.path when it changes")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := openDesk(ctx, deskOptions{WatchFAQ: chatWatchFAQ})
	if err != nil {
		return err
	}
	defer d.Close()

	return chatLoop(ctx, d, nil, os.Stdin, os.Stdout)
}

// chatLoop reads user lines from in and prints replies to out until the
// conversation ends, input runs out, or ctx is cancelled.
func chatLoop(ctx context.Context, d *desk, s *models.ConversationState, in io.Reader, out io.Writer) error {
	prompt := color.New(color.FgCyan, color.Bold)
	scanner := bufio.NewScanner(in)

	if s == nil {
		fmt.Fprintln(out, "How can we help with your insurance today? (Ctrl+D to quit)")
	} else {
		printTranscript(out, s)
	}

	for {
		prompt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		next, err := d.turn(ctx, s, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
			if next == nil {
				continue
			}
		}
		s = next

		printOutcome(out, s)
		if s.IsTerminal() {
			return nil
		}
	}
}

// printOutcome prints what the user should see after a turn.
func printOutcome(out io.Writer, s *models.ConversationState) {
	desk := color.New(color.FgGreen, color.Bold)

	switch {
	case s.IsAwaiting():
		desk.Fprint(out, "desk> ")
		fmt.Fprintln(out, s.Pending.Question)
	case s.Flags.EscalationRequired:
		desk.Fprint(out, "desk> ")
		fmt.Fprintln(out, lastTurnText(s))
		printStatus(out, "⚠", "Conversation escalated to a human agent", color.FgYellow)
	case s.Flags.ConversationEnded:
		desk.Fprint(out, "desk> ")
		fmt.Fprintln(out, s.FinalAnswer)
	default:
		desk.Fprint(out, "desk> ")
		fmt.Fprintln(out, lastTurnText(s))
	}
}

// printTranscript prints the full history of a resumed conversation.
func printTranscript(out io.Writer, s *models.ConversationState) {
	dim := color.New(color.Faint)
	dim.Fprintf(out, "Conversation %s (%s, iteration %d)\n", s.ID, s.Status(), s.IterationCount)
	for _, t := range s.History {
		if t.Role.IsSpecialist() {
			dim.Fprintln(out, t.String())
			continue
		}
		fmt.Fprintln(out, t.String())
	}
	if s.IsAwaiting() {
		color.New(color.FgYellow).Fprintf(out, "Waiting for: %s\n", s.Pending.MissingInfo)
	}
}

func lastTurnText(s *models.ConversationState) string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Text
}

func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

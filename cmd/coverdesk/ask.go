package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Run one conversation turn for a question and print the answer.

If the desk needs more information, the clarifying question is printed
along with the conversation ID. Answer it with 'coverdesk resume'.

Examples:
  coverdesk ask "What is my collision deductible on POL000001?"
  coverdesk ask --json "When is my next bill due?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the conversation state as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	d, err := openDesk(ctx, deskOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := d.turn(ctx, nil, question)
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	printOutcome(os.Stdout, s)
	if s.IsAwaiting() {
		fmt.Printf("\nReply with: coverdesk resume %s \"<your answer>\"\n", s.ID)
	}
	return nil
}

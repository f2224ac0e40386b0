package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var (
	showStatus string
	showLimit  int
	showJSON   bool
)

var showCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "List conversations or print one transcript",
	Long: `Without arguments, lists recent conversations.
With an ID, prints the conversation's transcript and routing state.

Examples:
  coverdesk show
  coverdesk show --status escalated
  coverdesk show 3f2c9a1e-... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showStatus, "status", "", "Filter by status (active, awaiting_user, resolved, escalated)")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Maximum conversations to list")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		s, err := db.GetConversation(args[0])
		if err != nil {
			return err
		}
		if showJSON {
			return printJSON(s)
		}
		printTranscript(os.Stdout, s)
		if r := s.Routing; r.NextAction != "" {
			fmt.Printf("\nLast decision: %s", r.NextAction)
			if r.Target != "" {
				fmt.Printf(" -> %s", r.Target)
			}
			fmt.Println()
		}
		if s.FinalAnswer != "" {
			fmt.Printf("Final answer: %s\n", s.FinalAnswer)
		}
		return nil
	}

	var filter *models.ConversationStatus
	if showStatus != "" {
		st := models.ConversationStatus(showStatus)
		filter = &st
	}
	convs, err := db.ListConversations(filter, showLimit)
	if err != nil {
		return err
	}
	if showJSON {
		return printJSON(convs)
	}
	if len(convs) == 0 {
		fmt.Println("No conversations yet. Run 'coverdesk ask <question>' to start one.")
		return nil
	}
	for _, c := range convs {
		fmt.Printf("%s  %-13s  %s  iter %d  %s\n",
			c.ID, c.Status, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Iteration, truncateText(c.Question, 50))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

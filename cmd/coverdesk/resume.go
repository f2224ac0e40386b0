package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/state"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var (
	resumeStale time.Duration
	resumeClean bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume [conversation-id] [reply]",
	Short: "Continue a saved conversation",
	Long: `Continue a conversation that is waiting for the customer or was
interrupted mid-turn.

Without arguments, lists conversations that can be resumed.
With an ID and a reply, runs one turn with that reply.
With only an ID, continues the conversation interactively. An interrupted
conversation first finishes its pending routing.

Examples:
  coverdesk resume
  coverdesk resume 3f2c9a1e-... "POL000001"
  coverdesk resume 3f2c9a1e-...
  coverdesk resume --clean 3f2c9a1e-...`,
	Args: cobra.MaximumNArgs(2),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().DurationVar(&resumeStale, "stale", time.Minute, "Treat active conversations idle this long as interrupted")
	resumeCmd.Flags().BoolVar(&resumeClean, "clean", false, "Delete the conversation instead of resuming it")
}

func runResume(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listResumable()
	}
	id := args[0]

	if resumeClean {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := state.NewRecoveryManager(db).Clean(id); err != nil {
			return err
		}
		printStatus(os.Stdout, "✓", "Deleted conversation "+id, color.FgGreen)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := openDesk(ctx, deskOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := state.NewRecoveryManager(d.db).Resume(id)
	if err != nil {
		return err
	}

	// An interrupted conversation finishes its routing before taking input.
	if !s.IsAwaiting() {
		s, err = d.orch.ProcessTurn(ctx, s, nil)
		if err != nil {
			return err
		}
		if err := d.db.SaveConversation(s); err != nil {
			return err
		}
		printOutcome(os.Stdout, s)
		if s.IsTerminal() {
			return nil
		}
	}

	if len(args) == 2 {
		s, err = d.turn(ctx, s, args[1])
		if err != nil {
			return err
		}
		printOutcome(os.Stdout, s)
		return nil
	}

	return chatLoop(ctx, d, s, os.Stdin, os.Stdout)
}

func listResumable() error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	interrupted, err := state.NewRecoveryManager(db).CheckForInterrupted(resumeStale)
	if err != nil {
		return err
	}
	awaiting := models.StatusAwaiting
	waiting, err := db.ListConversations(&awaiting, 50)
	if err != nil {
		return err
	}

	if len(interrupted) == 0 && len(waiting) == 0 {
		fmt.Println("No conversations to resume.")
		return nil
	}

	if len(waiting) > 0 {
		fmt.Println("Waiting for the customer:")
		for _, c := range waiting {
			fmt.Printf("  %s  %s  %s\n", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), truncateText(c.Question, 60))
		}
	}
	if len(interrupted) > 0 {
		if len(waiting) > 0 {
			fmt.Println()
		}
		fmt.Println("Interrupted:")
		for _, c := range interrupted {
			fmt.Printf("  %s  %s  iteration %d  %s\n", c.ConversationID, c.LastActivity.Local().Format("2006-01-02 15:04"), c.Iteration, truncateText(c.Question, 50))
		}
	}
	return nil
}

func truncateText(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

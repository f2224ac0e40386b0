package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/state"
)

var (
	cleanupOlderThan   time.Duration
	cleanupInterrupted bool
	cleanupDryRun      bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old and interrupted conversations",
	Long: `Delete conversations not updated within --older-than.

With --interrupted, also deletes conversations that stopped mid-turn and
have been idle for longer than --older-than.

Examples:
  coverdesk cleanup                     # purge conversations older than 30 days
  coverdesk cleanup --older-than 168h   # older than a week
  coverdesk cleanup --interrupted --dry-run`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 30*24*time.Hour, "Age of conversations to remove")
	cleanupCmd.Flags().BoolVar(&cleanupInterrupted, "interrupted", false, "Also remove interrupted conversations")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be removed without removing")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cleanupInterrupted {
		rm := state.NewRecoveryManager(db)
		stale, err := rm.CheckForInterrupted(cleanupOlderThan)
		if err != nil {
			return err
		}
		for _, c := range stale {
			if cleanupDryRun {
				fmt.Printf("would remove interrupted %s (%s)\n", c.ConversationID, truncateText(c.Question, 50))
				continue
			}
			if err := rm.Clean(c.ConversationID); err != nil {
				return err
			}
		}
		if !cleanupDryRun {
			printStatus(os.Stdout, "✓", fmt.Sprintf("Removed %d interrupted conversations", len(stale)), color.FgGreen)
		}
	}

	if cleanupDryRun {
		fmt.Printf("would purge conversations older than %s\n", cleanupOlderThan)
		return nil
	}

	n, err := db.PurgeOldConversations(cleanupOlderThan)
	if err != nil {
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Purged %d conversations older than %s", n, cleanupOlderThan), color.FgGreen)
	return nil
}

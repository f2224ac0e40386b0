package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/tui"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var (
	tuiResume   string
	tuiWatchFAQ bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat in a full-screen terminal interface",
	Long: `Start a full-screen chat with a scrollable transcript and a live
activity panel showing routing decisions and specialist replies.

Examples:
  coverdesk tui
  coverdesk tui --resume 3f2c9a1e-...   # continue a saved conversation`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiResume, "resume", "", "Conversation ID to continue")
	tuiCmd.Flags().BoolVar(&tuiWatchFAQ, "watch-faq", false, "Reload faq.path when it changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs would draw over the alt screen.
	if cfg.Logging.File == "" {
		logger = zap.NewNop()
	}

	d, err := openDesk(ctx, deskOptions{Events: 256, WatchFAQ: tuiWatchFAQ})
	if err != nil {
		return err
	}
	defer d.Close()

	var s *models.ConversationState
	if tuiResume != "" {
		s, err = d.db.GetConversation(tuiResume)
		if err != nil {
			return err
		}
	}

	program, _ := tui.NewChatProgram(ctx, s, func(ctx context.Context, s *models.ConversationState, text string) (*models.ConversationState, error) {
		return d.turn(ctx, s, text)
	})

	go func() {
		for ev := range d.events.Events() {
			program.Send(tui.EventMsg{Event: ev})
		}
	}()

	_, err = program.Run()
	return err
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer a file of questions concurrently",
	Long: `Run the first turn of a conversation for every non-empty line of a
file ('-' reads stdin) and print one JSON result per line, in input order.

Conversations that need a clarification report the question instead of an
answer and can be continued with 'coverdesk resume'.

Examples:
  coverdesk batch questions.txt
  cat questions.txt | coverdesk batch - --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Conversations to run at once")
}

// batchResult is one output line.
type batchResult struct {
	Line     int                       `json:"line"`
	ID       string                    `json:"id,omitempty"`
	Question string                    `json:"question"`
	Status   models.ConversationStatus `json:"status,omitempty"`
	Answer   string                    `json:"answer,omitempty"`
	Pending  string                    `json:"pending_question,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	questions, err := readQuestions(args[0])
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions in %s", args[0])
	}

	d, err := openDesk(ctx, deskOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	results := make([]batchResult, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(batchConcurrency, 1))
	for i, q := range questions {
		g.Go(func() error {
			results[i] = answerOne(gctx, d, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// numberedQuestion keeps the source line for reporting.
type numberedQuestion struct {
	line int
	text string
}

func answerOne(ctx context.Context, d *desk, q numberedQuestion) batchResult {
	res := batchResult{Line: q.line, Question: q.text}

	s, err := d.turn(ctx, nil, q.text)
	if s != nil {
		res.ID = s.ID
		res.Status = s.Status()
		switch {
		case s.IsAwaiting():
			res.Pending = s.Pending.Question
		case s.Flags.ConversationEnded:
			res.Answer = s.FinalAnswer
		default:
			res.Answer = lastTurnText(s)
		}
	}
	if err != nil {
		res.Error = err.Error()
		d.logger.Warn("batch question failed", zap.Int("line", q.line), zap.Error(err))
	}
	return res
}

func readQuestions(path string) ([]numberedQuestion, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var out []numberedQuestion
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		if text := strings.TrimSpace(scanner.Text()); text != "" && !strings.HasPrefix(text, "#") {
			out = append(out, numberedQuestion{line: n, text: text})
		}
	}
	return out, scanner.Err()
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/config"
	"github.com/ShayCichocki/coverdesk/internal/orchestrator"
	"github.com/ShayCichocki/coverdesk/internal/router"
	"github.com/ShayCichocki/coverdesk/internal/specialist"
	"github.com/ShayCichocki/coverdesk/internal/state"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func init() {
	color.NoColor = true
}

type billingClassifier struct{}

func (billingClassifier) Classify(ctx context.Context, history string) (*models.Classification, error) {
	return &models.Classification{NextAgent: models.AgentBilling, Task: "Look up premium"}, nil
}

type passThrough struct{}

func (passThrough) Synthesize(ctx context.Context, question, reply string) (string, error) {
	return reply, nil
}

// premiumDesk answers premium questions once a policy number is known.
func premiumDesk(t *testing.T) *desk {
	t.Helper()

	db, err := state.Open(filepath.Join(t.TempDir(), "coverdesk.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	table, err := specialist.NewTable(map[models.AgentName]specialist.Specialist{
		models.AgentGeneralHelp: specialist.HandlerFunc(func(ctx context.Context, req specialist.Request) (string, error) {
			return "Happy to help.", nil
		}),
		models.AgentBilling: specialist.HandlerFunc(func(ctx context.Context, req specialist.Request) (string, error) {
			if req.Identifiers.PolicyNumber == "" {
				return "Please provide your policy number.", nil
			}
			return "Your premium is $128.50, billed monthly.", nil
		}),
	})
	require.NoError(t, err)

	orch, err := orchestrator.New(orchestrator.Deps{
		Router:      router.NewEngine(billingClassifier{}),
		Dispatcher:  table,
		Synthesizer: passThrough{},
	})
	require.NoError(t, err)

	return &desk{cfg: config.Default(), logger: zap.NewNop(), db: db, orch: orch}
}

func TestChatLoop_AsksThenAnswers(t *testing.T) {
	d := premiumDesk(t)
	var out bytes.Buffer

	err := chatLoop(context.Background(), d, nil, strings.NewReader("What is my premium?\nPOL000001\n"), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, router.AskPolicyQuestion)
	assert.Contains(t, text, "Your premium is $128.50, billed monthly.")

	convs, err := d.db.ListConversations(nil, 0)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, models.StatusResolved, convs[0].Status)
}

func TestChatLoop_EndOfInputWhileWaiting(t *testing.T) {
	d := premiumDesk(t)
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), d, nil, strings.NewReader("\nWhat is my premium?\n"), &out))

	awaiting := models.StatusAwaiting
	convs, err := d.db.ListConversations(&awaiting, 0)
	require.NoError(t, err)
	require.Len(t, convs, 1)

	// Resuming prints the transcript and finishes with the reply.
	s, err := d.db.GetConversation(convs[0].ID)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, chatLoop(context.Background(), d, s, strings.NewReader("It is POL000002\n"), &out))
	assert.Contains(t, out.String(), "Waiting for: policy number")
	assert.Contains(t, out.String(), "Your premium is $128.50")
}

func TestPrintOutcome_EscalationNoticeGoesToWriter(t *testing.T) {
	s := models.NewConversation("I want to speak to a person")
	s.Append(models.RoleEscalation, orchestrator.DefaultEscalationMessage)
	s.FinalAnswer = orchestrator.DefaultEscalationMessage
	s.Flags.EscalationRequired = true

	var out bytes.Buffer
	printOutcome(&out, s)

	assert.Contains(t, out.String(), orchestrator.DefaultEscalationMessage)
	assert.Contains(t, out.String(), "Conversation escalated to a human agent")
}

func TestAnswerOne(t *testing.T) {
	d := premiumDesk(t)

	res := answerOne(context.Background(), d, numberedQuestion{line: 3, text: "Premium for POL000003?"})
	assert.Equal(t, 3, res.Line)
	assert.Equal(t, models.StatusResolved, res.Status)
	assert.Equal(t, "Your premium is $128.50, billed monthly.", res.Answer)
	assert.Empty(t, res.Error)

	res = answerOne(context.Background(), d, numberedQuestion{line: 4, text: "What is my premium?"})
	assert.Equal(t, models.StatusAwaiting, res.Status)
	assert.Equal(t, router.AskPolicyQuestion, res.Pending)
}

func TestAnswerOne_Concurrent(t *testing.T) {
	d := premiumDesk(t)

	var wg sync.WaitGroup
	results := make([]batchResult, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = answerOne(context.Background(), d, numberedQuestion{line: i + 1, text: "Premium for POL000001?"})
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Empty(t, r.Error)
		assert.Equal(t, models.StatusResolved, r.Status)
	}
	convs, err := d.db.ListConversations(nil, 0)
	require.NoError(t, err)
	assert.Len(t, convs, 8)
}

func TestReadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header\nWhat is a deductible?\n\n  Claim CLM000001 status?  \n"), 0644))

	got, err := readQuestions(path)
	require.NoError(t, err)
	assert.Equal(t, []numberedQuestion{
		{line: 2, text: "What is a deductible?"},
		{line: 4, text: "Claim CLM000001 status?"},
	}, got)
}

func TestConfigKeys(t *testing.T) {
	c := config.Default()

	require.NoError(t, setConfigValue(c, "router.max_iterations", "3"))
	assert.Equal(t, 3, c.Router.MaxIterations)

	require.NoError(t, setConfigValue(c, "Timeouts.Dispatch", "90s"))
	v, err := getConfigValue(c, "timeouts.dispatch")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", v)

	require.NoError(t, setConfigValue(c, "faq.watch", "true"))
	assert.True(t, c.FAQ.Watch)

	require.NoError(t, setConfigValue(c, "anthropic.api_key", "sk-ant-REDACTED"))
	v, err = getConfigValue(c, "anthropic.api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-...wxyz", v)

	assert.Error(t, setConfigValue(c, "faq.top_k", "many"))
	assert.Error(t, setConfigValue(c, "timeouts.classify", "soon"))
	assert.Error(t, setConfigValue(c, "nope", "1"))
	_, err = getConfigValue(c, "nope")
	assert.Error(t, err)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "line one...", truncateText("line one\nline two", 11))
}

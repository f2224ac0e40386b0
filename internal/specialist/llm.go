package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/api"
	"github.com/ShayCichocki/coverdesk/internal/faq"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

const unknown = "unknown"

// RecordSpecialist answers with the model and the record lookups its
// definition allows.
type RecordSpecialist struct {
	runner *api.Runner
	store  RecordStore
	entry  Entry
	logger *zap.Logger
}

// NewRecordSpecialist creates the specialist registered under name.
func NewRecordSpecialist(runner *api.Runner, store RecordStore, name models.AgentName, logger *zap.Logger) (*RecordSpecialist, error) {
	def, ok := DefinitionFor(name)
	if !ok || len(def.Lookups) == 0 {
		return nil, fmt.Errorf("%s is not a record specialist", name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordSpecialist{
		runner: runner,
		store:  store,
		entry:  Entry{Definition: def},
		logger: logger.Named("specialist").With(zap.String("agent", string(name))),
	}, nil
}

// Handle implements Specialist.
func (s *RecordSpecialist) Handle(ctx context.Context, req Request) (string, error) {
	loop := api.NewToolLoop(s.runner, NewLookupExecutor(s.store, s.entry, req.Identifiers))
	loop.SetStreamHandler(func(ev api.StreamEvent) {
		if ev.Type == "tool_use" || ev.Type == "tool_result" {
			s.logger.Debug("lookup", zap.String("event", ev.Type), zap.String("tool", ev.Tool))
		}
	})

	out, err := loop.Run(ctx, api.Request{
		System: systemPrompts[s.entry.Name],
		Prompt: fmt.Sprintf(taskPrompt,
			orDefault(req.Task, req.Question),
			orDefault(req.Identifiers.PolicyNumber, unknown),
			orDefault(req.Identifiers.CustomerID, unknown),
			orDefault(req.Identifiers.ClaimID, unknown),
			req.History,
		),
		Tools: s.entry.ToolSpecs(),
	})
	if err != nil {
		return "", err
	}
	return replyText(out.Result)
}

// GeneralHelp answers general questions grounded on retrieved FAQs.
type GeneralHelp struct {
	runner   *api.Runner
	searcher faq.Searcher
	topK     int
	logger   *zap.Logger
}

// NewGeneralHelp creates the general help specialist. A nil searcher
// answers without FAQ context.
func NewGeneralHelp(runner *api.Runner, searcher faq.Searcher, topK int, logger *zap.Logger) *GeneralHelp {
	if topK <= 0 {
		topK = faq.DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneralHelp{
		runner:   runner,
		searcher: searcher,
		topK:     topK,
		logger:   logger.Named("specialist").With(zap.String("agent", string(models.AgentGeneralHelp))),
	}
}

// Handle implements Specialist.
func (g *GeneralHelp) Handle(ctx context.Context, req Request) (string, error) {
	results := g.retrieve(ctx, orDefault(req.Question, req.Task))

	text, err := g.runner.RunWithSystem(ctx, generalHelpSystem, fmt.Sprintf(generalHelpPrompt,
		orDefault(req.Task, "General insurance support"),
		req.History,
		faq.FormatContext(results),
	))
	if err != nil {
		return "", err
	}
	return replyText(&api.Result{Kind: api.ResultText, Text: text})
}

// retrieve searches the FAQs. Search failures degrade to no context.
func (g *GeneralHelp) retrieve(ctx context.Context, query string) []faq.Result {
	if g.searcher == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	results, err := g.searcher.Search(ctx, query, g.topK)
	if err != nil {
		g.logger.Warn("faq search failed", zap.Error(err))
		return nil
	}
	g.logger.Debug("faq search", zap.Int("results", len(results)))
	return results
}

// replyText turns a model result into a specialist reply. A clarification
// request becomes the question itself.
func replyText(res *api.Result) (string, error) {
	if res == nil {
		return "", errors.New("no response")
	}
	if res.Kind == api.ResultAskUser && res.Ask != nil {
		return strings.TrimSpace(res.Ask.Question), nil
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

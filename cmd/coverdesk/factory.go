package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/api"
	"github.com/ShayCichocki/coverdesk/internal/config"
	"github.com/ShayCichocki/coverdesk/internal/faq"
	"github.com/ShayCichocki/coverdesk/internal/orchestrator"
	"github.com/ShayCichocki/coverdesk/internal/router"
	"github.com/ShayCichocki/coverdesk/internal/specialist"
	"github.com/ShayCichocki/coverdesk/internal/state"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// deskOptions selects which parts of the desk a command needs.
type deskOptions struct {
	// Events buffers orchestrator events when positive.
	Events int
	// WatchFAQ reloads faq.path on change.
	WatchFAQ bool
}

// desk is everything a command needs to run conversations.
type desk struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *state.DB
	faqs    *faq.Store
	client  *api.Client
	orch    *orchestrator.Orchestrator
	events  *orchestrator.EventEmitter
	watcher *faq.Watcher
}

// openDB opens and migrates the configured database.
func openDB(c *config.Config) (*state.DB, error) {
	path := c.Database.Path
	if path == "" {
		path = state.DefaultDBPath()
	}
	db, err := state.OpenWithDriver(c.Database.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// createClient builds the Anthropic client from the config.
func createClient(c *config.Config) (*api.Client, error) {
	cc := api.ClientConfig{
		Model:         anthropic.Model(c.Anthropic.Model),
		BaseURL:       c.Anthropic.BaseURL,
		MaxRetries:    c.Anthropic.MaxRetries,
		MaxTokens:     c.Anthropic.MaxTokens,
		UseAWSBedrock: c.Anthropic.Bedrock,
		AWSRegion:     c.Anthropic.AWSRegion,
		AWSProfile:    c.Anthropic.AWSProfile,
	}
	if !cc.UseAWSBedrock {
		key, err := config.GetAPIKey(c)
		if err != nil {
			return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or anthropic.api_key", err)
		}
		cc.APIKey = key
	}

	client, err := api.NewClient(cc)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

// openDesk wires the database, knowledge base, model client and orchestrator.
func openDesk(ctx context.Context, opts deskOptions) (*desk, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	d := &desk{cfg: cfg, logger: logger, db: db, faqs: faq.NewStore(db)}

	if err := d.ensureKnowledge(); err != nil {
		d.Close()
		return nil, err
	}

	d.client, err = createClient(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	runner := api.NewRunner(d.client)

	table, err := specialist.NewDefaultTable(runner, db, d.searcher(ctx), cfg.FAQ.TopK, logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("build specialist table: %w", err)
	}

	engine := router.NewEngine(
		api.NewClassifier(runner, specialist.AgentOptions()),
		router.WithMaxIterations(cfg.Router.MaxIterations),
		router.WithClassifyTimeout(cfg.Timeouts.Classify),
		router.WithLogger(logger),
	)

	if opts.Events > 0 {
		d.events = orchestrator.NewEventEmitter(opts.Events, logger)
	}

	d.orch, err = orchestrator.New(orchestrator.Deps{
		Router:      engine,
		Dispatcher:  table,
		Synthesizer: api.NewSynthesizer(runner),
		Messenger:   api.NewMessenger(runner),
		Timeouts: orchestrator.Timeouts{
			Dispatch:   cfg.Timeouts.Dispatch,
			Synthesize: cfg.Timeouts.Synthesize,
			Escalate:   cfg.Timeouts.Escalate,
		},
		Events: d.events,
		Logger: logger,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	if opts.WatchFAQ {
		if err := d.watchFAQ(ctx); err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}

// searcher returns the FAQ searcher, reranked by embeddings when configured.
func (d *desk) searcher(ctx context.Context) faq.Searcher {
	emb := d.cfg.FAQ.Embedding
	if emb.Provider != "gemini" {
		return d.faqs
	}

	key, err := config.GetEmbeddingKey(d.cfg)
	if err != nil {
		d.logger.Warn("faq reranking disabled", zap.Error(err))
		return d.faqs
	}
	embedder, err := faq.NewGenAIEmbedder(ctx, key, emb.Model)
	if err != nil {
		d.logger.Warn("faq reranking disabled", zap.Error(err))
		return d.faqs
	}
	return faq.NewReranker(d.faqs, embedder, d.logger)
}

// ensureKnowledge loads the demo records and FAQs into an empty database.
func (d *desk) ensureKnowledge() error {
	var customers int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&customers); err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if customers == 0 {
		seed, err := state.DefaultSeed()
		if err != nil {
			return err
		}
		counts, err := d.db.ApplySeed(seed)
		if err != nil {
			return fmt.Errorf("seed records: %w", err)
		}
		d.logger.Info("seeded demo records", zap.Int("rows", counts.Total()))
	}

	n, err := d.faqs.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	entries, err := loadFAQEntries(d.cfg)
	if err != nil {
		return err
	}
	if _, err := d.faqs.Upsert(entries); err != nil {
		return fmt.Errorf("load faqs: %w", err)
	}
	return nil
}

// loadFAQEntries reads faq.path, or the built-in FAQs when it is unset.
func loadFAQEntries(c *config.Config) ([]faq.Entry, error) {
	if c.FAQ.Path == "" {
		return faq.DefaultEntries()
	}
	return faq.LoadFile(c.FAQ.Path)
}

func (d *desk) watchFAQ(ctx context.Context) error {
	if d.cfg.FAQ.Path == "" {
		return errors.New("--watch-faq requires faq.path to be set")
	}
	w, err := faq.NewWatcher(d.cfg.FAQ.Path, d.faqs, d.logger)
	if err != nil {
		return err
	}
	if _, err := w.Reload(); err != nil {
		w.Close()
		return fmt.Errorf("load %s: %w", d.cfg.FAQ.Path, err)
	}
	w.Start(ctx)
	d.watcher = w
	return nil
}

// turn runs one conversation turn and saves the result. A nil state starts
// a new conversation with text as the question.
func (d *desk) turn(ctx context.Context, s *models.ConversationState, text string) (*models.ConversationState, error) {
	var (
		next *models.ConversationState
		err  error
	)
	if s == nil {
		next, err = d.orch.Start(ctx, text)
	} else {
		next, err = d.orch.ProcessTurn(ctx, s, &text)
	}
	if err != nil {
		return nil, err
	}
	if err := d.db.SaveConversation(next); err != nil {
		return next, fmt.Errorf("save conversation: %w", err)
	}
	return next, nil
}

// Close releases everything the desk opened.
func (d *desk) Close() {
	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("close faq watcher", zap.Error(err))
		}
	}
	if d.events != nil {
		d.events.Close()
	}
	if d.client != nil {
		in, out := d.client.Tracker().Total()
		d.logger.Debug("token usage",
			zap.Int64("input", in),
			zap.Int64("output", out),
			zap.Float64("cost_usd", d.client.Tracker().Cost()),
		)
	}
	if d.db != nil {
		d.db.Close()
	}
}

package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/completion"
	"github.com/ShayCichocki/coverdesk/internal/deadline"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// IntentClassifier picks a specialist, or a clarification, from the history.
type IntentClassifier interface {
	Classify(ctx context.Context, history string) (*models.Classification, error)
}

// Decision is the outcome of one routing evaluation.
type Decision struct {
	Action models.Action
	// ClassifierErr is set when the classifier was consulted and failed.
	// Action then holds the general help fallback.
	ClassifierErr error
}

// Engine applies the routing rules and falls through to the classifier.
type Engine struct {
	classifier    IntentClassifier
	maxIterations int
	timeout       time.Duration
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations overrides the iteration budget.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithClassifyTimeout bounds each classifier call.
func WithClassifyTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a routing engine. A nil classifier always yields the
// general help fallback when the deterministic rules do not match.
func NewEngine(classifier IntentClassifier, opts ...Option) *Engine {
	e := &Engine{
		classifier:    classifier,
		maxIterations: DefaultMaxIterations,
		timeout:       30 * time.Second,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("router")
	return e
}

// MaxIterations returns the configured iteration budget.
func (e *Engine) MaxIterations() int {
	return e.maxIterations
}

// Decide picks the next action for s given the completion status of the last
// specialist reply.
func (e *Engine) Decide(ctx context.Context, s *models.ConversationState, status completion.Status) Decision {
	if a, ok := Evaluate(s, status, e.maxIterations); ok {
		e.logger.Debug("rule matched",
			zap.String("conversation", s.ID),
			zap.String("action", string(a.Kind)),
			zap.String("target", string(a.Target)),
			zap.String("status", string(status)),
		)
		return Decision{Action: a}
	}

	if e.classifier == nil {
		return Decision{Action: FallbackAction(), ClassifierErr: fmt.Errorf("no intent classifier configured")}
	}

	history := s.HistoryText()
	c, err := deadline.Run(ctx, e.timeout, func(ctx context.Context) (*models.Classification, error) {
		return e.classifier.Classify(ctx, history)
	})
	if err != nil {
		return Decision{Action: FallbackAction(), ClassifierErr: fmt.Errorf("classify intent: %w", err)}
	}

	a := FromClassification(c)
	e.logger.Debug("classifier decided",
		zap.String("conversation", s.ID),
		zap.String("action", string(a.Kind)),
		zap.String("target", string(a.Target)),
	)
	return Decision{Action: a}
}

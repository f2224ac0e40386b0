package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/completion"
	"github.com/ShayCichocki/coverdesk/internal/deadline"
	"github.com/ShayCichocki/coverdesk/internal/extract"
	"github.com/ShayCichocki/coverdesk/internal/router"
	"github.com/ShayCichocki/coverdesk/internal/specialist"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// Phase is a state of the turn state machine.
type Phase string

const (
	PhaseRouting      Phase = "ROUTING"
	PhaseAwaitingUser Phase = "AWAITING_USER"
	PhaseDispatching  Phase = "DISPATCHING"
	PhaseFinalizing   Phase = "FINALIZING"
	PhaseEscalating   Phase = "ESCALATING"
	PhaseDone         Phase = "DONE"
)

// NoResponseAvailable is the synthesizer input when no specialist replied.
const NoResponseAvailable = "No response available"

// Dispatcher invokes the specialist registered under an agent name.
type Dispatcher interface {
	Dispatch(ctx context.Context, name models.AgentName, req specialist.Request) (specialist.Entry, string, error)
}

// AnswerSynthesizer turns a specialist reply into the final user-facing answer.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, reply string) (string, error)
}

// Timeouts bounds each kind of external call.
type Timeouts struct {
	Dispatch   time.Duration
	Synthesize time.Duration
	Escalate   time.Duration
}

// DefaultTimeouts returns the standard per-call timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Dispatch:   60 * time.Second,
		Synthesize: 30 * time.Second,
		Escalate:   30 * time.Second,
	}
}

// Deps are the collaborators injected into an Orchestrator.
type Deps struct {
	// Router decides each next action. Required.
	Router *router.Engine
	// Dispatcher invokes specialists. Required.
	Dispatcher Dispatcher
	// Detector reads specialist replies. Defaults to completion.NewDetector().
	Detector *completion.Detector
	// Synthesizer writes final answers. Nil passes the specialist reply through.
	Synthesizer AnswerSynthesizer
	// Messenger writes escalation messages. Nil uses DefaultEscalationMessage.
	Messenger EscalationMessenger
	// Timeouts bounds external calls. Zero fields use DefaultTimeouts.
	Timeouts Timeouts
	// Events receives progress events. Optional.
	Events *EventEmitter
	Logger *zap.Logger
}

// Orchestrator runs the turn state machine. It holds only immutable
// collaborators and may be shared by concurrent conversations.
type Orchestrator struct {
	router      *router.Engine
	dispatcher  Dispatcher
	detector    *completion.Detector
	synthesizer AnswerSynthesizer
	escalation  *EscalationHandler
	timeouts    Timeouts
	events      *EventEmitter
	logger      *zap.Logger
}

// New creates an Orchestrator from its dependencies.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Router == nil {
		return nil, errors.New("orchestrator: router is required")
	}
	if deps.Dispatcher == nil {
		return nil, errors.New("orchestrator: dispatcher is required")
	}

	timeouts := DefaultTimeouts()
	if deps.Timeouts.Dispatch > 0 {
		timeouts.Dispatch = deps.Timeouts.Dispatch
	}
	if deps.Timeouts.Synthesize > 0 {
		timeouts.Synthesize = deps.Timeouts.Synthesize
	}
	if deps.Timeouts.Escalate > 0 {
		timeouts.Escalate = deps.Timeouts.Escalate
	}

	detector := deps.Detector
	if detector == nil {
		detector = completion.NewDetector()
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		router:      deps.Router,
		dispatcher:  deps.Dispatcher,
		detector:    detector,
		synthesizer: deps.Synthesizer,
		escalation:  NewEscalationHandler(deps.Messenger, timeouts.Escalate),
		timeouts:    timeouts,
		events:      deps.Events,
		logger:      logger.Named("orchestrator"),
	}, nil
}

// Start creates a conversation for question and runs its first turn.
func (o *Orchestrator) Start(ctx context.Context, question string) (*models.ConversationState, error) {
	return o.ProcessTurn(ctx, models.NewConversation(question), nil)
}

// ProcessTurn advances the conversation until it pauses for the user or ends.
//
// The input state is not modified; the advanced state is returned. Terminal
// states are returned unchanged. A state awaiting a clarification requires a
// reply and yields ErrReplyRequired without one. A reply supplied to a state
// that is not awaiting anything is recorded as a new user message.
//
// Collaborator failures never produce an error here; they are recovered into
// the conversation as described by FailureKind.
func (o *Orchestrator) ProcessTurn(ctx context.Context, in *models.ConversationState, reply *string) (*models.ConversationState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	s := in.Clone()
	if s.IsTerminal() {
		return s, nil
	}

	switch {
	case s.Flags.AwaitingUserInput:
		if reply == nil {
			return s, ErrReplyRequired
		}
		o.mergeReply(s, *reply)
	case reply != nil:
		s.Append(models.RoleUser, *reply)
		extract.Apply(&s.Identifiers, *reply)
	}

	var action models.Action
	phase := PhaseRouting
	for {
		switch phase {
		case PhaseRouting:
			action = o.route(ctx, s)
			phase = phaseFor(action.Kind)

		case PhaseAwaitingUser:
			o.await(s, action)
			return s, nil

		case PhaseDispatching:
			o.dispatch(ctx, s, action)
			phase = PhaseRouting

		case PhaseFinalizing:
			o.finalize(ctx, s)
			phase = PhaseDone

		case PhaseEscalating:
			o.escalate(ctx, s, action)
			phase = PhaseDone

		case PhaseDone:
			o.emit(Event{Type: EventDone, ConversationID: s.ID, Iteration: s.IterationCount})
			o.logger.Info("conversation finished",
				zap.String("conversation", s.ID),
				zap.String("status", string(s.Status())),
				zap.Int("iterations", s.IterationCount),
			)
			return s, nil

		default:
			return s, fmt.Errorf("unknown phase %q", phase)
		}
	}
}

// phaseFor maps a routing action to the machine state that carries it out.
func phaseFor(kind models.ActionKind) Phase {
	switch kind {
	case models.ActionAskUser:
		return PhaseAwaitingUser
	case models.ActionDispatch:
		return PhaseDispatching
	case models.ActionFinalize:
		return PhaseFinalizing
	default:
		return PhaseEscalating
	}
}

// mergeReply folds a clarification answer into history and clears the
// pending question.
func (o *Orchestrator) mergeReply(s *models.ConversationState, reply string) {
	question := ""
	missing := ""
	if s.Pending != nil {
		question = s.Pending.Question
		missing = s.Pending.MissingInfo
	}

	if question != "" {
		s.Append(models.RoleAssistant, question)
	}
	s.Append(models.RoleUser, reply)

	filled := extract.Apply(&s.Identifiers, reply)
	if len(filled) == 0 && (missing == router.MissingPolicy || missing == router.MissingClaim) {
		o.recordFailure(s, FailureMalformedReply, fmt.Errorf("no %s found in reply", missing))
	}

	s.Pending = nil
	s.Flags.AwaitingUserInput = false
}

// route runs one ROUTING evaluation.
func (o *Orchestrator) route(ctx context.Context, s *models.ConversationState) models.Action {
	extract.Apply(&s.Identifiers, s.HistoryText())
	s.IterationCount++

	res := o.detector.Classify(s.History, s.Identifiers)
	d := o.router.Decide(ctx, s, res.Status)
	if d.ClassifierErr != nil {
		o.recordFailure(s, FailureClassification, d.ClassifierErr)
	}

	a := d.Action
	s.Routing = models.Routing{
		NextAction:    a.Kind,
		Target:        a.Target,
		Task:          a.Task,
		Justification: a.Justification,
	}
	if a.Kind == models.ActionEscalate && a.Reason == router.ReasonMaxIterations {
		o.recordFailure(s, FailureIterationBudget, nil)
	}

	o.logger.Debug("routing decision",
		zap.String("conversation", s.ID),
		zap.Int("iteration", s.IterationCount),
		zap.String("completion", string(res.Status)),
		zap.String("action", string(a.Kind)),
		zap.String("target", string(a.Target)),
	)
	o.emit(Event{Type: EventDecision, ConversationID: s.ID, Iteration: s.IterationCount, Action: &a})

	return a
}

// await records the clarification question and pauses.
func (o *Orchestrator) await(s *models.ConversationState, a models.Action) {
	s.Pending = &models.PendingQuestion{Question: a.Question, MissingInfo: a.MissingInfo}
	s.Flags.AwaitingUserInput = true
	s.UpdatedAt = time.Now().UTC()
	o.emit(Event{Type: EventAwaiting, ConversationID: s.ID, Iteration: s.IterationCount, Action: &a})
}

// dispatch invokes a specialist and appends its reply, or a failure notice.
func (o *Orchestrator) dispatch(ctx context.Context, s *models.ConversationState, a models.Action) {
	if a.Classified {
		o.appendTurn(s, models.RoleAssistant, "Routing to "+string(a.Target))
	}

	req := specialist.Request{
		Task:        a.Task,
		Question:    originalQuestion(s),
		Identifiers: s.Identifiers,
		History:     s.HistoryText(),
	}

	entry, reply, err := o.boundedDispatch(ctx, a.Target, req)

	role := entry.Role
	if role == "" {
		role = models.RoleGeneralHelp
		if def, ok := specialist.DefinitionFor(a.Target); ok {
			role = def.Role
		}
	}
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errEmptyReply
	}
	if err != nil {
		o.recordFailure(s, FailureToolExecution, err)
		reply = failureNotice(role, err)
	}

	o.appendTurn(s, role, reply)
}

type dispatchResult struct {
	entry specialist.Entry
	reply string
}

// boundedDispatch calls the dispatcher under the dispatch timeout. A
// specialist that outlives the timeout or panics yields an error.
func (o *Orchestrator) boundedDispatch(ctx context.Context, name models.AgentName, req specialist.Request) (specialist.Entry, string, error) {
	r, err := deadline.Run(ctx, o.timeouts.Dispatch, func(ctx context.Context) (dispatchResult, error) {
		entry, reply, err := o.dispatcher.Dispatch(ctx, name, req)
		return dispatchResult{entry: entry, reply: reply}, err
	})
	if errors.Is(err, deadline.ErrPanic) {
		err = fmt.Errorf("specialist %s: %w", name, err)
	}
	return r.entry, r.reply, err
}

// finalize synthesizes the final answer and ends the conversation.
func (o *Orchestrator) finalize(ctx context.Context, s *models.ConversationState) {
	reply := LatestAnswer(s.History)

	answer := reply
	if o.synthesizer != nil {
		question := originalQuestion(s)
		out, err := deadline.Run(ctx, o.timeouts.Synthesize, func(ctx context.Context) (string, error) {
			return o.synthesizer.Synthesize(ctx, question, reply)
		})
		switch {
		case err != nil:
			o.recordFailure(s, FailureSynthesis, err)
		case strings.TrimSpace(out) == "":
			o.recordFailure(s, FailureSynthesis, errors.New("synthesizer returned an empty answer"))
		default:
			answer = strings.TrimSpace(out)
		}
	}

	s.FinalAnswer = answer
	s.Pending = nil
	s.Flags.AwaitingUserInput = false
	s.Flags.ConversationEnded = true
	o.appendTurn(s, models.RoleAssistant, answer)
}

// escalate writes the hand-off message and marks the conversation escalated.
func (o *Orchestrator) escalate(ctx context.Context, s *models.ConversationState, a models.Action) {
	msg, err := o.escalation.Message(ctx, RequestFor(s, a))
	if err != nil {
		o.recordFailure(s, FailureEscalationMessage, err)
	}

	s.FinalAnswer = msg
	s.Pending = nil
	s.Flags.AwaitingUserInput = false
	s.Flags.EscalationRequired = true
	o.appendTurn(s, models.RoleEscalation, msg)
}

func (o *Orchestrator) appendTurn(s *models.ConversationState, role models.Role, text string) {
	s.Append(role, text)
	t := s.History[len(s.History)-1]
	o.emit(Event{Type: EventReply, ConversationID: s.ID, Iteration: s.IterationCount, Turn: &t})
}

func (o *Orchestrator) emit(e Event) {
	if o.events != nil {
		o.events.Emit(e)
	}
}

// LatestAnswer returns the most recent specialist reply that is not itself a
// clarification request, or NoResponseAvailable.
func LatestAnswer(history []models.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if !t.Role.IsSpecialist() {
			continue
		}
		if strings.Contains(strings.ToLower(t.Text), "clarification") {
			continue
		}
		return t.Text
	}
	return NoResponseAvailable
}

// originalQuestion returns the user's first message.
func originalQuestion(s *models.ConversationState) string {
	if s.Question != "" {
		return s.Question
	}
	for _, t := range s.History {
		if t.Role == models.RoleUser {
			return t.Text
		}
	}
	return ""
}

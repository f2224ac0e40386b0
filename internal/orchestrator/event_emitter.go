package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventDecision is emitted after each routing evaluation.
	EventDecision EventType = "decision"
	// EventReply is emitted when a turn is appended to history.
	EventReply EventType = "reply"
	// EventFailure is emitted when a failure is recovered.
	EventFailure EventType = "failure"
	// EventAwaiting is emitted when the conversation pauses for the user.
	EventAwaiting EventType = "awaiting_user"
	// EventDone is emitted when the conversation reaches a terminal state.
	EventDone EventType = "done"
)

// Event represents something that happened while processing a turn.
// Subscribers such as the TUI use these to show progress.
type Event struct {
	Type           EventType
	ConversationID string
	Iteration      int
	Action         *models.Action
	Turn           *models.Turn
	Failure        FailureKind
	Err            error
	Timestamp      time.Time
}

// EventEmitter delivers events to a single subscriber channel.
// It is safe to share across concurrently running conversations.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
	logger       *zap.Logger

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int, logger *zap.Logger) *EventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventEmitter{
		events: make(chan Event, bufferSize),
		logger: logger.Named("events"),
	}
}

// Emit sends an event to the events channel.
// If the channel is full, it waits briefly before dropping the event.
func (e *EventEmitter) Emit(event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			e.logger.Warn("event channel full, dropping event",
				zap.Uint64("dropped_total", count),
				zap.String("type", string(event.Type)),
			)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Later Emit calls are ignored.
func (e *EventEmitter) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.events)
		e.mu.Unlock()
	})
}

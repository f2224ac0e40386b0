package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/coverdesk/internal/orchestrator"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func resolvedAfter(text string) SubmitFunc {
	return func(ctx context.Context, state *models.ConversationState, in string) (*models.ConversationState, error) {
		if state == nil {
			state = models.NewConversation(in)
		} else {
			state.Append(models.RoleUser, in)
		}
		state.Append(models.RoleAssistant, text)
		state.Flags.ConversationEnded = true
		return state, nil
	}
}

func TestChatApp_SubmitRunsTurn(t *testing.T) {
	app := NewChatApp(context.Background(), nil, resolvedAfter("Your deductible is $500."))
	app.resize(100, 40)

	_, cmd := app.Update(MessageSubmittedMsg{Text: "What is my deductible on POL000001?"})
	if cmd == nil {
		t.Fatal("expected a turn command")
	}
	if !app.Busy() {
		t.Error("app should be busy while the turn runs")
	}
	if !strings.Contains(app.renderTranscript(), "What is my deductible") {
		t.Error("pending question should be shown while busy")
	}

	// A second submission while busy is ignored.
	if _, again := app.Update(MessageSubmittedMsg{Text: "hello?"}); again != nil {
		t.Error("submission while busy should be ignored")
	}

	done, ok := cmd().(TurnDoneMsg)
	if !ok {
		t.Fatal("turn command should produce TurnDoneMsg")
	}
	app.Update(done)

	if app.Busy() {
		t.Error("app should be idle after the turn")
	}
	if app.State() == nil || app.State().Status() != models.StatusResolved {
		t.Fatalf("expected resolved state, got %+v", app.State())
	}
	if !strings.Contains(app.renderTranscript(), "Your deductible is $500.") {
		t.Error("answer should be in the transcript")
	}
	if !app.input.disabled {
		t.Error("input should be disabled once resolved")
	}
	if _, cmd := app.Update(MessageSubmittedMsg{Text: "thanks"}); cmd != nil {
		t.Error("resolved conversation should not accept more turns")
	}
}

func TestChatApp_TurnError(t *testing.T) {
	app := NewChatApp(context.Background(), nil, func(ctx context.Context, s *models.ConversationState, text string) (*models.ConversationState, error) {
		return nil, errors.New("database locked")
	})

	_, cmd := app.Update(MessageSubmittedMsg{Text: "hi"})
	app.Update(cmd())

	if app.Busy() {
		t.Error("app should be idle after an error")
	}
	if app.State() != nil {
		t.Error("state should stay nil after a failed first turn")
	}
	if !strings.Contains(app.renderTranscript(), "database locked") {
		t.Error("error should be shown")
	}
	if app.activity.Len() != 1 {
		t.Errorf("expected one activity entry, got %d", app.activity.Len())
	}
	if app.input.disabled {
		t.Error("input should be re-enabled after an error")
	}
}

func TestChatApp_QuitKeys(t *testing.T) {
	app := NewChatApp(context.Background(), nil, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should produce tea.QuitMsg")
	}
	if app.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestChatApp_EventsFilteredByConversation(t *testing.T) {
	state := models.NewConversation("hi")
	app := NewChatApp(context.Background(), state, nil)

	app.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventAwaiting, ConversationID: state.ID}})
	app.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventAwaiting, ConversationID: "other"}})

	if app.activity.Len() != 1 {
		t.Errorf("expected only this conversation's event, got %d", app.activity.Len())
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   orchestrator.Event
		want string
		ok   bool
	}{
		{
			name: "dispatch decision",
			ev:   orchestrator.Event{Type: orchestrator.EventDecision, Action: &models.Action{Kind: models.ActionDispatch, Target: models.AgentPolicy}},
			want: "dispatch -> policy_agent",
			ok:   true,
		},
		{
			name: "escalate decision",
			ev:   orchestrator.Event{Type: orchestrator.EventDecision, Action: &models.Action{Kind: models.ActionEscalate, Reason: "max iterations"}},
			want: "escalate (max iterations)",
			ok:   true,
		},
		{
			name: "specialist reply",
			ev:   orchestrator.Event{Type: orchestrator.EventReply, Turn: &models.Turn{Role: models.RoleBilling, Text: "x"}},
			want: "Billing Agent replied",
			ok:   true,
		},
		{
			name: "user reply ignored",
			ev:   orchestrator.Event{Type: orchestrator.EventReply, Turn: &models.Turn{Role: models.RoleUser, Text: "x"}},
		},
		{
			name: "decision without action",
			ev:   orchestrator.Event{Type: orchestrator.EventDecision},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DescribeEvent(tt.ev)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestDescribeEvent_Failure(t *testing.T) {
	got, ok := DescribeEvent(orchestrator.Event{
		Type:    orchestrator.EventFailure,
		Failure: orchestrator.FailureToolExecution,
		Err:     errors.New("timeout"),
	})
	if !ok || got.Level != ActivityWarn {
		t.Fatalf("expected warn entry, got %+v", got)
	}
	if got.Message != "tool_execution_failure: timeout" {
		t.Errorf("Message = %q", got.Message)
	}
}

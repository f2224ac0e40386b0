package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/coverdesk/internal/orchestrator"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// SubmitFunc runs one conversation turn for the user's text. A nil state
// starts a new conversation.
type SubmitFunc func(ctx context.Context, state *models.ConversationState, text string) (*models.ConversationState, error)

// TurnDoneMsg is sent when a background turn finishes.
type TurnDoneMsg struct {
	State *models.ConversationState
	Err   error
}

// EventMsg forwards an orchestrator event into the program.
type EventMsg struct {
	Event orchestrator.Event
}

const activityHeight = 8

// ChatApp is the chat model: transcript, activity and input.
type ChatApp struct {
	ctx      context.Context
	submit   SubmitFunc
	state    *models.ConversationState
	pending  string
	busy     bool
	quitting bool
	lastErr  error

	transcript viewport.Model
	activity   *ActivityPanel
	input      *InputField
	width      int
	height     int

	headerStyle    lipgloss.Style
	statusStyle    lipgloss.Style
	userStyle      lipgloss.Style
	assistantStyle lipgloss.Style
	agentStyle     lipgloss.Style
	textStyle      lipgloss.Style
	noticeStyle    lipgloss.Style
	errorStyle     lipgloss.Style
}

// NewChatApp creates a chat for state, which may be nil to start fresh.
func NewChatApp(ctx context.Context, state *models.ConversationState, submit SubmitFunc) *ChatApp {
	a := &ChatApp{
		ctx:        ctx,
		submit:     submit,
		state:      state,
		transcript: viewport.New(80, 12),
		activity:   NewActivityPanel(),
		input:      NewInputField(),
		width:      80,
		height:     24,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("63")).
			Padding(0, 1),

		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),

		userStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),

		assistantStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),

		agentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),

		textStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		noticeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
	a.syncInput()
	a.refresh()
	return a
}

// State returns the latest conversation state.
func (a *ChatApp) State() *models.ConversationState {
	return a.state
}

// Busy reports whether a turn is running.
func (a *ChatApp) Busy() bool {
	return a.busy
}

// Init implements tea.Model.
func (a *ChatApp) Init() tea.Cmd {
	return a.input.Focus()
}

// Update implements tea.Model.
func (a *ChatApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			a.transcript, cmd = a.transcript.Update(msg)
			return a, cmd
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case MessageSubmittedMsg:
		if a.busy || (a.state != nil && a.state.IsTerminal()) {
			return a, nil
		}
		a.busy = true
		a.pending = msg.Text
		a.lastErr = nil
		a.syncInput()
		a.refresh()
		return a, a.runTurn(msg.Text)

	case TurnDoneMsg:
		a.busy = false
		a.pending = ""
		if msg.Err != nil {
			a.lastErr = msg.Err
			a.activity.Add(ActivityEntry{Level: ActivityError, Message: msg.Err.Error(), Iteration: a.iteration()})
		} else if msg.State != nil {
			a.state = msg.State
		}
		a.syncInput()
		a.refresh()
		return a, a.input.Focus()

	case EventMsg:
		if a.state == nil || msg.Event.ConversationID == "" || msg.Event.ConversationID == a.state.ID || a.busy {
			a.activity.AddEvent(msg.Event)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *ChatApp) runTurn(text string) tea.Cmd {
	ctx, state, submit := a.ctx, a.state, a.submit
	if state != nil {
		state = state.Clone()
	}
	return func() tea.Msg {
		if submit == nil {
			return TurnDoneMsg{Err: fmt.Errorf("no conversation handler configured")}
		}
		next, err := submit(ctx, state, text)
		return TurnDoneMsg{State: next, Err: err}
	}
}

func (a *ChatApp) iteration() int {
	if a.state == nil {
		return 0
	}
	return a.state.IterationCount
}

func (a *ChatApp) syncInput() {
	switch {
	case a.state != nil && a.state.Flags.EscalationRequired:
		a.input.SetDisabled(true, "Escalated to a human agent. Press Esc to exit.")
	case a.state != nil && a.state.Flags.ConversationEnded:
		a.input.SetDisabled(true, "Conversation resolved. Press Esc to exit.")
	case a.busy:
		a.input.SetDisabled(true, "Working...")
	default:
		a.input.SetDisabled(false, "")
	}
}

func (a *ChatApp) resize(width, height int) {
	a.width = width
	a.height = height
	a.input.SetWidth(width)
	a.activity.SetSize(width, activityHeight)

	// header + status + input box (3) + activity
	th := height - 2 - 3 - activityHeight
	if th < 3 {
		th = 3
	}
	a.transcript.Width = width
	a.transcript.Height = th
	a.refresh()
}

func (a *ChatApp) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *ChatApp) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(maxInt(a.width-2, 20))
	var b strings.Builder

	if a.state != nil {
		for _, t := range a.state.History {
			b.WriteString(a.renderTurn(t, wrap))
			b.WriteString("\n\n")
		}
	}
	if a.pending != "" {
		b.WriteString(a.renderTurn(models.Turn{Role: models.RoleUser, Text: a.pending}, wrap))
		b.WriteString("\n\n")
		b.WriteString(a.statusStyle.Render("Thinking..."))
	}
	if a.lastErr != nil {
		b.WriteString(a.errorStyle.Render("Error: " + a.lastErr.Error()))
	}
	if b.Len() == 0 {
		return a.statusStyle.Render("Ask a question to get started.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *ChatApp) renderTurn(t models.Turn, wrap lipgloss.Style) string {
	var label string
	switch {
	case t.Role == models.RoleUser:
		label = a.userStyle.Render("You")
	case t.Role == models.RoleAssistant:
		label = a.assistantStyle.Render("Assistant")
	case t.Role.IsSpecialist():
		return a.agentStyle.Render(wrap.Render(string(t.Role) + ": " + t.Text))
	default:
		label = a.statusStyle.Render(string(t.Role))
	}
	return label + "\n" + a.textStyle.Render(wrap.Render(t.Text))
}

func (a *ChatApp) renderStatus() string {
	if a.state == nil {
		return a.statusStyle.Render("new conversation")
	}
	parts := []string{
		"id " + shortID(a.state.ID),
		string(a.state.Status()),
		fmt.Sprintf("iteration %d", a.state.IterationCount),
	}
	if ids := a.state.Identifiers; !ids.IsEmpty() {
		parts = append(parts, ids.String())
	}
	line := a.statusStyle.Render(strings.Join(parts, " | "))
	if a.state.IsAwaiting() {
		line += "  " + a.noticeStyle.Render("waiting for: "+a.state.Pending.MissingInfo)
	}
	return line
}

// View implements tea.Model.
func (a *ChatApp) View() string {
	if a.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.headerStyle.Render("coverdesk"),
		a.renderStatus(),
		a.transcript.View(),
		a.activity.View(),
		a.input.View(),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// NewChatProgram creates a bubbletea program running a ChatApp.
func NewChatProgram(ctx context.Context, state *models.ConversationState, submit SubmitFunc) (*tea.Program, *ChatApp) {
	app := NewChatApp(ctx, state, submit)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	return p, app
}

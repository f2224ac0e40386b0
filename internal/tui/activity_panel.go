package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/coverdesk/internal/orchestrator"
)

// ActivityLevel represents the severity of an activity entry.
type ActivityLevel string

const (
	ActivityInfo  ActivityLevel = "INFO"
	ActivityWarn  ActivityLevel = "WARN"
	ActivityError ActivityLevel = "ERROR"
)

// ActivityEntry is one line of the activity panel.
type ActivityEntry struct {
	Timestamp time.Time
	Level     ActivityLevel
	Iteration int
	Message   string
}

// ActivityPanel shows the most recent routing activity.
type ActivityPanel struct {
	entries    []ActivityEntry
	maxEntries int
	width      int
	height     int

	titleStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	timeStyle    lipgloss.Style
	iterStyle    lipgloss.Style
	messageStyle lipgloss.Style
}

// NewActivityPanel creates a new ActivityPanel.
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{
		maxEntries: 200,
		width:      80,
		height:     6,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),

		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		timeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		iterStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")),

		messageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
	}
}

// Add appends an entry, dropping the oldest beyond the cap.
func (p *ActivityPanel) Add(entry ActivityEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	p.entries = append(p.entries, entry)
	if len(p.entries) > p.maxEntries {
		p.entries = p.entries[len(p.entries)-p.maxEntries:]
	}
}

// AddEvent describes an orchestrator event. Events without a useful
// description are ignored.
func (p *ActivityPanel) AddEvent(ev orchestrator.Event) {
	entry, ok := DescribeEvent(ev)
	if ok {
		p.Add(entry)
	}
}

// DescribeEvent converts an orchestrator event into an activity entry.
func DescribeEvent(ev orchestrator.Event) (ActivityEntry, bool) {
	entry := ActivityEntry{
		Timestamp: ev.Timestamp,
		Level:     ActivityInfo,
		Iteration: ev.Iteration,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	switch ev.Type {
	case orchestrator.EventDecision:
		if ev.Action == nil {
			return entry, false
		}
		a := ev.Action
		switch {
		case a.Target != "":
			entry.Message = fmt.Sprintf("%s -> %s", a.Kind, a.Target)
		case a.Reason != "":
			entry.Message = fmt.Sprintf("%s (%s)", a.Kind, a.Reason)
		default:
			entry.Message = string(a.Kind)
		}
	case orchestrator.EventReply:
		if ev.Turn == nil || !ev.Turn.Role.IsSpecialist() {
			return entry, false
		}
		entry.Message = string(ev.Turn.Role) + " replied"
	case orchestrator.EventFailure:
		entry.Level = ActivityWarn
		entry.Message = string(ev.Failure)
		if ev.Err != nil {
			entry.Message += ": " + ev.Err.Error()
		}
	case orchestrator.EventAwaiting:
		entry.Message = "waiting for your reply"
	case orchestrator.EventDone:
		entry.Message = "conversation finished"
	default:
		return entry, false
	}
	return entry, true
}

// SetSize updates the panel dimensions.
func (p *ActivityPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Len returns the number of stored entries.
func (p *ActivityPanel) Len() int {
	return len(p.entries)
}

// View renders the newest entries that fit.
func (p *ActivityPanel) View() string {
	var b strings.Builder
	b.WriteString(p.titleStyle.Render("Activity"))
	b.WriteString("\n")

	visible := p.height - 3
	if visible < 1 {
		visible = 1
	}

	if len(p.entries) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Render("  No activity yet"))
	} else {
		start := len(p.entries) - visible
		if start < 0 {
			start = 0
		}
		for _, e := range p.entries[start:] {
			b.WriteString(p.renderLine(e))
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(p.width - 2).
		Height(p.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (p *ActivityPanel) renderLine(e ActivityEntry) string {
	levelStyle := p.infoStyle
	levelIcon := "I"
	switch e.Level {
	case ActivityWarn:
		levelStyle = p.warnStyle
		levelIcon = "W"
	case ActivityError:
		levelStyle = p.errorStyle
		levelIcon = "E"
	}

	maxMsgLen := p.width - 22
	if maxMsgLen < 20 {
		maxMsgLen = 20
	}
	msg := e.Message
	if len(msg) > maxMsgLen {
		msg = msg[:maxMsgLen-3] + "..."
	}

	return strings.Join([]string{
		p.timeStyle.Render(e.Timestamp.Format("15:04:05")),
		levelStyle.Render(levelIcon),
		p.iterStyle.Render(fmt.Sprintf("#%d", e.Iteration)),
		p.messageStyle.Render(msg),
	}, " ")
}

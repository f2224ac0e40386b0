// Package tui provides the terminal chat interface for coverdesk.
//
// The chat shows the conversation transcript in a scrollable viewport, an
// activity panel fed by orchestrator events, and an input field. Each
// submitted message runs one conversation turn in the background; when the
// conversation is resolved or escalated the input is disabled.
//
// Usage:
//
//	program, app := tui.NewChatProgram(ctx, state, submit)
//	go func() {
//	    for ev := range emitter.Events() {
//	        program.Send(tui.EventMsg{Event: ev})
//	    }
//	}()
//	_, err := program.Run()
package tui

// Package orchestrator drives a conversation through the routing state machine.
//
// Each call to ProcessTurn runs the machine from ROUTING until the
// conversation either pauses for a clarification (AWAITING_USER) or reaches a
// terminal action (FINALIZING or ESCALATING, then DONE):
//
//	ROUTING -> AWAITING_USER                  (return to caller)
//	ROUTING -> DISPATCHING -> ROUTING         (loop)
//	ROUTING -> FINALIZING -> DONE
//	ROUTING -> ESCALATING -> DONE
//
// The orchestrator keeps no per-conversation memory. Everything it needs to
// resume is in models.ConversationState, so a paused conversation can be
// serialized, stored, and continued later by any process.
//
// Example usage:
//
//	orch, err := orchestrator.New(orchestrator.Deps{Router: engine, Dispatcher: table})
//	state, err := orch.Start(ctx, "What is my premium? POL000004")
//	if state.IsAwaiting() {
//		reply := "POL000004"
//		state, err = orch.ProcessTurn(ctx, state, &reply)
//	}
package orchestrator

package checker

import (
	"fmt"
	"strings"
)

// DisplayOutcome renders a human-readable one-line summary of an action and
// the snapshot it produced, for counterexample traces. This is a
// supplemented feature (not named in the narrow core spec, ported from the
// original implementation's display_outcome) and is therefore best-effort:
// it never fails, and returns ok=false only when the action carries no
// renderable content.
func (m *SystemModel[M, S, H]) DisplayOutcome(st SystemState[M, S, H], action SystemAction[M]) (string, bool) {
	switch action.Kind {
	case ActionDeliver:
		return fmt.Sprintf("%s delivered %s -> %s: %v", action.Kind, action.Src, action.Dst, action.Msg), true
	case ActionDrop:
		return fmt.Sprintf("%s dropped %s", action.Kind, action.Env), true
	case ActionTimeout:
		return fmt.Sprintf("%s fired on %s", action.Kind, action.Timeout), true
	default:
		return "", false
	}
}

// TraceSummary renders a sequence of actions as a numbered list, the format
// an explorer's counterexample report uses to print a shortest path from an
// initial state to a falsifying one.
func TraceSummary[M comparable](actions []SystemAction[M]) string {
	var b strings.Builder
	for i, a := range actions {
		fmt.Fprintf(&b, "%2d: %s\n", i+1, a)
	}
	return b.String()
}

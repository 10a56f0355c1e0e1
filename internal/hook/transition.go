package hook

import (
	"github.com/robert-claypool/dotfiles/internal/payload"
	"github.com/robert-claypool/dotfiles/internal/state"
)

// Apply is the transition rule for one event on a record that has already
// been reconciled to the event's session.
func Apply(st state.SessionState, eventName string) (state.SessionState, payload.Kind) {
	switch eventName {
	case EventSessionStart:
		return st, payload.Full
	case EventPreCompact:
		st.CompactionPending = true
		return st, payload.None
	case EventUserPromptSubmit:
		if st.CompactionPending {
			st.CompactionPending = false
			return st, payload.Full
		}
		return st, payload.Compact
	default:
		return st, payload.None
	}
}

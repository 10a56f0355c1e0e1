// Package state owns the single persisted session record shared by hook invocations.
package state

// SessionState is the only record the hook persists between invocations.
type SessionState struct {
	// SessionID is nil until a session has been observed.
	SessionID *string `json:"session_id" yaml:"session_id"`
	// CompactionPending is set by PreCompact and consumed by the next UserPromptSubmit.
	CompactionPending bool `json:"compaction_pending" yaml:"compaction_pending"`
}

// Default returns the record used when nothing usable is stored.
func Default() SessionState {
	return SessionState{}
}

// ForSession returns a fresh record for sessionID with nothing pending.
func ForSession(sessionID string) SessionState {
	return SessionState{SessionID: &sessionID}
}

// Session returns the stored session id and whether one has been observed.
func (s SessionState) Session() (string, bool) {
	if s.SessionID == nil {
		return "", false
	}
	return *s.SessionID, true
}

// SameSession reports whether the record belongs to sessionID. An empty id is
// a session like any other; only a nil id means "none observed".
func (s SessionState) SameSession(sessionID string) bool {
	id, ok := s.Session()
	return ok && id == sessionID
}

// Reconcile resets the stored record when it belongs to a different session,
// so pending compaction never leaks from one session into the next.
func Reconcile(stored SessionState, sessionID string) SessionState {
	if stored.SameSession(sessionID) {
		return stored
	}
	return ForSession(sessionID)
}

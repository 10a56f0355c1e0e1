// Package hook turns one host lifecycle event into at most one reminder.
package hook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Event names the host sends in hook_event_name.
const (
	EventSessionStart     = "SessionStart"
	EventPreCompact       = "PreCompact"
	EventUserPromptSubmit = "UserPromptSubmit"
)

// ErrMalformedInput is returned for input that is not a JSON object.
var ErrMalformedInput = errors.New("malformed hook input")

// Event is the record the host writes to stdin. Only Name and SessionID
// drive the state machine; the rest is kept for logging.
type Event struct {
	Name           string `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	CWD            string `json:"cwd,omitempty"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	// Source is set on SessionStart (startup, resume, clear, compact).
	Source string `json:"source,omitempty"`
	// Trigger is set on PreCompact (manual, auto).
	Trigger string `json:"trigger,omitempty"`
}

// ReadEvent reads r to EOF and parses a single event from it. There is no
// size limit: UserPromptSubmit carries the whole prompt.
func ReadEvent(r io.Reader) (Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Event{}, fmt.Errorf("%w: read: %v", ErrMalformedInput, err)
	}
	return ParseEvent(data)
}

// ParseEvent decodes data into an Event. Anything other than a JSON object
// with string-typed fields is malformed. Missing fields decode as empty
// strings: an empty session id is still a session.
func ParseEvent(data []byte) (Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Event{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedInput)
	}

	var ev Event
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return ev, nil
}

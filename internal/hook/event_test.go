package hook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Event
		wantErr bool
	}{
		{
			name:  "prompt submit",
			input: `{"hook_event_name": "UserPromptSubmit", "session_id": "A", "prompt": "hi"}`,
			want:  Event{Name: EventUserPromptSubmit, SessionID: "A"},
		},
		{
			name:  "pre compact with trigger",
			input: `{"hook_event_name":"PreCompact","session_id":"A","trigger":"auto","cwd":"/src"}`,
			want:  Event{Name: EventPreCompact, SessionID: "A", Trigger: "auto", CWD: "/src"},
		},
		{
			name:  "missing fields decode empty",
			input: `{}`,
			want:  Event{},
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"hook_event_name\":\"SessionStart\",\"session_id\":\"\"}\n",
			want:  Event{Name: EventSessionStart},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: " \n\t", wantErr: true},
		{name: "null", input: "null", wantErr: true},
		{name: "array", input: `[{"hook_event_name":"SessionStart"}]`, wantErr: true},
		{name: "string", input: `"SessionStart"`, wantErr: true},
		{name: "truncated", input: `{"hook_event_name": "Sess`, wantErr: true},
		{name: "trailing garbage", input: `{"session_id":"A"} extra`, wantErr: true},
		{name: "wrong type", input: `{"hook_event_name": "PreCompact", "session_id": 42}`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseEvent([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadEventLargePrompt(t *testing.T) {
	t.Parallel()

	input := `{"hook_event_name":"UserPromptSubmit","session_id":"A","prompt":"` + strings.Repeat("x", 2<<20) + `"}`
	got, err := ReadEvent(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Event{Name: EventUserPromptSubmit, SessionID: "A"}, got)
}

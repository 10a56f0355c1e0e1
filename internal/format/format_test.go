package format

import (
	"testing"
)

func TestOutputFormat_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format OutputFormat
		want   bool
	}{
		{
			name:   "text format",
			format: TextFormat,
			want:   true,
		},
		{
			name:   "json format",
			format: JSONFormat,
			want:   true,
		},
		{
			name:   "invalid format",
			format: "invalid",
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.format.IsValid(); got != tt.want {
				t.Errorf("OutputFormat.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]OutputFormat{
		"text": TextFormat,
		"json": JSONFormat,
		"":     TextFormat,
		"yaml": TextFormat,
		"JSON": TextFormat,
	}
	for name, want := range tests {
		if got := Parse(name); got != want {
			t.Errorf("Parse(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFormatOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		eventName string
		format    OutputFormat
		want      string
		wantErr   bool
	}{
		{
			name:      "text format is verbatim",
			content:   "remember\nthis\n",
			eventName: "UserPromptSubmit",
			format:    TextFormat,
			want:      "remember\nthis\n",
		},
		{
			name:      "json format",
			content:   "remember",
			eventName: "SessionStart",
			format:    JSONFormat,
			want:      "{\n  \"hookSpecificOutput\": {\n    \"hookEventName\": \"SessionStart\",\n    \"additionalContext\": \"remember\"\n  }\n}\n",
		},
		{
			name:      "invalid format",
			content:   "remember",
			eventName: "SessionStart",
			format:    "invalid",
			want:      "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FormatOutput(tt.content, tt.eventName, tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("FormatOutput() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("FormatOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

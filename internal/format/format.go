package format

import (
	"encoding/json"
	"fmt"
)

// OutputFormat represents how a reminder is written to the host
type OutputFormat string

const (
	// TextFormat writes the reminder verbatim (default)
	TextFormat OutputFormat = "text"

	// JSONFormat wraps the reminder in a hookSpecificOutput object
	JSONFormat OutputFormat = "json"
)

// IsValid checks if the output format is valid
func (f OutputFormat) IsValid() bool {
	return f == TextFormat || f == JSONFormat
}

// String returns the string representation of the output format
func (f OutputFormat) String() string {
	return string(f)
}

// Parse returns the named format, or TextFormat when the name is not recognised
func Parse(name string) OutputFormat {
	f := OutputFormat(name)
	if !f.IsValid() {
		return TextFormat
	}
	return f
}

type hookOutput struct {
	HookSpecificOutput hookSpecific `json:"hookSpecificOutput"`
}

type hookSpecific struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// FormatOutput formats the reminder for eventName according to the specified format
func FormatOutput(content, eventName string, format OutputFormat) (string, error) {
	switch format {
	case TextFormat:
		return content, nil
	case JSONFormat:
		out := hookOutput{
			HookSpecificOutput: hookSpecific{
				HookEventName:     eventName,
				AdditionalContext: content,
			},
		}
		jsonBytes, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

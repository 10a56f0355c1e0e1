// Package payload holds the two reminder texts the hook can emit.
package payload

import (
	"errors"
	"fmt"
	"os"
)

// Kind selects which reminder, if any, an invocation emits.
type Kind int

const (
	None Kind = iota
	Compact
	Full
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Compact:
		return "compact"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const fullText = `<working-agreement>
Context reminder: the conversation was just started or its earlier context was compacted.
Re-read the project's CLAUDE.md and any task notes before continuing; do not rely on
memory of what was said before this point.

Working agreement:
- Keep changes small and focused on the request. Ask before widening scope.
- Read the surrounding code before editing it and match its conventions.
- Never claim something works without having run or checked it. Say plainly what was
  verified and what was not.
- Prefer editing existing files over creating new ones. Do not leave stray debug output.
- Before destructive or hard-to-reverse actions (deleting files, force pushes, schema
  changes), stop and confirm.

If a plan or todo list was in progress, restate it in one short paragraph before taking
the next step so the user can correct it.
</working-agreement>
`

const compactText = `<working-agreement-reminder>
Reminder: small focused changes, match local conventions, verify before claiming success,
confirm before destructive actions.
</working-agreement-reminder>
`

// Set is the pair of texts selected by Kind.
type Set struct {
	Full    string
	Compact string
}

// Builtin returns the texts compiled into the binary.
func Builtin() Set {
	return Set{Full: fullText, Compact: compactText}
}

// Text returns the reminder for k; None yields "".
func (s Set) Text(k Kind) string {
	switch k {
	case Full:
		return s.Full
	case Compact:
		return s.Compact
	default:
		return ""
	}
}

// Load returns the built-in texts with each one replaced by the contents of
// its override file when that path is non-empty. Unreadable overrides keep
// the built-in text and are reported in the returned error. An empty override
// file also keeps the built-in text, so neither reminder can be blanked out.
func Load(fullFile, compactFile string) (Set, error) {
	set := Builtin()
	var errs []error

	if text, err := readOverride(fullFile); err != nil {
		errs = append(errs, err)
	} else if text != "" {
		set.Full = text
	}
	if text, err := readOverride(compactFile); err != nil {
		errs = append(errs, err)
	} else if text != "" {
		set.Compact = text
	}

	return set, errors.Join(errs...)
}

func readOverride(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

package payload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetText(t *testing.T) {
	t.Parallel()
	set := Builtin()

	assert.Equal(t, set.Full, set.Text(Full))
	assert.Equal(t, set.Compact, set.Text(Compact))
	assert.Empty(t, set.Text(None))
	assert.NotEqual(t, set.Full, set.Compact)
	assert.Greater(t, len(set.Full), len(set.Compact))
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "compact", Compact.String())
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	full := filepath.Join(dir, "full.md")
	require.NoError(t, os.WriteFile(full, []byte("custom full\n"), 0o644))

	set, err := Load(full, "")
	require.NoError(t, err)
	assert.Equal(t, "custom full\n", set.Full)
	assert.Equal(t, Builtin().Compact, set.Compact)
}

func TestLoadMissingOverrideKeepsBuiltin(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "missing.md")

	set, err := Load("", missing)
	assert.Error(t, err)
	assert.Equal(t, Builtin(), set)
}

func TestLoadEmptyOverrideKeepsBuiltin(t *testing.T) {
	t.Parallel()
	empty := filepath.Join(t.TempDir(), "compact.md")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	set, err := Load("", empty)
	require.NoError(t, err)
	assert.Equal(t, Builtin(), set)
}

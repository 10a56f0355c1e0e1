package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "context-reminder", "state.json"), nil)
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	res := store.Load(context.Background())
	assert.True(t, res.Defaulted)
	assert.ErrorIs(t, res.Err, ErrNoState)
	assert.Equal(t, Default(), res.State)

	_, err := os.Stat(filepath.Dir(store.Path()))
	assert.True(t, os.IsNotExist(err), "load must not create the state directory")
}

func TestStoreLoadMissingFileInExistingDir(t *testing.T) {
	t.Parallel()
	store := NewStore(filepath.Join(t.TempDir(), "state.json"), nil)

	res := store.Load(context.Background())
	assert.True(t, res.Defaulted)
	assert.ErrorIs(t, res.Err, ErrNoState)
	assert.Equal(t, Default(), res.State)
}

func TestStoreLoadCorrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated object", content: `{"session_id": "A", "compaction_pen`},
		{name: "not json", content: "garbage"},
		{name: "empty file", content: ""},
		{name: "wrong field type", content: `{"session_id": 7, "compaction_pending": "yes"}`},
		{name: "array", content: `[true]`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			res := NewStore(path, nil).Load(context.Background())
			assert.True(t, res.Defaulted)
			assert.Error(t, res.Err)
			assert.NotErrorIs(t, res.Err, ErrNoState)
			assert.Equal(t, Default(), res.State)
		})
	}
}

func TestStoreLoadToleratesComments(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{
  // edited by hand
  "session_id": "A",
  "compaction_pending": true
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res := NewStore(path, nil).Load(context.Background())
	require.NoError(t, res.Err)
	assert.False(t, res.Defaulted)
	assert.Equal(t, SessionState{SessionID: ptr("A"), CompactionPending: true}, res.State)
}

func TestStoreSaveCreatesDirAndPrettyPrints(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	res := store.Save(ctx, SessionState{SessionID: ptr("A"), CompactionPending: true})
	require.NoError(t, res.Err)
	assert.True(t, res.OK())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"session_id\": \"A\",\n  \"compaction_pending\": true\n}\n", string(data))

	loaded := store.Load(ctx)
	require.NoError(t, loaded.Err)
	assert.Equal(t, SessionState{SessionID: ptr("A"), CompactionPending: true}, loaded.State)
}

func TestStoreSaveOverwrites(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, SessionState{SessionID: ptr("A"), CompactionPending: true}).Err)
	require.NoError(t, store.Save(ctx, ForSession("B")).Err)

	loaded := store.Load(ctx)
	require.NoError(t, loaded.Err)
	assert.Equal(t, ForSession("B"), loaded.State)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no sidecar or temp files should remain")
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestStoreSaveDefaultWritesNull(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.Reset(context.Background()).Err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id": null, "compaction_pending": false}`, string(data))
}

func TestStoreSaveFailureIsReported(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := NewStore(filepath.Join(blocker, "state.json"), nil)
	res := store.Save(context.Background(), ForSession("A"))
	assert.Error(t, res.Err)
	assert.False(t, res.OK())

	loaded := store.Load(context.Background())
	assert.True(t, loaded.Defaulted)
}

func TestStoreLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	first := NewStore(path, &Options{LockTimeout: 50 * time.Millisecond})
	second := NewStore(path, &Options{LockTimeout: 50 * time.Millisecond})
	ctx := context.Background()

	release, err := first.Lock(ctx)
	require.NoError(t, err)

	blocked, err := second.Lock(ctx)
	assert.Error(t, err)
	require.NotNil(t, blocked)
	blocked()

	release()

	again, err := second.Lock(ctx)
	require.NoError(t, err)
	again()
}

func TestStoreNoLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path, &Options{NoLock: true})

	release, err := store.Lock(context.Background())
	require.NoError(t, err)
	release()

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

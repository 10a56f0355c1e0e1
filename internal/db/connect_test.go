package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectMigrates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	conn, err := Connect(ctx, path)
	require.NoError(t, err)

	var count int
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, conn.Close())

	// Reopening an up-to-date database is a no-op.
	conn, err = Connect(ctx, path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSnapshot_Missing(t *testing.T) {
	s := createTestStore(t)

	data, found, err := s.LoadSnapshot(context.Background(), "valuation-request")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestSaveSnapshot_LastWriterWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, s.SaveSnapshot(ctx, "k", []byte(`{"v":2}`)))

	data, found, err := s.LoadSnapshot(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"v":2}`, string(data))

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&rows))
	assert.Equal(t, 1, rows, "overwrite must not version snapshots")
}

func TestSaveSnapshot_KeysAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "a", []byte("1")))
	require.NoError(t, s.SaveSnapshot(ctx, "b", []byte("2")))

	data, _, err := s.LoadSnapshot(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestSaveSnapshot_StampsUpdatedAt(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.SaveSnapshot(context.Background(), "k", []byte("x")))

	var ms int64
	require.NoError(t, s.db.QueryRow("SELECT updated_at_ms FROM snapshots WHERE key = 'k'").Scan(&ms))
	assert.Equal(t, int64(1700000000000), ms)
}

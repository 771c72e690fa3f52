package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Roundtrip(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "key1", strings.NewReader("payload"), 7, "text/plain"))

	present, err := l.Exists(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, present)

	r, err := l.Open(ctx, "key1")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "payload", string(data))
}

func TestLocal_ExistsMissing(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	present, err := l.Exists(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestLocal_DeleteIdempotent(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "key1", strings.NewReader("x"), 1, ""))
	require.NoError(t, l.Delete(ctx, "key1"))
	assert.NoError(t, l.Delete(ctx, "key1"))

	present, err := l.Exists(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestLocal_KeysCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "../escape", strings.NewReader("x"), 1, ""))

	// The path flattens to the base name inside the storage dir
	present, err := l.Exists(ctx, "escape")
	require.NoError(t, err)
	assert.True(t, present)
}

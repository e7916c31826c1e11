package memory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetListDelete(t *testing.T) {
	s := New("bucket")
	ctx := context.Background()

	obj, err := s.Put(ctx, "a/1/x.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.EqualValues(t, 5, obj.Size)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", obj.ETag)

	_, err = s.Put(ctx, "a/2/y.txt", strings.NewReader("world"), -1, "")
	require.NoError(t, err)

	rc, got, err := s.Get(ctx, "a/1/x.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", got.ContentType)

	list, err := s.List(ctx, "a/1/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a/1/x.txt", list[0].Key)

	all, err := s.List(ctx, "a/")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, "a/1/x.txt"))
	assert.ErrorIs(t, s.Delete(ctx, "a/1/x.txt"), common.ErrorNotFound)

	_, _, err = s.Get(ctx, "a/1/x.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_PutSizeMismatch(t *testing.T) {
	s := New("bucket")
	_, err := s.Put(context.Background(), "k", strings.NewReader("abc"), 10, "")
	require.Error(t, err)

	list, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_CanceledContext(t *testing.T) {
	s := New("bucket")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "k", strings.NewReader("abc"), 3, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_PresignURL(t *testing.T) {
	s := New("bucket")
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	u, err := s.PresignURL(context.Background(), storage.MethodGet, "a/1/x.txt", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://bucket/a/1/x.txt?expires=2024-01-02T04%3A04%3A05Z&method=GET", u)
}

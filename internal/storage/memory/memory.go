// Package memory implements storage.Store in process memory.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type blob struct {
	data []byte
	obj  storage.Object
}

// Store keeps blobs in a map. Presigned URLs use the memory:// scheme and
// are only meaningful for inspection.
type Store struct {
	bucket string
	mu     sync.RWMutex
	blobs  map[string]blob
	now    func() time.Time
}

// New creates an empty store for bucket.
func New(bucket string) *Store {
	return &Store{bucket: bucket, blobs: make(map[string]blob), now: time.Now}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return nil, fmt.Errorf("payload size %d does not match declared %d", len(data), size)
	}

	sum := md5.Sum(data)
	obj := storage.Object{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: s.now().UTC(),
	}

	s.mu.Lock()
	s.blobs[key] = blob{data: data, obj: obj}
	s.mu.Unlock()

	return &obj, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("get %q: %w", key, common.ErrorNotFound)
	}
	obj := b.obj
	return io.NopCloser(bytes.NewReader(b.data)), &obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("delete %q: %w", key, common.ErrorNotFound)
	}
	delete(s.blobs, key)
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []storage.Object
	for k, b := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, b.obj)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) PresignURL(ctx context.Context, method storage.Method, key string, expiry time.Duration) (string, error) {
	u := url.URL{Scheme: "memory", Host: s.bucket, Path: "/" + key}
	q := url.Values{}
	q.Set("method", string(method))
	q.Set("expires", s.now().Add(expiry).UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

// fakeS3 is a path-style S3 endpoint holding objects of a single bucket.
type fakeS3 struct {
	bucket string
	mu     sync.Mutex
	blobs  map[string][]byte
	types  map[string]string
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, blobs: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		writeError(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case key == "" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.blobs[key] = data
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag-`+key+`"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		data, ok := f.blobs[key]
		if !ok {
			writeError(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.Header().Set("ETag", `"etag-`+key+`"`)
		w.Header().Set("Last-Modified", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(http.TimeFormat))
		_, _ = w.Write(data)
	case r.Method == http.MethodDelete:
		delete(f.blobs, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) blob(key string) (string, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	return string(data), f.types[key], ok
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	var keys []string
	for k := range f.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>",
		f.bucket, prefix, len(keys))
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><LastModified>2024-01-02T03:04:05.000Z</LastModified><ETag>&quot;etag-%s&quot;</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>",
			k, k, len(f.blobs[k]))
	}
	b.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, b.String())
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

// stubConfigLoader bypasses the shared AWS config files and environment.
func stubConfigLoader(t *testing.T) {
	t.Helper()
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				return aws.Config{}, err
			}
		}
		return aws.Config{
			Region:      lo.Region,
			Credentials: lo.Credentials,
		}, nil
	}
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	stubConfigLoader(t)

	fake := newFakeS3("files")
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{
		Bucket:          "files",
		Region:          "us-east-1",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BaseEndpoint:    srv.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return s, fake
}

func TestStore_RoundTrip(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	obj, err := s.Put(ctx, "host/todo/r1/a.txt", bytes.NewReader([]byte("hello")), -1, "text/plain")
	require.NoError(t, err)
	assert.EqualValues(t, 5, obj.Size)
	assert.Equal(t, "etag-host/todo/r1/a.txt", obj.ETag)
	data, ctype, _ := fake.blob("host/todo/r1/a.txt")
	assert.Equal(t, "hello", data)
	assert.Equal(t, "text/plain", ctype)

	// Non-seekable readers are spooled before upload.
	_, err = s.Put(ctx, "host/todo/r1/b.bin", iotest.OneByteReader(strings.NewReader("world!")), -1, "")
	require.NoError(t, err)
	data, _, _ = fake.blob("host/todo/r1/b.bin")
	assert.Equal(t, "world!", data)

	rc, got, err := s.Get(ctx, "host/todo/r1/a.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))
	assert.EqualValues(t, 5, got.Size)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got.LastModified.UTC())

	list, err := s.List(ctx, "host/todo/r1/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "host/todo/r1/a.txt", list[0].Key)
	assert.EqualValues(t, 5, list[0].Size)
	assert.Equal(t, "host/todo/r1/b.bin", list[1].Key)

	require.NoError(t, s.Delete(ctx, "host/todo/r1/a.txt"))
	_, _, ok := fake.blob("host/todo/r1/a.txt")
	assert.False(t, ok)
}

func TestStore_GetMissingIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.Get(context.Background(), "host/todo/r1/missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_PresignURL(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, m := range []storage.Method{storage.MethodGet, storage.MethodPut, storage.MethodDelete} {
		u, err := s.PresignURL(ctx, m, "host/todo/r1/a.txt", 15*time.Minute)
		require.NoError(t, err, m)
		assert.Contains(t, u, "/files/host/todo/r1/a.txt?")
		assert.Contains(t, u, "X-Amz-Expires=900")
		assert.Contains(t, u, "X-Amz-Signature=")
	}

	_, err := s.PresignURL(ctx, storage.Method("PATCH"), "k", time.Minute)
	assert.Error(t, err)
}

func TestNew_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user", creds.AccessKeyID)
		return aws.Config{Region: lo.Region, Credentials: credentials.NewStaticCredentialsProvider("user", "pw", "")}, nil
	}

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	_, err := New(context.Background(), Config{
		Bucket:          "b",
		Region:          "eu-west-1",
		AccessKeyID:     "user",
		SecretAccessKey: "pw",
		BaseEndpoint:    "http://127.0.0.1:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, captured.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *captured.BaseEndpoint)
	assert.True(t, captured.UsePathStyle)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err = New(context.Background(), Config{Bucket: "b"})
	require.Error(t, err)
	assert.Equal(t, "load-fail", err.Error())
}

func TestSeekableBody_PreservesOffset(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)

	body, size, err := seekableBody(r, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 6, size)

	rest, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))
}

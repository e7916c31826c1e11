package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/recordfiles/internal/common"
)

func TestPutToURL(t *testing.T) {
	file := []byte("hello, s3")

	t.Run("success 200 OK", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string
		var gotLen int64

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotLen = r.ContentLength
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := PutToURL(context.Background(), nil, ts.URL+"/some/presigned?X-Amz-Signature=abc", bytes.NewReader(file), int64(len(file)), "")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "application/octet-stream", gotCT)
		assert.EqualValues(t, len(file), gotLen)
		assert.Equal(t, file, gotBody)
	})

	t.Run("content type is forwarded", func(t *testing.T) {
		var gotCT string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		require.NoError(t, PutToURL(context.Background(), ts.Client(), ts.URL, strings.NewReader("{}"), -1, "application/json"))
		assert.Equal(t, "application/json", gotCT)
	})

	t.Run("non-2xx -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, "SignatureDoesNotMatch")
		}))
		defer ts.Close()

		err := PutToURL(context.Background(), nil, ts.URL, bytes.NewReader(file), -1, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "upload failed: 403")
		assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
	})

	t.Run("bad url", func(t *testing.T) {
		err := PutToURL(context.Background(), nil, "://bad", bytes.NewReader(file), -1, "")
		assert.Error(t, err)
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := ts.URL
		ts.Close()

		err := PutToURL(context.Background(), nil, url, bytes.NewReader(file), -1, "")
		assert.Error(t, err)
	})
}

func TestGetFromURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = io.WriteString(w, "payload")
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := GetFromURL(context.Background(), nil, ts.URL+"/k?sig=1", &buf)
		require.NoError(t, err)
		assert.EqualValues(t, 7, n)
		assert.Equal(t, "payload", buf.String())
	})

	t.Run("not found", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		var buf bytes.Buffer
		_, err := GetFromURL(context.Background(), nil, ts.URL, &buf)
		assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "download failed: 404")
		assert.Zero(t, buf.Len())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := GetFromURL(ctx, nil, ts.URL, io.Discard)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpenURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "body")
	}))
	defer ts.Close()

	body, err := OpenURL(context.Background(), ts.Client(), ts.URL+"/present")
	require.NoError(t, err)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "body", string(got))

	body, err = OpenURL(context.Background(), ts.Client(), ts.URL+"/missing")
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
	assert.Nil(t, body)
}

// Package netx transfers blobs through presigned access URIs over plain HTTP.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/recordfiles/internal/common"
)

// PutToURL uploads r to a presigned PUT URL. size is -1 when unknown.
// A nil client means http.DefaultClient.
func PutToURL(ctx context.Context, client *http.Client, url string, r io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus("upload", resp); err != nil {
		return err
	}
	return nil
}

// OpenURL issues a GET on a presigned URL and returns the body once the
// status is known to be 2xx. The caller closes the body.
func OpenURL(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := do(client, req)
	if err != nil {
		return nil, err
	}

	if err := checkStatus("download", resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// GetFromURL downloads a presigned GET URL into w and returns the byte count.
func GetFromURL(ctx context.Context, client *http.Client, url string, w io.Writer) (int64, error) {
	body, err := OpenURL(ctx, client, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("download: %w", err)
	}
	return n, nil
}

func do(client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s failed: %s; body: %s: %w", op, resp.Status, string(b), common.ErrUnexpectedStatus)
}

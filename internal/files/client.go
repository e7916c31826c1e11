package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/logging"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

// DefaultURIValidity is used by AccessURI when validity is not positive.
const DefaultURIValidity = 15 * time.Minute

// Client performs file operations for one backend connection. All keys it
// touches live under its prefix.
//
// Client is safe for concurrent use if its store is.
type Client struct {
	store  storage.Store
	prefix string
	logger logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPrefix scopes every object key under prefix.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = strings.Trim(prefix, "/")
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a files client over store.
func NewClient(store storage.Store, opts ...Option) *Client {
	c := &Client{store: store, logger: logging.NopLogger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefix returns the key prefix of this client.
func (c *Client) Prefix() string {
	return c.prefix
}

// Close releases the store when it holds resources, as the GCS store does.
func (c *Client) Close() error {
	if cl, ok := c.store.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// NewFile returns a descriptor for a file of the given record. It does no I/O.
func (c *Client) NewFile(table, recordID, name string) (File, error) {
	for _, part := range []struct{ what, v string }{{"table", table}, {"record id", recordID}, {"file name", name}} {
		if err := validate(part.what, part.v); err != nil {
			return File{}, err
		}
	}

	return File{
		Name:      name,
		TableName: table,
		ParentID:  recordID,
		StoreURI:  c.key(table, recordID, name),
	}, nil
}

// List returns the files attached to a record, ordered as the store lists them.
func (c *Client) List(ctx context.Context, table, recordID string) ([]File, error) {
	if err := validate("table", table); err != nil {
		return nil, err
	}
	if err := validate("record id", recordID); err != nil {
		return nil, err
	}

	prefix := c.key(table, recordID, "")
	objs, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make([]File, 0, len(objs))
	for _, o := range objs {
		name := strings.TrimPrefix(o.Key, prefix)
		// Skip objects nested deeper than a file name.
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		out = append(out, File{
			Name:         name,
			TableName:    table,
			ParentID:     recordID,
			Length:       o.Size,
			ContentType:  o.ContentType,
			ETag:         o.ETag,
			LastModified: o.LastModified,
			StoreURI:     o.Key,
		})
	}

	c.logger.Debug(ctx, "listed files", "table", table, "record", recordID, "count", len(out))
	return out, nil
}

// Upload stores r as the content of f and returns the updated descriptor.
// size is -1 when unknown.
func (c *Client) Upload(ctx context.Context, f File, r io.Reader, size int64, contentType string) (File, error) {
	f, err := c.resolve(f)
	if err != nil {
		return File{}, err
	}

	obj, err := c.store.Put(ctx, f.StoreURI, r, size, contentType)
	if err != nil {
		return File{}, err
	}

	f.Length = obj.Size
	f.ContentType = obj.ContentType
	f.ETag = obj.ETag
	f.LastModified = obj.LastModified

	c.logger.Info(ctx, "file uploaded", "table", f.TableName, "record", f.ParentID, "name", f.Name, "size", f.Length)
	return f, nil
}

// Download opens the content of f. The caller closes the reader.
func (c *Client) Download(ctx context.Context, f File) (io.ReadCloser, error) {
	f, err := c.resolve(f)
	if err != nil {
		return nil, err
	}

	rc, _, err := c.store.Get(ctx, f.StoreURI)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// DownloadTo copies the content of f into w and returns the byte count.
func (c *Client) DownloadTo(ctx context.Context, f File, w io.Writer) (int64, error) {
	rc, err := c.Download(ctx, f)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	if err != nil {
		return n, fmt.Errorf("download %q: %w", f.Name, err)
	}
	return n, nil
}

// Delete removes the content of f.
func (c *Client) Delete(ctx context.Context, f File) error {
	f, err := c.resolve(f)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, f.StoreURI); err != nil {
		return err
	}

	c.logger.Info(ctx, "file deleted", "table", f.TableName, "record", f.ParentID, "name", f.Name)
	return nil
}

// AccessURI returns a time-limited URI granting perm on f.
func (c *Client) AccessURI(ctx context.Context, f File, perm Permission, validity time.Duration) (string, error) {
	f, err := c.resolve(f)
	if err != nil {
		return "", err
	}
	if validity <= 0 {
		validity = DefaultURIValidity
	}

	return c.store.PresignURL(ctx, perm.method(), f.StoreURI, validity)
}

// resolve validates f and fills StoreURI when the caller built f by hand.
func (c *Client) resolve(f File) (File, error) {
	nf, err := c.NewFile(f.TableName, f.ParentID, f.Name)
	if err != nil {
		return File{}, err
	}
	f.StoreURI = nf.StoreURI
	return f, nil
}

func (c *Client) key(table, recordID, name string) string {
	k := path.Join(c.prefix, table, recordID) + "/"
	return strings.TrimPrefix(k+name, "/")
}

func validate(what, v string) error {
	if v == "" || strings.Contains(v, "/") || v == "." || v == ".." {
		return fmt.Errorf("%w: %s %q", common.ErrInvalidName, what, v)
	}
	return nil
}

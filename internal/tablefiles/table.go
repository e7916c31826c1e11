package tablefiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/recordfiles/internal/backend"
	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/files"
	"github.com/dmitrijs2005/recordfiles/internal/logging"
	"github.com/dmitrijs2005/recordfiles/internal/records"
)

// deleteConcurrency bounds the parallel deletes issued by DeleteAllFiles.
const deleteConcurrency = 8

// Table performs file operations on the records of one backend table.
type Table struct {
	svc    *Service
	conn   *backend.Connection
	name   string
	logger logging.Logger
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// ListFiles returns the files attached to record.
func (t *Table) ListFiles(ctx context.Context, record any) ([]files.File, error) {
	c, id, err := t.resolve(record)
	if err != nil {
		return nil, err
	}
	return c.List(ctx, t.name, id)
}

// CreateFile returns a descriptor for a new file of record. No request is
// made. An empty name is replaced by a random UUID.
func (t *Table) CreateFile(record any, name string) (files.File, error) {
	c, id, err := t.resolve(record)
	if err != nil {
		return files.File{}, err
	}
	return c.NewFile(t.name, id, defaultName(name))
}

// UploadFile stores r as file name of record. size is -1 when unknown.
// The content type is guessed from the name's extension.
func (t *Table) UploadFile(ctx context.Context, record any, name string, r io.Reader, size int64) (files.File, error) {
	c, id, err := t.resolve(record)
	if err != nil {
		return files.File{}, err
	}

	f, err := c.NewFile(t.name, id, defaultName(name))
	if err != nil {
		return files.File{}, err
	}

	return c.Upload(ctx, f, r, size, mime.TypeByExtension(path.Ext(f.Name)))
}

// DeleteFile removes file name of record.
func (t *Table) DeleteFile(ctx context.Context, record any, name string) error {
	c, id, err := t.resolve(record)
	if err != nil {
		return err
	}

	f, err := c.NewFile(t.name, id, name)
	if err != nil {
		return err
	}
	return c.Delete(ctx, f)
}

// DeleteAllFiles removes every file of record. Files already gone when
// their delete runs are not an error.
func (t *Table) DeleteAllFiles(ctx context.Context, record any) error {
	c, id, err := t.resolve(record)
	if err != nil {
		return err
	}

	list, err := c.List(ctx, t.name, id)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, f := range list {
		g.Go(func() error {
			if err := c.Delete(gctx, f); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t.logger.Info(ctx, "record files deleted", "record", id, "count", len(list))
	return nil
}

// FileURI returns a time-limited URI granting perm on file. A non-positive
// validity selects files.DefaultURIValidity.
func (t *Table) FileURI(ctx context.Context, file files.File, perm files.Permission, validity time.Duration) (string, error) {
	c, err := t.client(&file)
	if err != nil {
		return "", err
	}
	return c.AccessURI(ctx, file, perm, validity)
}

// DownloadFile opens the content of file. The caller closes the reader.
func (t *Table) DownloadFile(ctx context.Context, file files.File) (io.ReadCloser, error) {
	c, err := t.client(&file)
	if err != nil {
		return nil, err
	}
	return c.Download(ctx, file)
}

// DownloadFileTo copies the content of file into w.
func (t *Table) DownloadFileTo(ctx context.Context, file files.File, w io.Writer) (int64, error) {
	c, err := t.client(&file)
	if err != nil {
		return 0, err
	}
	return c.DownloadTo(ctx, file, w)
}

// resolve extracts the record identifier before touching the registry, so a
// record without one never builds a client.
func (t *Table) resolve(record any) (*files.Client, string, error) {
	id, ok := records.ID(record)
	if !ok || id == "" {
		return nil, "", common.ErrNoRecordID
	}

	c, err := t.svc.clientFor(t.conn)
	if err != nil {
		return nil, "", err
	}
	return c, id, nil
}

// client fills in the table name of a descriptor built elsewhere.
func (t *Table) client(file *files.File) (*files.Client, error) {
	switch file.TableName {
	case "":
		file.TableName = t.name
	case t.name:
	default:
		return nil, fmt.Errorf("%w: file belongs to table %q", common.ErrInvalidName, file.TableName)
	}
	return t.svc.clientFor(t.conn)
}

func defaultName(name string) string {
	if name == "" {
		return uuid.NewString()
	}
	return name
}

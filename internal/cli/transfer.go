package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/recordfiles/internal/filex"
	"github.com/dmitrijs2005/recordfiles/internal/tablefiles"
)

func (a *App) put(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	name, localPath := args[0], args[1]

	r, size, closeFn, err := a.openLocal(localPath)
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := t.UploadFile(ctx, rec, name, r, size)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "uploaded %s (%d bytes)\n", f.Name, f.Length)
	return nil
}

func (a *App) get(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	desc, err := t.CreateFile(rec, args[0])
	if err != nil {
		return err
	}

	// Open the remote file before creating the local one, so a missing
	// file leaves nothing behind.
	rc, err := t.DownloadFile(ctx, desc)
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := filex.CreateOutputFile(optional(args, 1, DefaultDownloadDir), desc.Name)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, rc)
	if err != nil {
		return fmt.Errorf("download %q: %w", desc.Name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "downloaded %s (%d bytes) to %s\n", desc.Name, n, out.Name())
	return nil
}

func (a *App) remove(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	if err := t.DeleteFile(ctx, rec, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", args[0])
	return nil
}

func (a *App) removeAll(ctx context.Context, t *tablefiles.Table, rec record, _ []string) error {
	if err := t.DeleteAllFiles(ctx, rec); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted all files of %s/%s\n", t.Name(), rec.Id)
	return nil
}

// openLocal opens path for upload. "-" reads the app input with an unknown size.
func (a *App) openLocal(path string) (io.Reader, int64, func(), error) {
	if path == "-" {
		return a.in, -1, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, 0, nil, fmt.Errorf("%s is a directory", path)
	}
	return f, fi.Size(), func() { f.Close() }, nil
}

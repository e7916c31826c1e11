package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/files"
	"github.com/dmitrijs2005/recordfiles/internal/filex"
	"github.com/dmitrijs2005/recordfiles/internal/netx"
	"github.com/dmitrijs2005/recordfiles/internal/tablefiles"
)

func (a *App) url(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	perm, ok := files.ParsePermission(optional(args, 1, "read"))
	if !ok {
		return fmt.Errorf("%w: permission %q, want read, write or delete", common.ErrInvalidUsage, args[1])
	}

	desc, err := t.CreateFile(rec, args[0])
	if err != nil {
		return err
	}

	uri, err := t.FileURI(ctx, desc, perm, a.config.URLValidity)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, uri)
	return nil
}

func (a *App) fetch(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	desc, err := t.CreateFile(rec, args[0])
	if err != nil {
		return err
	}

	uri, err := t.FileURI(ctx, desc, files.PermissionRead, a.config.URLValidity)
	if err != nil {
		return err
	}

	// Check the response before touching the local file, as get does.
	body, err := netx.OpenURL(ctx, a.httpClient, uri)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := filex.CreateOutputFile(optional(args, 1, DefaultDownloadDir), desc.Name)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, body)
	if err != nil {
		return fmt.Errorf("fetch %q: %w", desc.Name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "fetched %s (%d bytes) to %s\n", desc.Name, n, out.Name())
	return nil
}

func (a *App) push(ctx context.Context, t *tablefiles.Table, rec record, args []string) error {
	desc, err := t.CreateFile(rec, args[0])
	if err != nil {
		return err
	}

	r, size, closeFn, err := a.openLocal(args[1])
	if err != nil {
		return err
	}
	defer closeFn()

	uri, err := t.FileURI(ctx, desc, files.PermissionWrite, a.config.URLValidity)
	if err != nil {
		return err
	}

	if err := netx.PutToURL(ctx, a.httpClient, uri, r, size, mime.TypeByExtension(filepath.Ext(desc.Name))); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "pushed %s (%d bytes)\n", desc.Name, size)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/tablefiles"
)

func (a *App) list(ctx context.Context, t *tablefiles.Table, rec record, _ []string) error {
	list, err := t.ListFiles(ctx, rec)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tTYPE")
	for _, f := range list {
		modified := "-"
		if !f.LastModified.IsZero() {
			modified = f.LastModified.UTC().Format(time.RFC3339)
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", f.Name, f.Length, modified, contentType)
	}
	return tw.Flush()
}

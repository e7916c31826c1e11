package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/recordfiles/internal/backend"
	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/config"
	"github.com/dmitrijs2005/recordfiles/internal/logging"
	"github.com/dmitrijs2005/recordfiles/internal/tablefiles"
)

// DefaultDownloadDir receives downloads when no directory is given.
const DefaultDownloadDir = "downloads"

// App runs recordfiles commands against one backend connection.
type App struct {
	config     *config.Config
	conn       *backend.Connection
	files      *tablefiles.Service
	factory    tablefiles.Factory
	logger     logging.Logger
	out        io.Writer
	in         io.Reader
	httpClient *http.Client
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects command output. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithInput sets the reader used by "put <name> -". The default is os.Stdin.
func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = r }
}

// WithLogger replaces the JSON logger built from the config.
func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithFactory replaces the storage-backed files client factory.
func WithFactory(f tablefiles.Factory) Option {
	return func(a *App) { a.factory = f }
}

// WithHTTPClient sets the client used for presigned transfers.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// NewApp validates the backend settings of c and wires the files service.
func NewApp(c *config.Config, opts ...Option) (*App, error) {

	conn, err := backend.NewConnection(c.Backend())
	if err != nil {
		return nil, err
	}

	a := &App{
		config:     c,
		conn:       conn,
		logger:     logging.New(os.Stderr, c.LogLevel),
		out:        os.Stdout,
		in:         os.Stdin,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.factory == nil {
		a.factory = tablefiles.NewFactory(c.Provider(), a.logger)
	}
	a.files = tablefiles.New(a.factory, a.logger)

	return a, nil
}

// record is the application record addressed on the command line.
type record struct {
	Id string
}

type command struct {
	minArgs, maxArgs int
	usage            string
	run              func(a *App, ctx context.Context, t *tablefiles.Table, rec record, args []string) error
}

var commands = map[string]command{
	"ls":    {0, 0, "ls <table> <recordID>", (*App).list},
	"put":   {2, 2, "put <table> <recordID> <name> <localPath|->", (*App).put},
	"get":   {1, 2, "get <table> <recordID> <name> [dir]", (*App).get},
	"rm":    {1, 1, "rm <table> <recordID> <name>", (*App).remove},
	"rmall": {0, 0, "rmall <table> <recordID>", (*App).removeAll},
	"url":   {1, 2, "url <table> <recordID> <name> [read|write|delete]", (*App).url},
	"fetch": {1, 2, "fetch <table> <recordID> <name> [dir]", (*App).fetch},
	"push":  {2, 2, "push <table> <recordID> <name> <localPath>", (*App).push},
}

// Run executes one command. args are the positional arguments, starting
// with the command name. Usage errors match common.ErrInvalidUsage.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", common.ErrInvalidUsage)
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", common.ErrInvalidUsage, name)
	}

	rest := args[1:]
	if len(rest) < 2+cmd.minArgs || len(rest) > 2+cmd.maxArgs {
		return fmt.Errorf("%w: usage: recordfiles %s", common.ErrInvalidUsage, cmd.usage)
	}

	table := a.files.Table(a.conn, rest[0])
	rec := record{Id: rest[1]}

	a.logger.Debug(ctx, "running command", "command", name, "table", rest[0], "record", rec.Id)

	if err := cmd.run(a, ctx, table, rec, rest[2:]); err != nil {
		a.logger.Error(ctx, "command failed", "command", name, "error", err)
		return err
	}
	return nil
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: recordfiles [flags] <command> <table> <recordID> [args]")
	for _, name := range []string{"ls", "put", "get", "rm", "rmall", "url", "fetch", "push"} {
		fmt.Fprintf(w, "  recordfiles %s\n", commands[name].usage)
	}
}

func optional(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}

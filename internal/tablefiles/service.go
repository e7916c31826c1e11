// Package tablefiles exposes file operations on the records of a backend
// table. Files clients are built once per backend connection and shared by
// every table and caller using that connection.
package tablefiles

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recordfiles/internal/backend"
	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/files"
	"github.com/dmitrijs2005/recordfiles/internal/logging"
	"github.com/dmitrijs2005/recordfiles/internal/registry"
	"github.com/dmitrijs2005/recordfiles/internal/storage/provider"
)

// Factory builds the files client for a connection. It runs under the
// registry lock and must not perform network requests.
type Factory = registry.Factory[*backend.Connection, *files.Client]

var newStore = provider.New

// NewFactory returns a Factory that builds one store per connection, using
// the connection's container as the bucket and its host as the key prefix.
func NewFactory(cfg provider.Config, logger logging.Logger) Factory {
	if logger == nil {
		logger = logging.NopLogger
	}

	return func(conn *backend.Connection) (*files.Client, error) {
		if conn == nil {
			return nil, errors.New("nil backend connection")
		}

		store, err := newStore(context.Background(), cfg, conn.Container())
		if err != nil {
			return nil, err
		}

		logger.Debug(context.Background(), "files client created",
			"backend", conn.String(), "provider", cfg.Kind, "container", conn.Container())

		return files.NewClient(store,
			files.WithPrefix(conn.StoragePrefix()),
			files.WithLogger(logger.With("backend", conn.String())),
		), nil
	}
}

// Service shares one files client per backend connection between tables.
type Service struct {
	clients *registry.Registry[*backend.Connection, *files.Client]
	factory Factory
	logger  logging.Logger
}

// New returns a Service that builds clients with factory.
func New(factory Factory, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &Service{
		clients: registry.New[*backend.Connection, *files.Client](),
		factory: factory,
		logger:  logger,
	}
}

// Client returns the files client bound to conn, building it on first use.
func (s *Service) Client(conn *backend.Connection) (*files.Client, error) {
	return s.clients.GetOrCreate(conn, s.factory)
}

// Forget drops the client bound to conn and closes its store. The next call
// builds a new one. It reports whether a client was bound.
func (s *Service) Forget(conn *backend.Connection) bool {
	c, ok := s.clients.Take(conn)
	if !ok {
		return false
	}
	if err := c.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing files client", "backend", conn.String(), "error", err)
	}
	return true
}

// Table returns the file operations for table name over conn.
func (s *Service) Table(conn *backend.Connection, name string) *Table {
	return &Table{
		svc:    s,
		conn:   conn,
		name:   name,
		logger: s.logger.With("table", name),
	}
}

func (s *Service) clientFor(conn *backend.Connection) (*files.Client, error) {
	if conn == nil {
		return nil, common.ErrInvalidConnection
	}
	return s.Client(conn)
}

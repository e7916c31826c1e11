// Package backend models a configured connection to the mobile backend.
//
// A *Connection is an opaque handle: callers create it once per backend they
// talk to and pass it around by pointer. Its identity, not its contents, is
// what the files layer uses to share one files client per connection.
package backend

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/recordfiles/internal/common"
)

// Config describes one backend connection.
type Config struct {
	// URL is the absolute http(s) address of the mobile backend.
	URL string
	// ApplicationKey identifies the client application to the backend.
	ApplicationKey string
	// Container is the bucket holding files attached to this backend's records.
	Container string
}

// Connection is a configured backend connection.
type Connection struct {
	url       *url.URL
	appKey    string
	container string
}

// NewConnection validates cfg and returns a connection handle.
func NewConnection(cfg Config) (*Connection, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConnection, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url %q must be absolute http(s)", common.ErrInvalidConnection, cfg.URL)
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("%w: container is required", common.ErrInvalidConnection)
	}

	return &Connection{url: u, appKey: cfg.ApplicationKey, container: cfg.Container}, nil
}

// URL returns the backend address.
func (c *Connection) URL() string {
	return c.url.String()
}

// ApplicationKey returns the application key.
func (c *Connection) ApplicationKey() string {
	return c.appKey
}

// Container returns the bucket name for this connection's files.
func (c *Connection) Container() string {
	return c.container
}

// StoragePrefix is the object-key prefix that scopes files to this backend.
// Two connections to the same backend host share the prefix.
func (c *Connection) StoragePrefix() string {
	host := strings.ToLower(c.url.Hostname())
	if p := c.url.Port(); p != "" {
		host += "_" + p
	}
	return host
}

// String implements fmt.Stringer for logging.
func (c *Connection) String() string {
	return c.URL()
}

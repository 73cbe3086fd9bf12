package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

const (
	healthInterval = 30 * time.Second
	healthTimeout  = 5 * time.Second
)

// DBConnection is a managed SurrealDB connection. Stores depend on it rather
// than on *surrealdb.DB so a dropped socket can be re-established underneath them.
type DBConnection interface {
	Connect(ctx context.Context) error
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
	IsHealthy() bool
	Ping(ctx context.Context) error
	StartMonitoring()
	Close(ctx context.Context) error
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
}

// Connection owns the socket to SurrealDB. A failed call that looks like a
// network fault redials once per backoff attempt and replays the call; a
// background monitor does the same when the periodic version check fails.
type Connection struct {
	cfg     config.Provider
	backoff backoff

	mu      sync.RWMutex
	db      *surrealdb.DB
	healthy bool

	stop     chan struct{}
	stopOnce sync.Once
}

var _ DBConnection = (*Connection)(nil)

func NewConnection(cfg config.Provider) *Connection {
	return &Connection{
		cfg:     cfg,
		backoff: defaultBackoff(),
		stop:    make(chan struct{}),
	}
}

// Connect dials SurrealDB, retrying while the server is still starting.
// It is a no-op once connected.
func (c *Connection) Connect(ctx context.Context) error {
	if c.current() != nil {
		return nil
	}
	return c.backoff.do(ctx, "connect", func() error { return c.redial(ctx) })
}

// WithConnection hands fn the live client. Application errors come back as
// they are; transport errors trigger a redial and fn runs again.
func (c *Connection) WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error {
	db := c.current()
	if db == nil {
		return NewDBError(ErrNotConnected, "database not connected")
	}

	err := fn(db)
	if err == nil || !transient(err) {
		return err
	}

	slog.WarnContext(ctx, "Lost database connection, redialing",
		"event", "db_reconnect", "db_url", safeURL(c.cfg.GetDBURL()), "error", err)

	return c.backoff.do(ctx, "reconnect", func() error {
		if dialErr := c.redial(ctx); dialErr != nil {
			return errors.Join(dialErr, err)
		}
		return fn(c.current())
	})
}

func (c *Connection) StartMonitoring() {
	go c.monitor()
}

// Close stops the monitor and closes the socket. Safe to call more than once.
func (c *Connection) Close(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = false
	if c.db == nil {
		return nil
	}
	err := c.db.Close(ctx)
	c.db = nil
	return err
}

func (c *Connection) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Ping asks the server for its version and records the outcome.
func (c *Connection) Ping(ctx context.Context) error {
	db := c.current()
	if db == nil {
		c.markHealthy(false)
		return NewDBError(ErrNotConnected, "no active database connection")
	}
	if _, err := db.Version(ctx); err != nil {
		c.markHealthy(false)
		return fmt.Errorf("ping %s: %w", safeURL(c.cfg.GetDBURL()), err)
	}
	c.markHealthy(true)
	return nil
}

func (c *Connection) GetDBQueryTimeout() time.Duration   { return c.cfg.GetDBQueryTimeout() }
func (c *Connection) GetDBExecuteTimeout() time.Duration { return c.cfg.GetDBExecuteTimeout() }

func (c *Connection) current() *surrealdb.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Connection) markHealthy(ok bool) {
	c.mu.Lock()
	c.healthy = ok
	c.mu.Unlock()
}

// redial replaces the current client with a freshly authenticated one.
func (c *Connection) redial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		_ = c.db.Close(ctx)
		c.db = nil
	}
	c.healthy = false

	db, err := c.dial(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Database dial failed",
			"event", "db_connect_failure", "db_url", safeURL(c.cfg.GetDBURL()), "error", err)
		return err
	}

	c.db = db
	c.healthy = true
	slog.DebugContext(ctx, "Connected to database",
		"event", "db_connect_success",
		"db_url", safeURL(c.cfg.GetDBURL()),
		"namespace", c.cfg.GetDBNs(), "database", c.cfg.GetDBDb())
	return nil
}

// dial opens a socket, signs in and selects the namespace and database.
func (c *Connection) dial(ctx context.Context) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, c.cfg.GetDBURL())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", safeURL(c.cfg.GetDBURL()), err)
	}

	auth := &surrealdb.Auth{Username: c.cfg.GetDBUser(), Password: c.cfg.GetDBPass()}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("sign in as %s: %w", c.cfg.GetDBUser(), err)
	}
	if err := db.Use(ctx, c.cfg.GetDBNs(), c.cfg.GetDBDb()); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", c.cfg.GetDBNs(), c.cfg.GetDBDb(), err)
	}
	return db, nil
}

func (c *Connection) monitor() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.checkOnce()
		}
	}
}

func (c *Connection) checkOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	err := c.Ping(ctx)
	if err == nil {
		return
	}
	slog.WarnContext(ctx, "Database health check failed", "event", "db_health_check_failure", "error", err)
	if err := c.backoff.do(ctx, "reconnect", func() error { return c.redial(ctx) }); err != nil {
		slog.ErrorContext(ctx, "Database still unreachable", "event", "db_reconnect_failure", "error", err)
	}
}

// transient reports whether err points at the transport rather than the
// query, so a redial might fix it.
func transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"use of closed network connection",
		"unexpected eof",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// safeURL strips the password from a connection URL before it is logged.
func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}

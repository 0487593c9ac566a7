package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
)

// ConnCache is the process-wide database handle. The connection is
// established lazily on first use and cached for every later caller. Only one
// establishment attempt runs at a time: callers arriving during an attempt
// wait for its outcome instead of opening duplicate connections, and a failed
// attempt is discarded so the next caller retries cleanly rather than
// replaying a stale failure.
type ConnCache struct {
	connStr string
	open    func(connStr string) (*sql.DB, error)

	mu      sync.Mutex
	db      *sql.DB
	attempt *connAttempt
}

type connAttempt struct {
	done chan struct{}
	db   *sql.DB
	err  error
}

func NewConnCache(connStr string) *ConnCache {
	return &ConnCache{
		connStr: connStr,
		open:    openAndPing,
	}
}

func openAndPing(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Get returns the cached handle, establishing it if necessary.
func (c *ConnCache) Get(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	if c.db != nil {
		db := c.db
		c.mu.Unlock()
		return db, nil
	}

	if c.attempt != nil {
		attempt := c.attempt
		c.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.db, attempt.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	attempt := &connAttempt{done: make(chan struct{})}
	c.attempt = attempt
	c.mu.Unlock()

	db, err := c.open(c.connStr)

	c.mu.Lock()
	if err == nil {
		c.db = db
	}
	c.attempt = nil
	c.mu.Unlock()

	attempt.db = db
	attempt.err = err
	close(attempt.done)

	return db, err
}

// Close tears the cached connection down. A later Get establishes a fresh one.
func (c *ConnCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

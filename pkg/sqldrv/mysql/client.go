// Package mysql adapts database/sql with the go-sql-driver/mysql driver to
// the sqldrv protocol. The DSN should enable multiStatements so batched SQL
// can report more than one outcome.
package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql" // side-effect
)

// Client owns the connection pool and hands out per-execution connections.
type Client struct {
	db *sql.DB
}

// NewClient opens a pool for the given DSN and verifies connectivity.
func NewClient(ctx context.Context, dsn string) (*Client, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Client{db: db}, nil
}

// Conn checks a single connection out of the pool. Closing the returned
// connection returns it to the pool.
func (c *Client) Conn(ctx context.Context) (*Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// Close shuts the pool down.
func (c *Client) Close() error {
	return c.db.Close()
}

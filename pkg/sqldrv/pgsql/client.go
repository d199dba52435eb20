// Package pgsql adapts jackc/pgx to the sqldrv protocol. The prepared path
// uses the extended protocol; literal SQL runs over the simple protocol,
// which natively reports multiple outcomes per batch.
package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client owns the pgx pool and hands out per-execution connections.
type Client struct {
	pool *pgxpool.Pool
}

// NewClient opens a pool for the given DSN and verifies connectivity.
func NewClient(ctx context.Context, dsn string) (*Client, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 3 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Client{pool: pool}, nil
}

// Conn acquires a single connection. Closing the returned connection
// releases it back to the pool.
func (c *Client) Conn(ctx context.Context) (*Conn, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// Close shuts the pool down.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Package config provides configuration defaults for the query runner server.
package config

import "time"

// Environment variable names.
const (
	EnvPort   = "PORT"
	EnvDriver = "DB_DRIVER"
	EnvDSN    = "DB_DSN"
)

// Supported database drivers.
const (
	DriverMySQL = "mysql"
	DriverPgSQL = "pgsql"
)

// Server defaults.
const (
	DefaultPort   = "8080"
	DefaultDriver = DriverMySQL

	// DefaultStatementTTL is how long completed async executions stay
	// pollable before cleanup.
	DefaultStatementTTL = 1 * time.Hour
)

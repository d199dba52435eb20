// Package drivertest provides a scripted in-memory implementation of the
// sqldrv interfaces. Tests preload the outcome sequence a statement should
// report and assert on the recorded bind calls afterwards.
package drivertest

import (
	"context"
	"strconv"

	"github.com/lowkit/sqlrunner/pkg/sqldrv"
)

// Outcome is one scripted execution outcome.
type Outcome struct {
	IsRows      bool
	Columns     []string
	Rows        [][]any
	UpdateCount int64
	Keys        []int64
}

// RowsOutcome scripts a result-set outcome.
func RowsOutcome(columns []string, rows ...[]any) Outcome {
	return Outcome{IsRows: true, Columns: columns, Rows: rows, UpdateCount: sqldrv.NoMoreOutcomes}
}

// ExecOutcome scripts an update-count outcome with optional generated keys.
func ExecOutcome(count int64, keys ...int64) Outcome {
	return Outcome{UpdateCount: count, Keys: keys}
}

// Bind records one typed parameter-setting call.
type Bind struct {
	Index int
	Kind  string
	Value any
}

// Conn is a scripted connection.
type Conn struct {
	// Script is the outcome sequence every executed statement reports.
	Script []Outcome
	// Ordinal switches placeholder rendering from "?" to "$n".
	Ordinal bool

	// Error injection.
	PrepareErr error
	ExecuteErr error
	BindErr    error

	// Observations.
	Closed      bool
	StmtClosed  bool
	PreparedSQL string
	ExecutedSQL string
	Binds       []Bind
}

var _ sqldrv.Conn = (*Conn)(nil)

// Prepare returns a scripted prepared statement.
func (c *Conn) Prepare(_ context.Context, sql string) (sqldrv.PreparedStatement, error) {
	if c.PrepareErr != nil {
		return nil, c.PrepareErr
	}
	c.PreparedSQL = sql
	return &preparedStmt{stmt: stmt{conn: c}}, nil
}

// Statement returns a scripted plain statement.
func (c *Conn) Statement() sqldrv.Statement {
	return &textStmt{stmt: stmt{conn: c}}
}

// Placeholder renders the configured placeholder style.
func (c *Conn) Placeholder(index int) string {
	if c.Ordinal {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// Close marks the connection closed.
func (c *Conn) Close() error {
	c.Closed = true
	return nil
}

// stmt walks the scripted outcomes.
type stmt struct {
	conn     *Conn
	pos      int
	executed bool
}

func (s *stmt) current() (Outcome, bool) {
	if !s.executed || s.pos >= len(s.conn.Script) {
		return Outcome{}, false
	}
	return s.conn.Script[s.pos], true
}

func (s *stmt) execute() (bool, error) {
	if s.conn.ExecuteErr != nil {
		return false, s.conn.ExecuteErr
	}
	s.executed = true
	s.pos = 0
	out, ok := s.current()
	return ok && out.IsRows, nil
}

func (s *stmt) ResultSet() (sqldrv.RowSet, error) {
	out, ok := s.current()
	if !ok || !out.IsRows {
		return nil, nil
	}
	return &rowSet{outcome: out, row: -1}, nil
}

func (s *stmt) UpdateCount() int64 {
	out, ok := s.current()
	if !ok || out.IsRows {
		return sqldrv.NoMoreOutcomes
	}
	return out.UpdateCount
}

func (s *stmt) NextOutcome() (bool, error) {
	s.pos++
	out, ok := s.current()
	return ok && out.IsRows, nil
}

func (s *stmt) GeneratedKeys() ([]int64, error) {
	out, ok := s.current()
	if !ok {
		return nil, nil
	}
	return out.Keys, nil
}

func (s *stmt) Close() error {
	s.conn.StmtClosed = true
	return nil
}

type textStmt struct {
	stmt
}

func (s *textStmt) Execute(_ context.Context, sql string) (bool, error) {
	s.conn.ExecutedSQL = sql
	return s.execute()
}

type preparedStmt struct {
	stmt
}

func (s *preparedStmt) Execute(context.Context) (bool, error) {
	return s.execute()
}

func (s *preparedStmt) record(index int, kind string, v any) error {
	if s.conn.BindErr != nil {
		return s.conn.BindErr
	}
	s.conn.Binds = append(s.conn.Binds, Bind{Index: index, Kind: kind, Value: v})
	return nil
}

func (s *preparedStmt) BindNull(index int) error { return s.record(index, "null", nil) }

func (s *preparedStmt) BindInt(index int, v int32) error { return s.record(index, "int", v) }

func (s *preparedStmt) BindLong(index int, v int64) error { return s.record(index, "long", v) }

func (s *preparedStmt) BindDecimal(index int, literal string) error {
	return s.record(index, "decimal", literal)
}

func (s *preparedStmt) BindBool(index int, v bool) error { return s.record(index, "bool", v) }

func (s *preparedStmt) BindString(index int, v string) error { return s.record(index, "string", v) }

// rowSet iterates a scripted outcome's rows.
type rowSet struct {
	outcome Outcome
	row     int
	closed  bool
}

func (r *rowSet) Columns() ([]string, error) { return r.outcome.Columns, nil }

func (r *rowSet) Next() bool {
	if r.closed || r.row+1 >= len(r.outcome.Rows) {
		return false
	}
	r.row++
	return true
}

func (r *rowSet) Values() ([]any, error) { return r.outcome.Rows[r.row], nil }

func (r *rowSet) Err() error { return nil }

func (r *rowSet) Close() error {
	r.closed = true
	return nil
}

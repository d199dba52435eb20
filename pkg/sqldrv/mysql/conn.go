package mysql

import (
	"context"
	"database/sql"

	"github.com/lowkit/sqlrunner/pkg/sqldrv"
)

// Conn adapts one pooled connection to the sqldrv protocol.
//
// database/sql splits execution into query and exec surfaces, so the adapter
// classifies SQL up front: row-yielding statements run through QueryContext
// (additional result sets drained via NextResultSet), everything else through
// ExecContext, which surfaces the affected-row count and the auto-increment
// id as the generated key.
type Conn struct {
	conn *sql.Conn
}

var _ sqldrv.Conn = (*Conn)(nil)

// Prepare compiles sql into a prepared statement.
func (c *Conn) Prepare(ctx context.Context, sqlText string) (sqldrv.PreparedStatement, error) {
	stmt, err := c.conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return &preparedStmt{stmt: stmt, sqlText: sqlText}, nil
}

// Statement creates a plain statement handle on this connection.
func (c *Conn) Statement() sqldrv.Statement {
	return &textStmt{conn: c.conn}
}

// Placeholder renders the anonymous positional placeholder.
func (c *Conn) Placeholder(int) string { return "?" }

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// outcomes walks what one execution produced. The query path owns a
// *sql.Rows spanning all result sets; the exec path holds the single
// update-count outcome.
type outcomes struct {
	rows    *sql.Rows
	onRows  bool
	count   int64
	lastID  int64
	drained bool
}

func (o *outcomes) ResultSet() (sqldrv.RowSet, error) {
	if !o.onRows || o.drained {
		return nil, nil
	}
	return &rowSet{rows: o.rows}, nil
}

func (o *outcomes) UpdateCount() int64 {
	if o.onRows || o.drained {
		return sqldrv.NoMoreOutcomes
	}
	return o.count
}

func (o *outcomes) NextOutcome() (bool, error) {
	if o.rows != nil && !o.drained && o.rows.NextResultSet() {
		return true, nil
	}
	o.drained = true
	return false, nil
}

func (o *outcomes) GeneratedKeys() ([]int64, error) {
	if o.onRows || o.drained || o.lastID <= 0 {
		return nil, nil
	}
	return []int64{o.lastID}, nil
}

func (o *outcomes) close() error {
	if o.rows != nil {
		return o.rows.Close()
	}
	return nil
}

func (o *outcomes) runQuery(rows *sql.Rows) {
	o.rows = rows
	o.onRows = true
}

func (o *outcomes) runExec(res sql.Result) {
	count, err := res.RowsAffected()
	if err != nil {
		count = 0
	}
	// LastInsertId is 0 when the statement generated no key.
	id, err := res.LastInsertId()
	if err != nil {
		id = 0
	}
	o.count = count
	o.lastID = id
}

type textStmt struct {
	outcomes
	conn *sql.Conn
}

func (s *textStmt) Execute(ctx context.Context, sqlText string) (bool, error) {
	if sqldrv.YieldsRows(sqlText) {
		rows, err := s.conn.QueryContext(ctx, sqlText)
		if err != nil {
			return false, err
		}
		s.runQuery(rows)
		return true, nil
	}
	res, err := s.conn.ExecContext(ctx, sqlText)
	if err != nil {
		return false, err
	}
	s.runExec(res)
	return false, nil
}

func (s *textStmt) Close() error {
	return s.close()
}

type preparedStmt struct {
	outcomes
	stmt    *sql.Stmt
	sqlText string
	args    []any
}

func (s *preparedStmt) setArg(index int, v any) error {
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = v
	return nil
}

func (s *preparedStmt) BindNull(index int) error { return s.setArg(index, nil) }

func (s *preparedStmt) BindInt(index int, v int32) error { return s.setArg(index, v) }

func (s *preparedStmt) BindLong(index int, v int64) error { return s.setArg(index, v) }

func (s *preparedStmt) BindDecimal(index int, literal string) error {
	// Sent as a decimal literal; the server coerces to the column type
	// without a detour through binary floats.
	return s.setArg(index, literal)
}

func (s *preparedStmt) BindBool(index int, v bool) error { return s.setArg(index, v) }

func (s *preparedStmt) BindString(index int, v string) error { return s.setArg(index, v) }

func (s *preparedStmt) Execute(ctx context.Context) (bool, error) {
	if sqldrv.YieldsRows(s.sqlText) {
		rows, err := s.stmt.QueryContext(ctx, s.args...)
		if err != nil {
			return false, err
		}
		s.runQuery(rows)
		return true, nil
	}
	res, err := s.stmt.ExecContext(ctx, s.args...)
	if err != nil {
		return false, err
	}
	s.runExec(res)
	return false, nil
}

func (s *preparedStmt) Close() error {
	rowsErr := s.close()
	if err := s.stmt.Close(); err != nil {
		return err
	}
	return rowsErr
}

// rowSet exposes the current result set of a *sql.Rows. Close is a no-op on
// the underlying rows: the statement owns them across result-set boundaries.
type rowSet struct {
	rows *sql.Rows
}

func (r *rowSet) Columns() ([]string, error) { return r.rows.Columns() }

func (r *rowSet) Next() bool { return r.rows.Next() }

func (r *rowSet) Values() ([]any, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *rowSet) Err() error { return r.rows.Err() }

func (r *rowSet) Close() error { return nil }

package pgsql

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lowkit/sqlrunner/pkg/sqldrv"
)

// Conn adapts one acquired pgx connection to the sqldrv protocol.
//
// PostgreSQL reports no driver-level generated keys (RETURNING is the native
// mechanism), so GeneratedKeys is always empty here.
type Conn struct {
	conn *pgxpool.Conn
}

var _ sqldrv.Conn = (*Conn)(nil)

// Prepare compiles sql into a named prepared statement. The statement
// description already tells whether execution yields rows.
func (c *Conn) Prepare(ctx context.Context, sqlText string) (sqldrv.PreparedStatement, error) {
	name := "sqlrunner_" + uuid.NewString()
	sd, err := c.conn.Conn().Prepare(ctx, name, sqlText)
	if err != nil {
		return nil, err
	}
	return &preparedStmt{
		conn:      c.conn.Conn(),
		name:      name,
		sqlText:   sqlText,
		yieldRows: len(sd.Fields) > 0,
	}, nil
}

// Statement creates a simple-protocol statement handle.
func (c *Conn) Statement() sqldrv.Statement {
	return &textStmt{conn: c.conn.Conn()}
}

// Placeholder renders the ordinal positional placeholder.
func (c *Conn) Placeholder(index int) string { return "$" + strconv.Itoa(index) }

// Close releases the connection back to the pool.
func (c *Conn) Close() error {
	c.conn.Release()
	return nil
}

// preparedStmt executes over the extended protocol. One statement yields
// exactly one outcome.
type preparedStmt struct {
	conn      *pgx.Conn
	name      string
	sqlText   string
	yieldRows bool
	args      []any
	rows      pgx.Rows
	count     int64
	drained   bool
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
	// pgx sends the literal as text and the server casts to the param type.
	return s.setArg(index, literal)
}

func (s *preparedStmt) BindBool(index int, v bool) error { return s.setArg(index, v) }

func (s *preparedStmt) BindString(index int, v string) error { return s.setArg(index, v) }

func (s *preparedStmt) Execute(ctx context.Context) (bool, error) {
	if s.yieldRows {
		rows, err := s.conn.Query(ctx, s.name, s.args...)
		if err != nil {
			return false, err
		}
		s.rows = rows
		return true, nil
	}
	tag, err := s.conn.Exec(ctx, s.name, s.args...)
	if err != nil {
		return false, err
	}
	s.count = tag.RowsAffected()
	return false, nil
}

func (s *preparedStmt) ResultSet() (sqldrv.RowSet, error) {
	if !s.yieldRows || s.drained {
		return nil, nil
	}
	return &pgxRowSet{rows: s.rows}, nil
}

func (s *preparedStmt) UpdateCount() int64 {
	if s.yieldRows || s.drained {
		return sqldrv.NoMoreOutcomes
	}
	return s.count
}

func (s *preparedStmt) NextOutcome() (bool, error) {
	s.drained = true
	return false, nil
}

func (s *preparedStmt) GeneratedKeys() ([]int64, error) { return nil, nil }

func (s *preparedStmt) Close() error {
	if s.rows != nil {
		s.rows.Close()
	}
	return s.conn.Deallocate(context.Background(), s.name)
}

// pgxRowSet exposes pgx.Rows. Close is a no-op view close; the statement
// owns the rows.
type pgxRowSet struct {
	rows pgx.Rows
}

func (r *pgxRowSet) Columns() ([]string, error) {
	return fieldNames(r.rows.FieldDescriptions()), nil
}

func (r *pgxRowSet) Next() bool { return r.rows.Next() }

func (r *pgxRowSet) Values() ([]any, error) { return r.rows.Values() }

func (r *pgxRowSet) Err() error { return r.rows.Err() }

func (r *pgxRowSet) Close() error { return nil }

// textStmt executes literal SQL over the simple protocol and buffers every
// outcome the batch produced.
type textStmt struct {
	conn     *pgx.Conn
	outcomes []bufferedOutcome
	pos      int
}

type bufferedOutcome struct {
	isRows  bool
	columns []string
	rows    [][]any
	count   int64
}

func (s *textStmt) Execute(ctx context.Context, sqlText string) (bool, error) {
	mrr := s.conn.PgConn().Exec(ctx, sqlText)
	for mrr.NextResult() {
		out, err := readResult(mrr.ResultReader())
		if err != nil {
			_ = mrr.Close()
			return false, err
		}
		s.outcomes = append(s.outcomes, out)
	}
	if err := mrr.Close(); err != nil {
		return false, err
	}
	s.pos = 0
	return len(s.outcomes) > 0 && s.outcomes[0].isRows, nil
}

func readResult(rr *pgconn.ResultReader) (bufferedOutcome, error) {
	var rows [][]any
	for rr.NextRow() {
		raw := rr.Values()
		fds := rr.FieldDescriptions()
		row := make([]any, len(raw))
		for i, b := range raw {
			var oid uint32
			if i < len(fds) {
				oid = fds[i].DataTypeOID
			}
			row[i] = decodeTextValue(oid, b)
		}
		rows = append(rows, row)
	}
	columns := fieldNames(rr.FieldDescriptions())
	tag, err := rr.Close()
	if err != nil {
		return bufferedOutcome{}, err
	}
	if len(columns) > 0 || tag.Select() {
		return bufferedOutcome{isRows: true, columns: columns, rows: rows}, nil
	}
	return bufferedOutcome{count: tag.RowsAffected()}, nil
}

func (s *textStmt) current() (bufferedOutcome, bool) {
	if s.pos >= len(s.outcomes) {
		return bufferedOutcome{}, false
	}
	return s.outcomes[s.pos], true
}

func (s *textStmt) ResultSet() (sqldrv.RowSet, error) {
	out, ok := s.current()
	if !ok || !out.isRows {
		return nil, nil
	}
	return &bufferedRowSet{outcome: out, row: -1}, nil
}

func (s *textStmt) UpdateCount() int64 {
	out, ok := s.current()
	if !ok || out.isRows {
		return sqldrv.NoMoreOutcomes
	}
	return out.count
}

func (s *textStmt) NextOutcome() (bool, error) {
	s.pos++
	out, ok := s.current()
	return ok && out.isRows, nil
}

func (s *textStmt) GeneratedKeys() ([]int64, error) { return nil, nil }

func (s *textStmt) Close() error { return nil }

type bufferedRowSet struct {
	outcome bufferedOutcome
	row     int
}

func (r *bufferedRowSet) Columns() ([]string, error) { return r.outcome.columns, nil }

func (r *bufferedRowSet) Next() bool {
	if r.row+1 >= len(r.outcome.rows) {
		return false
	}
	r.row++
	return true
}

func (r *bufferedRowSet) Values() ([]any, error) { return r.outcome.rows[r.row], nil }

func (r *bufferedRowSet) Err() error { return nil }

func (r *bufferedRowSet) Close() error { return nil }

func fieldNames(fds []pgconn.FieldDescription) []string {
	if len(fds) == 0 {
		return nil
	}
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

// Text-format OIDs the simple protocol commonly returns.
const (
	oidBool    = 16
	oidInt8    = 20
	oidInt2    = 21
	oidInt4    = 23
	oidFloat4  = 700
	oidFloat8  = 701
	oidNumeric = 1700
)

func decodeTextValue(oid uint32, b []byte) any {
	if b == nil {
		return nil
	}
	s := string(b)
	switch oid {
	case oidBool:
		return s == "t"
	case oidInt2, oidInt4, oidInt8:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case oidFloat4, oidFloat8:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case oidNumeric:
		// Kept as the exact decimal text.
		return s
	}
	return s
}

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lowkit/sqlrunner/pkg/command"
	"github.com/lowkit/sqlrunner/pkg/sqldrv/drivertest"
	"github.com/lowkit/sqlrunner/server/apierror"
)

func TestExecuteSingleResultSet(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id", "name"},
				[]any{int64(1), "alice"},
				[]any{int64(2), "bob"},
			),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT id, name FROM users"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{
		Data: []map[string]any{
			{"id": int64(1), "name": "alice"},
			{"id": int64(2), "name": "bob"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
	if !conn.Closed {
		t.Error("connection was not closed")
	}
	if !conn.StmtClosed {
		t.Error("statement was not closed")
	}
}

func TestExecuteUpdateCount(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{drivertest.ExecOutcome(3)},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("DELETE FROM users WHERE active = false"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{Data: WriteSummary{AffectedRows: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteGeneratedKeys(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{drivertest.ExecOutcome(1, 42)},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("INSERT INTO users (name) VALUES ({{name}})"),
		map[string]any{"name": "carol"}, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{Data: WriteSummary{AffectedRows: 1, GeneratedKeys: []int64{42}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteMultipleOutcomes(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.ExecOutcome(2),
			drivertest.RowsOutcome([]string{"total"}, []any{int64(7)}),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("UPDATE t SET x = 1; SELECT count(*) AS total FROM t"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{
		Data: []any{
			WriteSummary{AffectedRows: 2},
			[]map[string]any{{"total": int64(7)}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFiltersGeneratedKeysResultSet(t *testing.T) {
	// Some drivers surface a write's generated keys as a synthetic single-row
	// result set; it must not leak into the user-facing data.
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"GENERATED_KEYS"}, []any{int64(99)}),
			drivertest.ExecOutcome(1),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("INSERT INTO t (a) VALUES (1)"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{Data: WriteSummary{AffectedRows: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteDuplicateColumnHint(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id", "name", "name"}, []any{int64(1), "a", "b"}),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT u.id, u.name, g.name FROM u JOIN g ON u.gid = g.id"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantHints := []Hint{{Kind: HintDuplicateColumn, Detail: "name/name"}}
	if diff := cmp.Diff(wantHints, got.Hints); diff != "" {
		t.Errorf("hints mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteNoHintForDistinctColumns(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id", "name"}, []any{int64(1), "a"}),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT id, name FROM u"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got.Hints) != 0 {
		t.Errorf("Hints = %v, want none", got.Hints)
	}
}

func TestExecuteBindsTypedParameters(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{drivertest.ExecOutcome(1)},
	}

	params := map[string]any{
		"small":  int32(7),
		"big":    int64(1 << 40),
		"ratio":  0.1,
		"active": true,
		"name":   "dave",
		"attrs":  map[string]any{"a": 1},
		"tags":   []any{"x", "y"},
	}
	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("INSERT INTO t VALUES ({{small}}, {{big}}, {{ratio}}, {{active}}, {{name}}, {{attrs}}, {{tags}}, {{missing}})"),
		params, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []drivertest.Bind{
		{Index: 1, Kind: "int", Value: int32(7)},
		{Index: 2, Kind: "long", Value: int64(1 << 40)},
		{Index: 3, Kind: "decimal", Value: "0.1"},
		{Index: 4, Kind: "bool", Value: true},
		{Index: 5, Kind: "string", Value: "dave"},
		{Index: 6, Kind: "string", Value: `{"a":1}`},
		{Index: 7, Kind: "string", Value: `["x","y"]`},
		{Index: 8, Kind: "null", Value: nil},
	}
	if diff := cmp.Diff(want, conn.Binds); diff != "" {
		t.Errorf("binds mismatch (-want +got):\n%s", diff)
	}
	if conn.PreparedSQL != "INSERT INTO t VALUES (?, ?, ?, ?, ?, ?, ?, ?)" {
		t.Errorf("PreparedSQL = %q", conn.PreparedSQL)
	}
}

func TestExecuteRepeatedParameterBindsTwice(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id"}),
		},
	}

	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT id FROM t WHERE a = {{v}} OR b = {{v}}"),
		map[string]any{"v": int64(5)}, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []drivertest.Bind{
		{Index: 1, Kind: "long", Value: int64(5)},
		{Index: 2, Kind: "long", Value: int64(5)},
	}
	if diff := cmp.Diff(want, conn.Binds); diff != "" {
		t.Errorf("binds mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteUnsupportedBindType(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{drivertest.ExecOutcome(1)},
	}

	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("INSERT INTO t VALUES ({{blob}})"),
		map[string]any{"blob": []byte{0x01}}, Options{})
	if err == nil {
		t.Fatal("Execute() error = nil, want bind error")
	}

	var qe *apierror.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error type = %T, want *apierror.QueryError", err)
	}
	if qe.Code != apierror.CodePreparedStatementBind {
		t.Errorf("Code = %q, want %q", qe.Code, apierror.CodePreparedStatementBind)
	}
	if qe.Data["parameter"] != "blob" {
		t.Errorf("Data[parameter] = %v, want blob", qe.Data["parameter"])
	}
	if qe.Data["valueType"] != "[]uint8" {
		t.Errorf("Data[valueType] = %v, want []uint8", qe.Data["valueType"])
	}
	if !conn.StmtClosed {
		t.Error("statement was not closed after bind failure")
	}
}

func TestExecuteTextMode(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id"}),
		},
	}

	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT id FROM {{table}} WHERE name = {{name}} AND n = {{n}}"),
		map[string]any{"table": "users", "name": "o'hara", "n": int64(3)},
		Options{DisablePreparedStatement: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantSQL := "SELECT id FROM users WHERE name = o'hara AND n = 3"
	if conn.ExecutedSQL != wantSQL {
		t.Errorf("ExecutedSQL = %q, want %q", conn.ExecutedSQL, wantSQL)
	}
	if conn.PreparedSQL != "" {
		t.Error("text mode must not prepare a statement")
	}
	if len(conn.Binds) != 0 {
		t.Errorf("text mode must not bind, got %v", conn.Binds)
	}
}

func TestExecuteCommandIgnoresDisablePrepared(t *testing.T) {
	conn := &drivertest.Conn{
		Script:  []drivertest.Outcome{drivertest.ExecOutcome(1)},
		Ordinal: true,
	}

	def := FromCommand(&command.Insert{
		Table: "users",
		Set: []command.Assignment{
			{Column: "name", Value: command.Param("name")},
		},
	})
	_, err := NewExecutor().Execute(context.Background(), conn, def,
		map[string]any{"name": "erin"}, Options{DisablePreparedStatement: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if conn.PreparedSQL != `INSERT INTO users (name) VALUES ($1)` {
		t.Errorf("PreparedSQL = %q", conn.PreparedSQL)
	}
	want := []drivertest.Bind{{Index: 1, Kind: "string", Value: "erin"}}
	if diff := cmp.Diff(want, conn.Binds); diff != "" {
		t.Errorf("binds mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteWrapsDriverError(t *testing.T) {
	conn := &drivertest.Conn{
		ExecuteErr: errors.New("table does not exist"),
	}

	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT 1"), nil, Options{})
	if err == nil {
		t.Fatal("Execute() error = nil, want execution error")
	}

	var qe *apierror.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error type = %T, want *apierror.QueryError", err)
	}
	if qe.Code != apierror.CodeQueryExecution {
		t.Errorf("Code = %q, want %q", qe.Code, apierror.CodeQueryExecution)
	}
	if qe.Data["originalError"] != "table does not exist" {
		t.Errorf("Data[originalError] = %v", qe.Data["originalError"])
	}
	if !conn.Closed {
		t.Error("connection was not closed after execution failure")
	}
}

func TestExecutePrepareError(t *testing.T) {
	conn := &drivertest.Conn{PrepareErr: errors.New("syntax error")}

	_, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELEC 1"), nil, Options{})
	if err == nil {
		t.Fatal("Execute() error = nil, want prepare error")
	}
	if !errors.Is(err, apierror.New(apierror.CodeQueryExecution, "")) {
		t.Errorf("error = %v, want code %s", err, apierror.CodeQueryExecution)
	}
}

func TestExecuteEmptyResultSet(t *testing.T) {
	conn := &drivertest.Conn{
		Script: []drivertest.Outcome{
			drivertest.RowsOutcome([]string{"id", "name"}),
		},
	}

	got, err := NewExecutor().Execute(context.Background(), conn,
		Template("SELECT id, name FROM users WHERE 1 = 0"), nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := &Result{Data: []map[string]any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}
}

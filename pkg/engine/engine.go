// Package engine executes user-authored query definitions against a live
// database connection and normalizes the driver's raw output into a single
// uniform result value.
package engine

import (
	"context"
	"errors"

	"github.com/lowkit/sqlrunner/pkg/command"
	"github.com/lowkit/sqlrunner/pkg/sqldrv"
	"github.com/lowkit/sqlrunner/pkg/template"
	"github.com/lowkit/sqlrunner/server/apierror"
)

// Options carries the caller's per-execution preferences.
type Options struct {
	// DisablePreparedStatement switches raw templates to literal text
	// substitution instead of parameter binding. This is an explicit,
	// injection-unsafe opt-out for SQL that cannot be parameterized (dynamic
	// identifiers); structured commands ignore it.
	DisablePreparedStatement bool
}

// Plan is the resolved executable form of a query definition. It is derived
// once per execution and never mutated afterwards.
type Plan struct {
	Prepared bool
	SQL      string
	// Args are the ordered bind values, empty in text mode.
	Args []any
	// Names carries the originating parameter name per arg where known.
	Names []string
}

// Definition is a query-authoring variant. Both variants resolve to the same
// Plan shape, so the executor never branches on which kind it received.
type Definition interface {
	Resolve(params map[string]any, prepared bool, ph template.PlaceholderFunc) (*Plan, error)
}

// Template is a raw SQL string with {{name}} placeholders.
type Template string

var _ Definition = Template("")

// Resolve produces either a parameterized rewrite of the template or, when
// prepared binding was disabled, a fully literal SQL string.
func (t Template) Resolve(params map[string]any, prepared bool, ph template.PlaceholderFunc) (*Plan, error) {
	if !prepared {
		rendered, err := template.Render(string(t), params)
		if err != nil {
			return nil, err
		}
		return &Plan{SQL: rendered}, nil
	}

	keys := template.ExtractKeys(string(t))
	args := make([]any, len(keys))
	for i, key := range keys {
		// Absent parameters bind as null rather than erroring.
		args[i] = params[key]
	}
	return &Plan{
		Prepared: true,
		SQL:      template.Prepare(string(t), ph),
		Args:     args,
		Names:    keys,
	}, nil
}

// commandDefinition wraps a structured command. Binding mode is forced to
// prepared regardless of the caller's preference.
type commandDefinition struct {
	cmd command.Command
}

// FromCommand adapts a structured command to the Definition interface.
func FromCommand(cmd command.Command) Definition {
	return commandDefinition{cmd: cmd}
}

func (d commandDefinition) Resolve(params map[string]any, _ bool, ph template.PlaceholderFunc) (*Plan, error) {
	rendered, err := d.cmd.Render(params, ph)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Prepared: true,
		SQL:      rendered.SQL,
		Args:     rendered.Args,
		Names:    rendered.Names,
	}, nil
}

// statement is the post-execution handle the harvester drains.
type statement interface {
	sqldrv.OutcomeSource
	Close() error
}

// Executor runs query definitions. It is stateless and safe for concurrent
// use; each execution owns its connection exclusively for the call.
type Executor struct{}

// NewExecutor creates an executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute resolves def against params, runs it on conn and returns the
// normalized result. The connection and statement are closed on every exit
// path. No retry is attempted: executions may contain writes and are not
// assumed idempotent.
func (e *Executor) Execute(ctx context.Context, conn sqldrv.Conn, def Definition, params map[string]any, opts Options) (*Result, error) {
	defer func() { _ = conn.Close() }()

	plan, err := def.Resolve(params, !opts.DisablePreparedStatement, conn.Placeholder)
	if err != nil {
		return nil, asExecutionError(err)
	}

	stmt, isResultSet, err := e.run(ctx, conn, plan)
	if stmt != nil {
		defer func() { _ = stmt.Close() }()
	}
	if err != nil {
		return nil, err
	}

	return harvest(stmt, isResultSet)
}

// run obtains a statement handle for the plan and executes it, reporting
// whether the first outcome is a result set.
func (e *Executor) run(ctx context.Context, conn sqldrv.Conn, plan *Plan) (statement, bool, error) {
	if plan.Prepared {
		prepared, err := conn.Prepare(ctx, plan.SQL)
		if err != nil {
			return nil, false, asExecutionError(err)
		}
		if err := bindParams(prepared, plan.Args, plan.Names); err != nil {
			return prepared, false, err
		}
		isResultSet, err := prepared.Execute(ctx)
		if err != nil {
			return prepared, false, asExecutionError(err)
		}
		return prepared, isResultSet, nil
	}

	stmt := conn.Statement()
	isResultSet, err := stmt.Execute(ctx, plan.SQL)
	if err != nil {
		return stmt, false, asExecutionError(err)
	}
	return stmt, isResultSet, nil
}

// asExecutionError wraps driver and resolution failures under the execution
// error code, passing already-coded errors through unchanged.
func asExecutionError(err error) error {
	var qe *apierror.QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return apierror.WrapError(apierror.CodeQueryExecution, "query execution failed", err)
}

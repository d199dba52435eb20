// Package handlers provides the HTTP handlers of the query execution API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lowkit/sqlrunner/pkg/command"
	"github.com/lowkit/sqlrunner/pkg/engine"
	"github.com/lowkit/sqlrunner/pkg/sqldrv"
	"github.com/lowkit/sqlrunner/server/apierror"
	"github.com/lowkit/sqlrunner/server/types"
)

// ConnSource hands out a fresh connection per execution. The executor owns
// the connection for the duration of the call and closes it.
type ConnSource func(ctx context.Context) (sqldrv.Conn, error)

// QueryHandler handles query execution HTTP requests.
type QueryHandler struct {
	executor *engine.Executor
	conns    ConnSource
	registry *engine.Registry
}

// NewQueryHandler creates a query handler.
func NewQueryHandler(executor *engine.Executor, conns ConnSource, registry *engine.Registry) *QueryHandler {
	return &QueryHandler{
		executor: executor,
		conns:    conns,
		registry: registry,
	}
}

// ExecuteQuery handles POST /api/v1/query: synchronous execution.
func (h *QueryHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	req, def, qerr := decodeExecuteRequest(r)
	if qerr != nil {
		sendError(w, qerr)
		return
	}

	result, err := h.execute(r.Context(), def, req)
	if err != nil {
		sendError(w, apierror.FromError(err))
		return
	}

	sendJSON(w, http.StatusOK, types.ExecuteResponse{
		Success: true,
		Data:    result.Data,
		Hints:   toHints(result.Hints),
	})
}

// SubmitStatement handles POST /api/v1/statements: asynchronous execution.
// The response carries the handle to poll; the query runs in the background
// detached from the request context.
func (h *QueryHandler) SubmitStatement(w http.ResponseWriter, r *http.Request) {
	req, def, qerr := decodeExecuteRequest(r)
	if qerr != nil {
		sendError(w, qerr)
		return
	}

	exec := h.registry.Create(req.Query)

	ctx, cancel := context.WithCancel(context.Background())
	h.registry.SetRunning(exec.Handle, cancel)

	go func() {
		defer cancel()
		result, err := h.execute(ctx, def, req)
		if err != nil {
			h.registry.SetError(exec.Handle, apierror.FromError(err))
			return
		}
		h.registry.SetResult(exec.Handle, result)
	}()

	sendJSON(w, http.StatusAccepted, types.StatementResponse{
		Handle:    exec.Handle,
		Status:    string(engine.ExecutionStatusRunning),
		SQLState:  apierror.SQLStateSuccess,
		CreatedOn: exec.CreatedOn.Unix(),
	})
}

// GetStatement handles GET /api/v1/statements/{handle}.
func (h *QueryHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	exec, ok := h.registry.Get(handle)
	if !ok {
		sendError(w, apierror.New(apierror.CodeStatementNotFound, "statement not found: "+handle))
		return
	}

	resp := types.StatementResponse{
		Handle:    exec.Handle,
		Status:    string(exec.Status),
		CreatedOn: exec.CreatedOn.Unix(),
	}
	if exec.CompletedOn != nil {
		resp.CompletedOn = exec.CompletedOn.Unix()
	}

	switch exec.Status {
	case engine.ExecutionStatusSuccess:
		resp.SQLState = apierror.SQLStateSuccess
		resp.Data = exec.Result.Data
		resp.Hints = toHints(exec.Result.Hints)
	case engine.ExecutionStatusFailed:
		resp.SQLState = exec.Error.SQLState
		resp.Code = exec.Error.Code
		resp.Message = exec.Error.Message
	default:
		resp.SQLState = apierror.SQLStateSuccess
	}

	sendJSON(w, http.StatusOK, resp)
}

// CancelStatement handles POST /api/v1/statements/{handle}/cancel.
func (h *QueryHandler) CancelStatement(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	if err := h.registry.Cancel(handle); err != nil {
		sendError(w, apierror.WrapError(apierror.CodeStatementNotFound, "cannot cancel statement", err))
		return
	}

	sendJSON(w, http.StatusOK, types.CancelResponse{
		Success: true,
		Handle:  handle,
		Status:  string(engine.ExecutionStatusCanceled),
	})
}

// execute acquires a connection and runs the definition on it.
func (h *QueryHandler) execute(ctx context.Context, def engine.Definition, req *types.ExecuteRequest) (*engine.Result, error) {
	conn, err := h.conns(ctx)
	if err != nil {
		return nil, apierror.WrapError(apierror.CodeQueryExecution, "failed to acquire connection", err)
	}
	return h.executor.Execute(ctx, conn, def, req.Params, engine.Options{
		DisablePreparedStatement: req.DisablePreparedStatement,
	})
}

// decodeExecuteRequest parses and validates the shared execute request body.
func decodeExecuteRequest(r *http.Request) (*types.ExecuteRequest, engine.Definition, *apierror.QueryError) {
	var req types.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, apierror.New(apierror.CodeInvalidRequest, "invalid request body")
	}

	switch {
	case req.Query == "" && req.Command == nil:
		return nil, nil, apierror.New(apierror.CodeInvalidRequest, "either query or command is required")
	case req.Query != "" && req.Command != nil:
		return nil, nil, apierror.New(apierror.CodeInvalidRequest, "query and command are mutually exclusive")
	case req.Command != nil:
		cmd, err := buildCommand(req.Command)
		if err != nil {
			return nil, nil, apierror.WrapError(apierror.CodeInvalidRequest, "invalid command", err)
		}
		return &req, engine.FromCommand(cmd), nil
	default:
		return &req, engine.Template(req.Query), nil
	}
}

// buildCommand converts the wire command form into its executable model.
func buildCommand(spec *types.CommandSpec) (command.Command, error) {
	switch spec.Type {
	case "insert":
		return &command.Insert{Table: spec.Table, Set: assignments(spec.Set)}, nil
	case "update":
		return &command.Update{Table: spec.Table, Set: assignments(spec.Set), Filter: conditions(spec.Filter)}, nil
	case "delete":
		return &command.Delete{Table: spec.Table, Filter: conditions(spec.Filter)}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", spec.Type)
	}
}

func source(f types.FieldSpec) command.Source {
	if f.Param != "" {
		return command.Param(f.Param)
	}
	return command.Literal(f.Value)
}

func assignments(fields []types.FieldSpec) []command.Assignment {
	out := make([]command.Assignment, len(fields))
	for i, f := range fields {
		out[i] = command.Assignment{Column: f.Column, Value: source(f)}
	}
	return out
}

func conditions(fields []types.FieldSpec) []command.Condition {
	out := make([]command.Condition, len(fields))
	for i, f := range fields {
		out[i] = command.Condition{Column: f.Column, Value: source(f)}
	}
	return out
}

func toHints(hints []engine.Hint) []types.Hint {
	if len(hints) == 0 {
		return nil
	}
	out := make([]types.Hint, len(hints))
	for i, h := range hints {
		out[i] = types.Hint{Kind: h.Kind, Detail: h.Detail}
	}
	return out
}

// statusFor maps error codes onto HTTP status codes.
func statusFor(code string) int {
	switch code {
	case apierror.CodeInvalidRequest:
		return http.StatusBadRequest
	case apierror.CodeStatementNotFound:
		return http.StatusNotFound
	case apierror.CodeQueryExecution, apierror.CodePreparedStatementBind:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func sendError(w http.ResponseWriter, qerr *apierror.QueryError) {
	sendJSON(w, statusFor(qerr.Code), qerr.ToResponse())
}

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Package types defines the JSON request and response shapes of the HTTP API.
package types

// Query API types.

// FieldSpec is one column binding inside a structured command. Exactly one of
// Param and Value should be set; Param references a request parameter by
// name, Value carries a literal.
type FieldSpec struct {
	Column string `json:"column"`
	Param  string `json:"param,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// CommandSpec is the structured, GUI-authored query form.
type CommandSpec struct {
	Type   string      `json:"type"` // "insert", "update" or "delete"
	Table  string      `json:"table"`
	Set    []FieldSpec `json:"set,omitempty"`
	Filter []FieldSpec `json:"filter,omitempty"`
}

// ExecuteRequest is the body of POST /api/v1/query and POST
// /api/v1/statements. Exactly one of Query and Command must be set.
type ExecuteRequest struct {
	Query                    string         `json:"query,omitempty"`
	Command                  *CommandSpec   `json:"command,omitempty"`
	Params                   map[string]any `json:"params,omitempty"`
	DisablePreparedStatement bool           `json:"disablePreparedStatement,omitempty"`
}

// Hint is an advisory message about a result's shape.
type Hint struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ExecuteResponse is the success envelope of POST /api/v1/query.
type ExecuteResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Hints   []Hint `json:"hints,omitempty"`
}

// Statement API types.

// StatementResponse describes a submitted execution's current state. Data and
// Hints are present once the execution succeeded; Code and Message once it
// failed.
type StatementResponse struct {
	Handle      string `json:"statementHandle"`
	Status      string `json:"status"`
	SQLState    string `json:"sqlState,omitempty"`
	CreatedOn   int64  `json:"createdOn"`
	CompletedOn int64  `json:"completedOn,omitempty"`
	Data        any    `json:"data,omitempty"`
	Hints       []Hint `json:"hints,omitempty"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
}

// CancelResponse is the body of POST /api/v1/statements/{handle}/cancel.
type CancelResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"statementHandle"`
	Status  string `json:"status"`
}

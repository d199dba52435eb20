package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestGetSQLState(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: CodePreparedStatementBind, want: SQLStateDataException},
		{code: CodeStatementNotFound, want: SQLStateNoData},
		{code: CodeQueryExecution, want: SQLStateGeneralError},
		{code: CodeInternal, want: SQLStateGeneralError},
		{code: "SOMETHING_ELSE", want: SQLStateGeneralError},
	}
	for _, tt := range tests {
		if got := GetSQLState(tt.code); got != tt.want {
			t.Errorf("GetSQLState(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestQueryErrorError(t *testing.T) {
	err := New(CodeQueryExecution, "something broke")
	want := "[QUERY_EXECUTION_ERROR] something broke"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewBindError(t *testing.T) {
	err := NewBindError("amount", "[]uint8", errors.New("no mapping"))

	if err.Code != CodePreparedStatementBind {
		t.Errorf("Code = %q, want %q", err.Code, CodePreparedStatementBind)
	}
	if err.SQLState != SQLStateDataException {
		t.Errorf("SQLState = %q, want %q", err.SQLState, SQLStateDataException)
	}
	if err.Message != "failed to bind parameter amount of type []uint8" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Data["parameter"] != "amount" {
		t.Errorf("Data[parameter] = %v", err.Data["parameter"])
	}
	if err.Data["originalError"] != "no mapping" {
		t.Errorf("Data[originalError] = %v", err.Data["originalError"])
	}
}

func TestNewBindErrorWithoutType(t *testing.T) {
	err := NewBindError("3", "", nil)
	if err.Message != "failed to bind parameter 3" {
		t.Errorf("Message = %q", err.Message)
	}
	if _, ok := err.Data["valueType"]; ok {
		t.Error("Data[valueType] should be absent")
	}
}

func TestIs(t *testing.T) {
	err := New(CodeQueryExecution, "a")
	if !errors.Is(err, New(CodeQueryExecution, "b")) {
		t.Error("errors with the same code should match")
	}
	if errors.Is(err, New(CodeInternal, "b")) {
		t.Error("errors with different codes should not match")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}

	qe := New(CodeStatementNotFound, "gone")
	if got := FromError(fmt.Errorf("wrapped: %w", qe)); got != qe {
		t.Errorf("FromError() = %v, want the original coded error", got)
	}

	got := FromError(errors.New("plain"))
	if got.Code != CodeInternal {
		t.Errorf("Code = %q, want %q", got.Code, CodeInternal)
	}
	if got.Message != "plain" {
		t.Errorf("Message = %q, want plain", got.Message)
	}
}

func TestToResponse(t *testing.T) {
	err := New(CodePreparedStatementBind, "bad bind").WithData("parameter", "id")
	resp := err.ToResponse()

	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Code != CodePreparedStatementBind {
		t.Errorf("Code = %q", resp.Code)
	}
	if resp.SQLState != SQLStateDataException {
		t.Errorf("SQLState = %q", resp.SQLState)
	}
	if resp.Data["parameter"] != "id" {
		t.Errorf("Data[parameter] = %v", resp.Data["parameter"])
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New(CodeQueryExecution, "boom").WithData("originalError", "cause")
	b, merr := json.Marshal(err)
	if merr != nil {
		t.Fatalf("Marshal() error = %v", merr)
	}

	var decoded map[string]any
	if uerr := json.Unmarshal(b, &decoded); uerr != nil {
		t.Fatalf("Unmarshal() error = %v", uerr)
	}
	if decoded["code"] != CodeQueryExecution {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["sqlState"] != SQLStateGeneralError {
		t.Errorf("sqlState = %v", decoded["sqlState"])
	}
}
